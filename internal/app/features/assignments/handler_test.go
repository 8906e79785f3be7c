package assignments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/workflow/ownership"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeAssignments struct {
	ownership.Assignments
	rows []models.Assignment
}

func (f *fakeAssignments) InsertMany(_ context.Context, rows []models.Assignment) error {
	f.rows = append(f.rows, rows...)
	return nil
}

func (f *fakeAssignments) DeleteByIDs(context.Context, []primitive.ObjectID) (int64, error) {
	return 0, nil
}

type fakeUsers struct{ active map[primitive.ObjectID]bool }

func (f fakeUsers) ActiveIDs(_ context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	var out []primitive.ObjectID
	for _, id := range ids {
		if f.active[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func TestHandleBulk(t *testing.T) {
	alice, bob, gone := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	item := func(assignee primitive.ObjectID) map[string]any {
		return map[string]any{"itemType": "company", "itemId": primitive.NewObjectID().Hex(), "assigneeUserId": assignee.Hex()}
	}

	cases := []struct {
		name      string
		actor     *models.User
		body      map[string]any
		status    int
		code      string
		wantRows  int
		wantField string
	}{
		{
			name:     "all active",
			actor:    testutil.Actor(models.RoleAdmin),
			body:     map[string]any{"assignments": []any{item(alice), item(bob)}},
			status:   http.StatusCreated,
			wantRows: 2,
		},
		{
			name:      "one inactive refuses the batch",
			actor:     testutil.Actor(models.RoleAdmin),
			body:      map[string]any{"assignments": []any{item(alice), item(gone)}},
			status:    http.StatusBadRequest,
			code:      "VALIDATION_FAILED",
			wantField: "assignments[1].assigneeUserId",
		},
		{
			name:   "empty batch",
			actor:  testutil.Actor(models.RoleAdmin),
			body:   map[string]any{"assignments": []any{}},
			status: http.StatusBadRequest,
			code:   "VALIDATION_FAILED",
		},
		{
			name:   "student",
			actor:  testutil.Actor(models.RoleStudent),
			body:   map[string]any{"assignments": []any{item(alice)}},
			status: http.StatusForbidden,
			code:   "FORBIDDEN",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fa := &fakeAssignments{}
			eng := &ownership.Engine{
				Assignments: fa,
				Users:       fakeUsers{active: map[primitive.ObjectID]bool{alice: true, bob: true}},
			}
			h := NewHandler(eng, zap.NewNop())

			req := testutil.NewJSONRequest(t, http.MethodPost, "/assignments/bulk", tc.body)
			rec := httptest.NewRecorder()
			h.HandleBulk(rec, testutil.WithUser(req, tc.actor))

			if tc.code != "" {
				testutil.AssertError(t, rec, tc.status, tc.code)
			} else if rec.Code != tc.status {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if len(fa.rows) != tc.wantRows {
				t.Errorf("stored %d rows, want %d", len(fa.rows), tc.wantRows)
			}
			if tc.wantField != "" {
				env := testutil.DecodeEnvelope(t, rec)
				if len(env.Error.Details) != 1 || env.Error.Details[0].Field != tc.wantField {
					t.Errorf("details = %+v, want field %s", env.Error.Details, tc.wantField)
				}
			}
		})
	}
}

func TestHandleReassign_BadID(t *testing.T) {
	h := NewHandler(&ownership.Engine{}, zap.NewNop())
	req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{"reason": "x"})
	req = testutil.WithChiURLParam(req, "id", "12")
	rec := httptest.NewRecorder()
	h.HandleReassign(rec, testutil.WithUser(req, testutil.Actor(models.RoleAdmin)))
	testutil.AssertError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestServeList_BadItemType(t *testing.T) {
	h := NewHandler(&ownership.Engine{}, zap.NewNop())
	rec := httptest.NewRecorder()
	h.ServeList(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/?itemType=drive"), testutil.Actor(models.RoleAdmin)))
	testutil.AssertError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
}
