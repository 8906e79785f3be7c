package blogs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	blogstore "github.com/dalemusser/placementhub/internal/app/store/blogs"
	"github.com/dalemusser/placementhub/internal/app/workflow/blogflow"
	"github.com/dalemusser/placementhub/internal/app/workflow/flowtest"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fakeBlogs struct {
	blogflow.Blogs
	byID map[primitive.ObjectID]models.Blog
	last blogstore.ListFilter
}

func (f *fakeBlogs) GetByID(_ context.Context, id primitive.ObjectID) (models.Blog, error) {
	b, ok := f.byID[id]
	if !ok {
		return models.Blog{}, mongo.ErrNoDocuments
	}
	return b, nil
}

func (f *fakeBlogs) Moderate(_ context.Context, id primitive.ObjectID, from []models.ModerationStatus, d blogstore.Decision) (bool, error) {
	b, ok := f.byID[id]
	if !ok || !slices.Contains(from, b.ModerationStatus) {
		return false, nil
	}
	b.ModerationStatus = d.Status
	b.ModerationNote = d.Note
	f.byID[id] = b
	return true, nil
}

func (f *fakeBlogs) List(_ context.Context, lf blogstore.ListFilter, _, _ int64) ([]models.Blog, int64, error) {
	f.last = lf
	var out []models.Blog
	for _, b := range f.byID {
		if lf.Status == "" || b.ModerationStatus == lf.Status {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func newHandler() (*Handler, *fakeBlogs, *flowtest.Sink) {
	fb := &fakeBlogs{byID: map[primitive.ObjectID]models.Blog{}}
	sink := &flowtest.Sink{}
	eng := &blogflow.Engine{Blogs: fb}
	eng.Audit = sink
	eng.Now = flowtest.FixedClock(now, 0)
	return NewHandler(eng, zap.NewNop()), fb, sink
}

func TestHandleApprove(t *testing.T) {
	cases := []struct {
		name       string
		actor      *models.User
		start      models.ModerationStatus
		status     int
		code       string
		wantStatus models.ModerationStatus
	}{
		{"pending approves", testutil.CoordinatorActor(models.CoordinatorGeneral), models.BlogPending, http.StatusOK, "", models.BlogApproved},
		{"rejected reconsidered", testutil.Actor(models.RoleAdmin), models.BlogRejected, http.StatusOK, "", models.BlogApproved},
		{"already approved", testutil.Actor(models.RoleAdmin), models.BlogApproved, http.StatusBadRequest, "CONFLICT", models.BlogApproved},
		{"student", testutil.Actor(models.RoleStudent), models.BlogPending, http.StatusForbidden, "FORBIDDEN", models.BlogPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, fb, sink := newHandler()
			id := primitive.NewObjectID()
			fb.byID[id] = models.Blog{ID: id, ModerationStatus: tc.start}

			req := testutil.WithChiURLParam(testutil.NewRequest(http.MethodPost, "/"), "id", id.Hex())
			rec := httptest.NewRecorder()
			h.HandleApprove(rec, testutil.WithUser(req, tc.actor))

			if tc.code != "" {
				testutil.AssertError(t, rec, tc.status, tc.code)
				if len(sink.Entries) != 0 {
					t.Errorf("refused approval was audited: %v", sink.Actions())
				}
			} else {
				if rec.Code != tc.status {
					t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
				}
				var got models.Blog
				if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &got); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if got.ModerationStatus != tc.wantStatus {
					t.Errorf("response status = %q, want %q", got.ModerationStatus, tc.wantStatus)
				}
			}
			if fb.byID[id].ModerationStatus != tc.wantStatus {
				t.Errorf("stored status = %q, want %q", fb.byID[id].ModerationStatus, tc.wantStatus)
			}
		})
	}
}

func TestHandleReject_NoteRequired(t *testing.T) {
	h, fb, _ := newHandler()
	id := primitive.NewObjectID()
	fb.byID[id] = models.Blog{ID: id, ModerationStatus: models.BlogPending}

	req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{"moderationNote": "  "})
	req = testutil.WithChiURLParam(req, "id", id.Hex())
	rec := httptest.NewRecorder()
	h.HandleReject(rec, testutil.WithUser(req, testutil.Actor(models.RoleAdmin)))

	testutil.AssertError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
	if fb.byID[id].ModerationStatus != models.BlogPending {
		t.Errorf("status moved to %q", fb.byID[id].ModerationStatus)
	}

	req = testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{"moderationNote": "off topic"})
	req = testutil.WithChiURLParam(req, "id", id.Hex())
	rec = httptest.NewRecorder()
	h.HandleReject(rec, testutil.WithUser(req, testutil.Actor(models.RoleAdmin)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := fb.byID[id]; got.ModerationStatus != models.BlogRejected || got.ModerationNote != "off topic" {
		t.Errorf("stored blog = %+v", got)
	}
}

func TestServeQueue(t *testing.T) {
	h, fb, _ := newHandler()
	id := primitive.NewObjectID()
	fb.byID[id] = models.Blog{ID: id, ModerationStatus: models.BlogPending}
	coord := testutil.CoordinatorActor(models.CoordinatorGeneral)

	rec := httptest.NewRecorder()
	h.ServeQueue(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/moderation"), coord))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if fb.last.Status != models.BlogPending {
		t.Errorf("default status = %q", fb.last.Status)
	}

	rec = httptest.NewRecorder()
	h.ServeQueue(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/moderation?status=published"), coord))
	testutil.AssertError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestServeList_OnlyApproved(t *testing.T) {
	h, fb, _ := newHandler()
	for _, s := range []models.ModerationStatus{models.BlogPending, models.BlogApproved, models.BlogRejected} {
		id := primitive.NewObjectID()
		fb.byID[id] = models.Blog{ID: id, ModerationStatus: s}
	}

	rec := httptest.NewRecorder()
	h.ServeList(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/?tag=OA"), testutil.Actor(models.RoleSupport)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var rows []models.Blog
	if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &rows); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rows) != 1 || rows[0].ModerationStatus != models.BlogApproved {
		t.Errorf("rows = %+v", rows)
	}
	if fb.last.Tag != "oa" {
		t.Errorf("tag filter = %q, want oa", fb.last.Tag)
	}

	rec = httptest.NewRecorder()
	h.ServeList(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/?companyId=nope"), testutil.Actor(models.RoleStudent)))
	testutil.AssertError(t, rec, http.StatusBadRequest, "VALIDATION_FAILED")
}

func TestHandleSubmit_BadJSON(t *testing.T) {
	h, _, _ := newHandler()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"title":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, testutil.WithUser(req, testutil.Actor(models.RoleStudent)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestRoutes_Anonymous(t *testing.T) {
	h, _, _ := newHandler()
	for _, tc := range []struct {
		router http.Handler
		path   string
	}{
		{Routes(h), "/"},
		{ModerationRoutes(h), "/moderation"},
	} {
		rec := httptest.NewRecorder()
		tc.router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, tc.path))
		testutil.AssertError(t, rec, http.StatusUnauthorized, "UNAUTHENTICATED")
	}
}
