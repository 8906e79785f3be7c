package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/workflow/accounts"
	"github.com/dalemusser/placementhub/internal/app/workflow/flowtest"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type fakeUsers struct {
	accounts.Users
	byID   map[primitive.ObjectID]models.User
	emails map[string]bool
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[primitive.ObjectID]models.User{}, emails: map[string]bool{}}
}

func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, mongo.ErrNoDocuments
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, u models.User) (models.User, error) {
	if f.emails[u.Email] {
		return models.User{}, userstore.ErrDuplicateEmail
	}
	f.emails[u.Email] = true
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) SetActive(_ context.Context, id primitive.ObjectID, active bool, at time.Time) error {
	u, ok := f.byID[id]
	if !ok {
		return mongo.ErrNoDocuments
	}
	u.IsActive, u.UpdatedAt = active, at
	f.byID[id] = u
	return nil
}

func newHandler() (*Handler, *fakeUsers, *flowtest.Sink) {
	fu := newFakeUsers()
	sink := &flowtest.Sink{}
	eng := &accounts.Engine{Users: fu}
	eng.Audit = sink
	return NewHandler(eng, zap.NewNop()), fu, sink
}

func TestHandleProvision(t *testing.T) {
	tests := []struct {
		name   string
		actor  *models.User
		body   string
		status int
		code   string
	}{
		{"admin creates coordinator", testutil.Actor(models.RoleAdmin),
			`{"email":"Mailer@Campus.edu","name":"Mail Team","role":"coordinator","coordinatorType":"mailing_team"}`, http.StatusCreated, ""},
		{"coordinator type on a student", testutil.Actor(models.RoleAdmin),
			`{"email":"s@campus.edu","name":"Stu","role":"student","coordinatorType":"general"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"unknown role", testutil.Actor(models.RoleAdmin),
			`{"email":"s@campus.edu","name":"Stu","role":"dean"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"bad email", testutil.Actor(models.RoleAdmin),
			`{"email":"not-an-email","name":"Stu","role":"student"}`, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"duplicate email", testutil.Actor(models.RoleAdmin),
			`{"email":"taken@campus.edu","name":"Dup","role":"student"}`, http.StatusBadRequest, "CONFLICT"},
		{"support cannot provision", testutil.Actor(models.RoleSupport),
			`{"email":"x@campus.edu","name":"X","role":"student"}`, http.StatusForbidden, "FORBIDDEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fu, sink := newHandler()
			fu.emails["taken@campus.edu"] = true

			req := httptest.NewRequest(http.MethodPost, "/admin/users", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.HandleProvision(rec, testutil.WithUser(req, tt.actor))

			if tt.code != "" {
				testutil.AssertError(t, rec, tt.status, tt.code)
				if len(sink.Entries) != 0 {
					t.Errorf("refused provisioning was audited: %v", sink.Actions())
				}
				return
			}
			if rec.Code != tt.status {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			var got models.User
			if err := json.Unmarshal(testutil.DecodeEnvelope(t, rec).Data, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Email != "mailer@campus.edu" || !got.IsActive {
				t.Errorf("user = %+v", got)
			}
			if got.CoordinatorType == nil || *got.CoordinatorType != models.CoordinatorMailingTeam {
				t.Errorf("coordinator type = %v", got.CoordinatorType)
			}
			if len(sink.Entries) != 1 {
				t.Errorf("audit entries = %d, want 1", len(sink.Entries))
			}
		})
	}
}

func TestHandleSetActive(t *testing.T) {
	admin := testutil.Actor(models.RoleAdmin)
	target := primitive.NewObjectID()

	tests := []struct {
		name   string
		id     string
		body   string
		status int
		code   string
		active bool
	}{
		{"deactivate", target.Hex(), `{"isActive":false}`, http.StatusOK, "", false},
		{"missing flag", target.Hex(), `{}`, http.StatusBadRequest, "VALIDATION_FAILED", true},
		{"self deactivation", admin.ID.Hex(), `{"isActive":false}`, http.StatusBadRequest, "CONFLICT", true},
		{"unknown user", primitive.NewObjectID().Hex(), `{"isActive":false}`, http.StatusNotFound, "NOT_FOUND", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, fu, _ := newHandler()
			fu.byID[target] = models.User{ID: target, Role: models.RoleStudent, IsActive: true}

			req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(tt.body))
			req = testutil.WithChiURLParam(req, "id", tt.id)
			rec := httptest.NewRecorder()
			h.HandleSetActive(rec, testutil.WithUser(req, admin))

			if tt.code != "" {
				testutil.AssertError(t, rec, tt.status, tt.code)
			} else if rec.Code != tt.status {
				t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
			}
			if fu.byID[target].IsActive != tt.active {
				t.Errorf("stored active = %v, want %v", fu.byID[target].IsActive, tt.active)
			}
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	tests := []struct {
		name   string
		actor  *models.User
		target string
		status int
		code   string
	}{
		{"anonymous", nil, "/", http.StatusUnauthorized, "UNAUTHENTICATED"},
		{"student", testutil.Actor(models.RoleStudent), "/", http.StatusForbidden, "FORBIDDEN"},
		{"unknown role filter", testutil.Actor(models.RoleAdmin), "/?role=dean", http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newHandler()
			req := testutil.NewRequest(http.MethodGet, tt.target)
			if tt.actor != nil {
				req = testutil.WithUser(req, tt.actor)
			}
			rec := httptest.NewRecorder()
			AdminRoutes(h).ServeHTTP(rec, req)
			testutil.AssertError(t, rec, tt.status, tt.code)
		})
	}
}
