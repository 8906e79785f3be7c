package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Calling it again on the same request adds to the existing route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Actor returns an in-memory active user with the given role; nothing is stored.
func Actor(role models.Role) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: "Test " + string(role), Role: role, IsActive: true}
}

// CoordinatorActor returns an in-memory active coordinator of subtype ct.
func CoordinatorActor(ct models.CoordinatorType) *models.User {
	u := Actor(models.RoleCoordinator)
	u.CoordinatorType = &ct
	return u
}

// NewRequest creates an HTTP request with no body.
func NewRequest(method, target string) *http.Request {
	return httptest.NewRequest(method, target, nil)
}

// NewJSONRequest creates a request whose body is v encoded as JSON.
func NewJSONRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	r := httptest.NewRequest(method, target, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

// WithUser attaches u as the resolved caller, bypassing token parsing.
func WithUser(r *http.Request, u *models.User) *http.Request {
	return auth.WithUser(r, u)
}

// ErrorBody is the decoded error half of a response envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"details"`
}

// Envelope is a decoded response envelope.
type Envelope struct {
	Data  json.RawMessage `json:"data"`
	Meta  json.RawMessage `json:"meta"`
	Error *ErrorBody      `json:"error"`
}

// DecodeEnvelope parses the recorded response body.
func DecodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

// AssertError checks status and error code of a recorded failure.
func AssertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, status, rec.Body.String())
	}
	env := DecodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Code != code {
		t.Fatalf("error code = %+v, want %s", env.Error, code)
	}
}
