package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	testSecret = "test-secret-0123456789"
	testIssuer = "placementhub-test"
)

type mapFetcher map[primitive.ObjectID]models.User

func (m mapFetcher) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	u, ok := m[id]
	if !ok {
		return models.User{}, mongo.ErrNoDocuments
	}
	return u, nil
}

func TestParseToken_RoundTrip(t *testing.T) {
	id := primitive.NewObjectID()
	tok, err := IssueToken(testSecret, testIssuer, id, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	got, err := ParseToken(testSecret, testIssuer, tok)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if got != id {
		t.Errorf("ParseToken = %s, want %s", got.Hex(), id.Hex())
	}
}

func TestParseToken_Rejects(t *testing.T) {
	id := primitive.NewObjectID()
	good, _ := IssueToken(testSecret, testIssuer, id, time.Hour)
	expired, _ := IssueToken(testSecret, testIssuer, id, -time.Minute)
	otherIssuer, _ := IssueToken(testSecret, "someone-else", id, time.Hour)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "another-secret", good},
		{"expired", testSecret, expired},
		{"wrong issuer", testSecret, otherIssuer},
		{"garbage", testSecret, "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseToken(tt.secret, testIssuer, tt.token); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadUser(t *testing.T) {
	active := models.User{ID: primitive.NewObjectID(), Role: models.RoleCoordinator, IsActive: true}
	inactive := models.User{ID: primitive.NewObjectID(), Role: models.RoleAdmin, IsActive: false}
	rv := NewResolver(testSecret, testIssuer, mapFetcher{active.ID: active, inactive.ID: inactive}, zap.NewNop())

	tokenFor := func(id primitive.ObjectID) string {
		tok, err := IssueToken(testSecret, testIssuer, id, time.Hour)
		if err != nil {
			t.Fatalf("IssueToken failed: %v", err)
		}
		return tok
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"active user", "Bearer " + tokenFor(active.ID), http.StatusOK},
		{"lowercase scheme", "bearer " + tokenFor(active.ID), http.StatusOK},
		{"inactive user", "Bearer " + tokenFor(inactive.ID), http.StatusUnauthorized},
		{"unknown user", "Bearer " + tokenFor(primitive.NewObjectID()), http.StatusUnauthorized},
		{"basic scheme", "Basic abc", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *models.User
			h := rv.LoadUser(RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = CurrentUser(r)
				w.WriteHeader(http.StatusOK)
			})))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && (seen == nil || seen.ID != active.ID) {
				t.Errorf("expected active user in context, got %+v", seen)
			}
		})
	}
}
