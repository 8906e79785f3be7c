package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

func TestLimiter_WindowResets(t *testing.T) {
	ctx := context.Background()
	l := New(2, 200*time.Millisecond)

	for i, want := range []bool{true, true, false} {
		got, _, err := l.Allow(ctx, "a")
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("call %d: Allow = %v, want %v", i, got, want)
		}
	}
	if ok, _, _ := l.Allow(ctx, "b"); !ok {
		t.Error("keys must not share a window")
	}
	if n, _ := l.Remaining(ctx, "a"); n != 0 {
		t.Errorf("Remaining = %d, want 0", n)
	}

	time.Sleep(300 * time.Millisecond)
	if ok, _, _ := l.Allow(ctx, "a"); !ok {
		t.Error("window did not reset")
	}
	if n, _ := l.Remaining(ctx, "a"); n != 1 {
		t.Errorf("Remaining after reset = %d, want 1", n)
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		reset time.Time
		want  time.Duration
	}{
		{"whole seconds", now.Add(42 * time.Second), 42 * time.Second},
		{"already passed", now.Add(-time.Second), time.Second},
		{"same instant", now, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := retryAfter(limiter.Context{Reset: tt.reset.Unix()}, now)
			if got != tt.want {
				t.Errorf("retryAfter = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	l := New(1, time.Minute)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Middleware(l, zap.NewNop())(ok)

	alice := testutil.Actor(models.RoleStudent)
	bob := testutil.Actor(models.RoleStudent)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), alice))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), alice))
	testutil.AssertError(t, rec, http.StatusTooManyRequests, "RATE_LIMITED")
	secs, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	if err != nil || secs < 1 || secs > 60 {
		t.Errorf("Retry-After = %q, want 1..60", rec.Header().Get("Retry-After"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, testutil.WithUser(testutil.NewRequest(http.MethodGet, "/"), bob))
	if rec.Code != http.StatusNoContent {
		t.Errorf("other user throttled: %d", rec.Code)
	}
}

func TestMiddleware_NilDisables(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := Middleware(nil, zap.NewNop())(ok)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d", rec.Code)
		}
	}
}
