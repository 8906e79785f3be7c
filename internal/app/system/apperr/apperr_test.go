package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("cycle"), KindNotFound},
		{"wrapped conflict", fmt.Errorf("create: %w", Conflict("dup")), KindConflict},
		{"field", Field("reason", "required"), KindValidation},
		{"foreign error", errors.New("boom"), KindInternal},
		{"internal", Internal(errors.New("db down")), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStatus(t *testing.T) {
	tests := map[Kind]int{
		KindUnauthenticated: http.StatusUnauthorized,
		KindForbidden:       http.StatusForbidden,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusBadRequest,
		KindValidation:      http.StatusBadRequest,
		KindRateLimited:     http.StatusTooManyRequests,
		KindInternal:        http.StatusInternalServerError,
	}
	for k, want := range tests {
		if got := Status(k); got != want {
			t.Errorf("Status(%s) = %d, want %d", k, got, want)
		}
	}
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)
	if !errors.Is(err, cause) {
		t.Error("expected Internal to wrap its cause")
	}
	if err.Message != "internal server error" {
		t.Errorf("message leaked detail: %q", err.Message)
	}
}
