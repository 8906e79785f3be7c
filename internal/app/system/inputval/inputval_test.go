package inputval

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/domain/models"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"user@example.com", true},
		{"user.name+tag@example.co.uk", true},
		{"", false},
		{"user", false},
		{"user@", false},
		{"@example.com", false},
		{"user @example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

type reassignBody struct {
	AssigneeID string `json:"newAssigneeId" validate:"required,objectid"`
	Reason     string `json:"reason" validate:"notblank"`
}

func TestStruct_FieldIssuesUseJSONNames(t *testing.T) {
	err := Struct(reassignBody{AssigneeID: "nope", Reason: "   "})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected *apperr.Error, got %T", err)
	}

	fields := map[string]string{}
	for _, is := range ae.Issues {
		fields[is.Field] = is.Message
	}
	if fields["newAssigneeId"] != "must be a valid id" {
		t.Errorf("newAssigneeId issue = %q", fields["newAssigneeId"])
	}
	if fields["reason"] != "is required" {
		t.Errorf("reason issue = %q", fields["reason"])
	}
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(reassignBody{AssigneeID: "65a1b2c3d4e5f60718293a4b", Reason: "handover"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestDecodeJSON(t *testing.T) {
	type body struct {
		Status models.CycleStatus `json:"status"`
		Note   string             `json:"note"`
	}

	tests := []struct {
		name      string
		payload   string
		wantErr   bool
		wantField string
	}{
		{"valid", `{"status":"contacted","note":"called"}`, false, ""},
		{"unknown enum", `{"status":"ghosted"}`, true, "cycle status"},
		{"unknown field", `{"status":"contacted","extra":1}`, true, "extra"},
		{"wrong type", `{"note":5}`, true, "note"},
		{"empty", ``, true, ""},
		{"malformed", `{"status":`, true, ""},
		{"two objects", `{"note":"a"}{"note":"b"}`, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.payload))
			var dst body
			err := DecodeJSON(req, &dst)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !apperr.Is(err, apperr.KindValidation) {
				t.Errorf("expected VALIDATION_FAILED, got %v", err)
			}
			if tt.wantField != "" {
				var ae *apperr.Error
				errors.As(err, &ae)
				if len(ae.Issues) == 0 || ae.Issues[0].Field != tt.wantField {
					t.Errorf("issues = %+v, want field %q", ae.Issues, tt.wantField)
				}
			}
		})
	}
}
