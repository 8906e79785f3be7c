package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCycleStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    CycleStatus
		wantErr bool
	}{
		{"not_contacted", CycleNotContacted, false},
		{"accepted", CycleAccepted, false},
		{" positive ", CyclePositive, false},
		{"Accepted", "", true},
		{"", "", true},
		{"archived", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCycleStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCycleStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCycleStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseModerationStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    ModerationStatus
		wantErr bool
	}{
		{"pending", BlogPending, false},
		{" approved", BlogApproved, false},
		{"rejected", BlogRejected, false},
		{"published", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseModerationStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseModerationStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseModerationStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEnumRejectsUnknownOnDecode(t *testing.T) {
	var body struct {
		Role   Role        `json:"role"`
		Status CycleStatus `json:"status"`
	}

	err := json.Unmarshal([]byte(`{"role":"coordinator","status":"maybe"}`), &body)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
	var ee *EnumError
	if !errors.As(err, &ee) {
		t.Fatalf("expected *EnumError, got %T: %v", err, err)
	}
	if ee.Kind != "cycle status" || ee.Value != "maybe" {
		t.Errorf("unexpected enum error: %+v", ee)
	}

	if err := json.Unmarshal([]byte(`{"role":"tpo_admin","status":"contacted"}`), &body); err != nil {
		t.Fatalf("decode valid body failed: %v", err)
	}
	if body.Role != RoleAdmin || body.Status != CycleContacted {
		t.Errorf("decoded %+v", body)
	}
}

func TestUserRoleHelpers(t *testing.T) {
	mailing := CoordinatorMailingTeam
	general := CoordinatorGeneral

	tests := []struct {
		name     string
		user     *User
		types    []CoordinatorType
		wantType bool
	}{
		{"nil user", nil, []CoordinatorType{CoordinatorMailingTeam}, false},
		{"mailing coordinator", &User{Role: RoleCoordinator, CoordinatorType: &mailing}, []CoordinatorType{CoordinatorMailingTeam}, true},
		{"general coordinator", &User{Role: RoleCoordinator, CoordinatorType: &general}, []CoordinatorType{CoordinatorMailingTeam}, false},
		{"coordinator without subtype", &User{Role: RoleCoordinator}, []CoordinatorType{CoordinatorGeneral}, false},
		{"student carrying a subtype", &User{Role: RoleStudent, CoordinatorType: &mailing}, []CoordinatorType{CoordinatorMailingTeam}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.IsCoordinatorOfType(tt.types...); got != tt.wantType {
				t.Errorf("IsCoordinatorOfType = %v, want %v", got, tt.wantType)
			}
		})
	}

	if (&User{Role: RoleAdmin}).HasRole(RoleCoordinator) {
		t.Error("admin should not match coordinator")
	}
	if !(&User{Role: RoleAdmin}).HasRole(RoleCoordinator, RoleAdmin) {
		t.Error("admin should match when listed")
	}
}
