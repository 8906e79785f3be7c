// internal/app/features/auditlog/types.go
package auditlog

import (
	"strings"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
)

// actionGroup lists the recorded actions for one target type.
type actionGroup struct {
	TargetType string   `json:"targetType"`
	Actions    []string `json:"actions"`
}

// catalog returns every action the portal records, grouped by target type.
// Quick-log actions are the contact prefix plus an interaction type.
func catalog() []actionGroup {
	return []actionGroup{
		{audit.TargetCompany, []string{
			audit.ActionCreateCompany,
			audit.ActionUpdateCompany,
			audit.ActionDeleteCompany,
		}},
		{audit.TargetContact, []string{
			audit.ActionCreateContact,
			audit.ActionUpdateContact,
			audit.ActionDeleteContact,
			audit.ActionContactPrefix + "call",
			audit.ActionContactPrefix + "email",
			audit.ActionContactPrefix + "note",
		}},
		{audit.TargetCycle, []string{
			audit.ActionCreateCycle,
			audit.ActionUpdateCycleStatus,
		}},
		{audit.TargetAssignment, []string{
			audit.ActionCreateAssignment,
			audit.ActionBulkCreateAssignments,
			audit.ActionReassignAssignment,
		}},
		{audit.TargetTemplate, []string{
			audit.ActionCreateTemplate,
			audit.ActionUpdateTemplate,
			audit.ActionApproveTemplate,
			audit.ActionArchiveTemplate,
		}},
		{audit.TargetMailRequest, []string{
			audit.ActionCreateMailRequest,
			audit.ActionApproveMailRequest,
			audit.ActionBulkApproveMailRequest,
			audit.ActionRejectMailRequest,
			audit.ActionCancelMailRequest,
			audit.ActionMarkMailRequestSent,
		}},
		{audit.TargetSeason, []string{audit.ActionCreateSeason}},
		{audit.TargetDrive, []string{
			audit.ActionCreateDrive,
			audit.ActionUpdateDrive,
			audit.ActionConfirmDrive,
		}},
		{audit.TargetUser, []string{
			audit.ActionProvisionUser,
			audit.ActionSetUserActive,
			audit.ActionUpdatePermissions,
		}},
		{audit.TargetBlog, []string{
			audit.ActionCreateBlog,
			audit.ActionApproveBlog,
			audit.ActionRejectBlog,
		}},
		{"", []string{audit.ActionExportContacts}},
	}
}

// knownAction reports whether a is recorded anywhere in the catalog.
func knownAction(a string) bool {
	for _, g := range catalog() {
		for _, x := range g.Actions {
			if x == a {
				return true
			}
		}
	}
	return false
}

// knownTarget reports whether t names a catalogued target type.
func knownTarget(t string) bool {
	for _, g := range catalog() {
		if g.TargetType != "" && strings.EqualFold(g.TargetType, t) {
			return true
		}
	}
	return false
}
