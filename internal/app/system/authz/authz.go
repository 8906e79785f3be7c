// internal/app/system/authz/authz.go
package authz

import (
	"slices"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/domain/models"
)

// Rule names who may perform an operation: any user whose role is in Roles,
// or any coordinator whose subtype is in CoordinatorTypes.
type Rule struct {
	Roles            []models.Role
	CoordinatorTypes []models.CoordinatorType
}

// Common rules.
var (
	AdminOnly = Rule{Roles: []models.Role{models.RoleAdmin}}

	// Staff is admins plus coordinators of any subtype.
	Staff = Rule{Roles: []models.Role{models.RoleAdmin, models.RoleCoordinator}}

	// MailTeam is admins plus mailing-team coordinators.
	MailTeam = Rule{
		Roles:            []models.Role{models.RoleAdmin},
		CoordinatorTypes: []models.CoordinatorType{models.CoordinatorMailingTeam},
	}

	StudentsOnly = Rule{Roles: []models.Role{models.RoleStudent}}
)

// Allowed reports whether u satisfies r. Nil and inactive users never do.
func Allowed(u *models.User, r Rule) bool {
	if u == nil || !u.IsActive {
		return false
	}
	if slices.Contains(r.Roles, u.Role) {
		return true
	}
	return len(r.CoordinatorTypes) > 0 && u.IsCoordinatorOfType(r.CoordinatorTypes...)
}

// Authorize returns nil when u satisfies r, UNAUTHENTICATED when u is
// missing or inactive, and FORBIDDEN otherwise.
func Authorize(u *models.User, r Rule) error {
	if u == nil || !u.IsActive {
		return apperr.Unauthenticated("")
	}
	if !Allowed(u, r) {
		return apperr.Forbidden("")
	}
	return nil
}

// Overrides maps permission keys to explicit per-user allow/deny values.
type Overrides map[string]bool

// FromPermissions builds Overrides from stored permission rows.
func FromPermissions(perms []models.UserPermission) Overrides {
	o := make(Overrides, len(perms))
	for _, p := range perms {
		o[p.Key] = p.Allowed
	}
	return o
}

// Permitted checks key against o first: an explicit false denies and an
// explicit true grants regardless of role. Without an override the role
// rule decides.
func Permitted(u *models.User, o Overrides, key string, fallback Rule) error {
	if u == nil || !u.IsActive {
		return apperr.Unauthenticated("")
	}
	if allowed, ok := o[key]; ok {
		if allowed {
			return nil
		}
		return apperr.Forbidden("permission " + key + " denied")
	}
	return Authorize(u, fallback)
}
