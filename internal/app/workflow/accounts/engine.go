// Package accounts covers the people side of the portal: user
// provisioning and deactivation, per-user permission overrides,
// notifications, student follows, and the admin audit query.
package accounts

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	followstore "github.com/dalemusser/placementhub/internal/app/store/follows"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const workflow = "accounts"

// MaxNotifications caps ListNotifications.
const MaxNotifications = 50

var anyone = authz.Rule{Roles: []models.Role{models.RoleAdmin, models.RoleCoordinator, models.RoleStudent, models.RoleSupport}}

type Users interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	SetActive(ctx context.Context, id primitive.ObjectID, active bool, at time.Time) error
	List(ctx context.Context, f userstore.ListFilter, skip, limit int64) ([]models.User, int64, error)
}

type Permissions interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserPermission, error)
	Upsert(ctx context.Context, p models.UserPermission) error
}

type Notifications interface {
	ListForUser(ctx context.Context, userID primitive.ObjectID, unreadOnly bool, limit int64) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID, at time.Time) (int64, error)
}

type Follows interface {
	Create(ctx context.Context, f models.Follow) (models.Follow, error)
	Delete(ctx context.Context, studentID, companyID primitive.ObjectID) (int64, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Follow, error)
}

type Companies interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Company, error)
}

// AuditLog reads recorded audit entries.
type AuditLog interface {
	Query(ctx context.Context, f audit.QueryFilter) ([]audit.Entry, error)
	CountByFilter(ctx context.Context, f audit.QueryFilter) (int64, error)
}

// Engine runs account operations.
type Engine struct {
	flow.Env
	Users         Users
	Permissions   Permissions
	Notifications Notifications
	Follows       Follows
	Companies     Companies
	AuditLog      AuditLog
}

// Profile is the caller's own account plus its permission overrides.
type Profile struct {
	models.User
	Permissions []models.UserPermission `json:"permissions"`
}

func (e *Engine) Me(ctx context.Context, actor *models.User) (Profile, error) {
	if err := authz.Authorize(actor, anyone); err != nil {
		return Profile{}, flow.Refuse(workflow, err)
	}
	perms, err := e.Permissions.ListByUser(ctx, actor.ID)
	if err != nil {
		return Profile{}, flow.Internal(err)
	}
	return Profile{User: *actor, Permissions: perms}, nil
}

// ProvisionInput describes a new portal account.
type ProvisionInput struct {
	Email           string                  `json:"email" validate:"required,email,max=255"`
	Name            string                  `json:"name" validate:"notblank,max=255"`
	Role            models.Role             `json:"role" validate:"required,oneof=tpo_admin coordinator student tech_support"`
	CoordinatorType *models.CoordinatorType `json:"coordinatorType" validate:"omitempty,oneof=general student_representative mailing_team"`
}

// ProvisionUser creates an active account. A coordinator type is accepted
// only for coordinators.
func (e *Engine) ProvisionUser(ctx context.Context, actor *models.User, in ProvisionInput) (models.User, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return models.User{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.User{}, flow.Refuse(workflow, err)
	}
	if in.CoordinatorType != nil && in.Role != models.RoleCoordinator {
		return models.User{}, flow.Refuse(workflow, apperr.Field("coordinatorType", "only valid for coordinators"))
	}

	now := e.Clock()
	u, err := e.Users.Create(ctx, models.User{
		ID:              primitive.NewObjectID(),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Name:            strings.TrimSpace(in.Name),
		Role:            in.Role,
		CoordinatorType: in.CoordinatorType,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return models.User{}, flow.Refuse(workflow, apperr.Conflict("a user with this email already exists"))
	}
	if err != nil {
		return models.User{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionProvisionUser, audit.TargetUser, u.ID, map[string]string{
		"email": u.Email,
		"role":  string(u.Role),
	})
	metrics.Create("user", 1)
	return u, nil
}

// SetUserActive soft-activates or deactivates an account. Admins cannot
// deactivate themselves.
func (e *Engine) SetUserActive(ctx context.Context, actor *models.User, id primitive.ObjectID, active bool) (models.User, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return models.User{}, flow.Refuse(workflow, err)
	}
	if id == actor.ID && !active {
		return models.User{}, flow.Refuse(workflow, apperr.Conflict("you cannot deactivate your own account"))
	}
	u, err := e.Users.GetByID(ctx, id)
	if err != nil {
		return models.User{}, flow.Refuse(workflow, flow.Lookup(err, "user"))
	}
	now := e.Clock()
	if err := e.Users.SetActive(ctx, id, active, now); err != nil {
		return models.User{}, flow.Refuse(workflow, flow.Lookup(err, "user"))
	}
	u.IsActive = active
	u.UpdatedAt = now

	e.Record(ctx, actor, audit.ActionSetUserActive, audit.TargetUser, id, map[string]string{
		"active": strconv.FormatBool(active),
	})
	return u, nil
}

func (e *Engine) ListUsers(ctx context.Context, actor *models.User, f userstore.ListFilter, skip, limit int64) ([]models.User, int64, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return nil, 0, flow.Refuse(workflow, err)
	}
	rows, total, err := e.Users.List(ctx, f, skip, limit)
	if err != nil {
		return nil, 0, flow.Internal(err)
	}
	return rows, total, nil
}

// PermissionInput is one override to store.
type PermissionInput struct {
	Key     string `json:"permissionKey" validate:"required,oneof=export_contacts manage_templates"`
	Allowed bool   `json:"isAllowed"`
}

type SetPermissionsInput struct {
	Permissions []PermissionInput `json:"permissions" validate:"required,min=1,max=20,dive"`
}

// SetPermissions upserts each override for userID and returns the full set
// now on record.
func (e *Engine) SetPermissions(ctx context.Context, actor *models.User, userID primitive.ObjectID, in SetPermissionsInput) ([]models.UserPermission, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	if _, err := e.Users.GetByID(ctx, userID); err != nil {
		return nil, flow.Refuse(workflow, flow.Lookup(err, "user"))
	}

	by := actor.ID
	meta := map[string]string{}
	err := e.Atomic(ctx, func(ctx context.Context) error {
		now := e.Clock()
		for _, p := range in.Permissions {
			if err := e.Permissions.Upsert(ctx, models.UserPermission{
				UserID:    userID,
				Key:       p.Key,
				Allowed:   p.Allowed,
				GrantedBy: &by,
				GrantedAt: now,
			}); err != nil {
				return flow.Internal(err)
			}
			meta[p.Key] = strconv.FormatBool(p.Allowed)
		}
		return nil
	})
	if err != nil {
		return nil, flow.Refuse(workflow, err)
	}

	e.Record(ctx, actor, audit.ActionUpdatePermissions, audit.TargetUser, userID, meta)
	perms, err := e.Permissions.ListByUser(ctx, userID)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return perms, nil
}

func (e *Engine) ListNotifications(ctx context.Context, actor *models.User, unreadOnly bool) ([]models.Notification, error) {
	if err := authz.Authorize(actor, anyone); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	rows, err := e.Notifications.ListForUser(ctx, actor.ID, unreadOnly, MaxNotifications)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return rows, nil
}

type MarkReadInput struct {
	IDs []primitive.ObjectID `json:"ids" validate:"required,min=1,max=200"`
}

// MarkRead flags the caller's listed notifications as read and reports how
// many changed. Ids belonging to other users are ignored.
func (e *Engine) MarkRead(ctx context.Context, actor *models.User, in MarkReadInput) (int64, error) {
	if err := authz.Authorize(actor, anyone); err != nil {
		return 0, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return 0, flow.Refuse(workflow, err)
	}
	n, err := e.Notifications.MarkRead(ctx, actor.ID, in.IDs, e.Clock())
	if err != nil {
		return 0, flow.Internal(err)
	}
	return n, nil
}

// ToggleFollow follows the company when the student does not yet follow it
// and unfollows it otherwise. It reports the resulting state.
func (e *Engine) ToggleFollow(ctx context.Context, actor *models.User, companyID primitive.ObjectID) (bool, error) {
	if err := authz.Authorize(actor, authz.StudentsOnly); err != nil {
		return false, flow.Refuse(workflow, err)
	}
	if _, err := e.Companies.GetByID(ctx, companyID); err != nil {
		return false, flow.Refuse(workflow, flow.Lookup(err, "company"))
	}

	_, err := e.Follows.Create(ctx, models.Follow{
		ID:        primitive.NewObjectID(),
		StudentID: actor.ID,
		CompanyID: companyID,
		CreatedAt: e.Clock(),
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, followstore.ErrAlreadyFollowing):
		if _, err := e.Follows.Delete(ctx, actor.ID, companyID); err != nil {
			return false, flow.Internal(err)
		}
		return false, nil
	default:
		return false, flow.Internal(err)
	}
}

func (e *Engine) ListFollows(ctx context.Context, actor *models.User) ([]models.Follow, error) {
	if err := authz.Authorize(actor, authz.StudentsOnly); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	rows, err := e.Follows.ListByStudent(ctx, actor.ID)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return rows, nil
}

// ListAudit returns audit entries newest first with the total match count.
func (e *Engine) ListAudit(ctx context.Context, actor *models.User, f audit.QueryFilter) ([]audit.Entry, int64, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return nil, 0, flow.Refuse(workflow, err)
	}
	total, err := e.AuditLog.CountByFilter(ctx, f)
	if err != nil {
		return nil, 0, flow.Internal(err)
	}
	rows, err := e.AuditLog.Query(ctx, f)
	if err != nil {
		return nil, 0, flow.Internal(err)
	}
	return rows, total, nil
}
