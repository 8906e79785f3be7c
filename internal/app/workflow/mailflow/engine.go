// Package mailflow runs the two mail lifecycles: templates (draft,
// approved, archived, with a version snapshot whenever approved content is
// edited) and mail requests (pending until reviewed, then approved,
// scheduled or rejected, and finally sent or cancelled).
package mailflow

import (
	"context"
	"time"

	mailrequeststore "github.com/dalemusser/placementhub/internal/app/store/mailrequests"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	templateFlow = "mail_template"
	requestFlow  = "mail_request"
)

// Readers are admins, coordinators and support staff.
var readers = authz.Rule{Roles: []models.Role{models.RoleAdmin, models.RoleCoordinator, models.RoleSupport}}

type Templates interface {
	Create(ctx context.Context, t models.MailTemplate) (models.MailTemplate, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.MailTemplate, error)
	Update(ctx context.Context, t models.MailTemplate) error
	List(ctx context.Context, status models.TemplateStatus) ([]models.MailTemplate, error)
}

type Versions interface {
	MaxVersion(ctx context.Context, templateID primitive.ObjectID) (int, error)
	Insert(ctx context.Context, v models.EmailTemplateVersion) (models.EmailTemplateVersion, error)
	ListByTemplate(ctx context.Context, templateID primitive.ObjectID) ([]models.EmailTemplateVersion, error)
}

type Requests interface {
	Create(ctx context.Context, r models.MailRequest) (models.MailRequest, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.MailRequest, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.MailRequest, error)
	Transition(ctx context.Context, id primitive.ObjectID, from []models.RequestStatus, ch mailrequeststore.Change) (bool, error)
	TransitionMany(ctx context.Context, ids []primitive.ObjectID, from []models.RequestStatus, ch mailrequeststore.Change) (int64, error)
	List(ctx context.Context, f mailrequeststore.ListFilter, skip, limit int64) ([]models.MailRequest, int64, error)
}

// Permissions supplies per-user overrides.
type Permissions interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserPermission, error)
}

type Companies interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Company, error)
}

// Engine runs template and mail request operations.
type Engine struct {
	flow.Env
	Templates   Templates
	Versions    Versions
	Requests    Requests
	Permissions Permissions
	Companies   Companies
}

// permitted applies the override for key on top of rule.
func (e *Engine) permitted(ctx context.Context, actor *models.User, key string, rule authz.Rule) error {
	if actor == nil || !actor.IsActive {
		return apperr.Unauthenticated("")
	}
	if e.Permissions == nil {
		return authz.Authorize(actor, rule)
	}
	perms, err := e.Permissions.ListByUser(ctx, actor.ID)
	if err != nil {
		return flow.Internal(err)
	}
	return authz.Permitted(actor, authz.FromPermissions(perms), key, rule)
}

// future rejects a send time that is not after now.
func future(sendAt *time.Time, now time.Time) error {
	if sendAt != nil && !sendAt.After(now) {
		return apperr.Field("sendAt", "must be in the future")
	}
	return nil
}
