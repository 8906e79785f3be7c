package outreach

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactInput is the full set of editable contact fields.
type ContactInput struct {
	Name                   string   `json:"name" validate:"notblank,max=255"`
	Designation            string   `json:"designation" validate:"max=255"`
	Emails                 []string `json:"emails" validate:"omitempty,dive,email"`
	Phones                 []string `json:"phones" validate:"omitempty,dive,max=50"`
	PreferredContactMethod string   `json:"preferredContactMethod" validate:"max=50"`
	Notes                  string   `json:"notes" validate:"max=10000"`
}

// ContactPatch changes only the fields it carries.
type ContactPatch struct {
	Name                   *string  `json:"name" validate:"omitempty,notblank,max=255"`
	Designation            *string  `json:"designation" validate:"omitempty,max=255"`
	Emails                 []string `json:"emails" validate:"omitempty,dive,email"`
	Phones                 []string `json:"phones" validate:"omitempty,dive,max=50"`
	PreferredContactMethod *string  `json:"preferredContactMethod" validate:"omitempty,max=50"`
	Notes                  *string  `json:"notes" validate:"omitempty,max=10000"`
}

// lowerAll trims and lowercases addresses so validation sees what is stored.
func lowerAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, strings.ToLower(strings.TrimSpace(s)))
	}
	return out
}

func (e *Engine) CreateContact(ctx context.Context, actor *models.User, companyID primitive.ObjectID, in ContactInput) (models.Contact, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Contact{}, flow.Refuse(workflow, err)
	}
	in.Emails = lowerAll(in.Emails)
	if err := inputval.Struct(in); err != nil {
		return models.Contact{}, flow.Refuse(workflow, err)
	}
	if _, err := e.Companies.GetByID(ctx, companyID); err != nil {
		return models.Contact{}, flow.Refuse(workflow, flow.Lookup(err, "company"))
	}

	now := e.Clock()
	created, err := e.Contacts.Create(ctx, models.Contact{
		ID:                     primitive.NewObjectID(),
		CompanyID:              companyID,
		Name:                   strings.TrimSpace(in.Name),
		Designation:            in.Designation,
		Emails:                 in.Emails,
		Phones:                 in.Phones,
		PreferredContactMethod: in.PreferredContactMethod,
		Notes:                  in.Notes,
		CreatedAt:              now,
		UpdatedAt:              now,
	})
	if err != nil {
		return models.Contact{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionCreateContact, audit.TargetContact, created.ID, map[string]string{
		"companyId": companyID.Hex(),
		"name":      created.Name,
	})
	metrics.Create("contact", 1)
	return created, nil
}

func (e *Engine) UpdateContact(ctx context.Context, actor *models.User, id primitive.ObjectID, in ContactPatch) (models.Contact, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Contact{}, flow.Refuse(workflow, err)
	}
	if in.Emails != nil {
		in.Emails = lowerAll(in.Emails)
	}
	if err := inputval.Struct(in); err != nil {
		return models.Contact{}, flow.Refuse(workflow, err)
	}
	c, err := e.Contacts.GetByID(ctx, id)
	if err != nil {
		return models.Contact{}, flow.Refuse(workflow, flow.Lookup(err, "contact"))
	}

	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Designation != nil {
		c.Designation = *in.Designation
	}
	if in.Emails != nil {
		c.Emails = in.Emails
	}
	if in.Phones != nil {
		c.Phones = in.Phones
	}
	if in.PreferredContactMethod != nil {
		c.PreferredContactMethod = *in.PreferredContactMethod
	}
	if in.Notes != nil {
		c.Notes = *in.Notes
	}
	c.UpdatedAt = e.Clock()
	if err := e.Contacts.Update(ctx, c); err != nil {
		return models.Contact{}, flow.Refuse(workflow, flow.Lookup(err, "contact"))
	}

	e.Record(ctx, actor, audit.ActionUpdateContact, audit.TargetContact, id, map[string]string{"name": c.Name})
	return c, nil
}

// DeleteContact removes a contact together with the assignments that
// point at it and their history.
func (e *Engine) DeleteContact(ctx context.Context, actor *models.User, id primitive.ObjectID) error {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return flow.Refuse(workflow, err)
	}

	var c models.Contact
	err := e.Atomic(ctx, func(ctx context.Context) error {
		var err error
		if c, err = e.Contacts.GetByID(ctx, id); err != nil {
			return flow.Lookup(err, "contact")
		}
		ids, err := e.Assignments.IDsByItems(ctx, models.ItemContact, []primitive.ObjectID{id})
		if err != nil {
			return flow.Internal(err)
		}
		if len(ids) > 0 {
			if _, err := e.AssignmentHistory.DeleteByAssignments(ctx, ids); err != nil {
				return flow.Internal(err)
			}
			if _, err := e.Assignments.DeleteByIDs(ctx, ids); err != nil {
				return flow.Internal(err)
			}
		}
		if _, err := e.Contacts.Delete(ctx, id); err != nil {
			return flow.Internal(err)
		}
		return nil
	})
	if err != nil {
		return flow.Refuse(workflow, err)
	}

	e.Record(ctx, actor, audit.ActionDeleteContact, audit.TargetContact, id, map[string]string{
		"companyId": c.CompanyID.Hex(),
		"name":      c.Name,
	})
	return nil
}

func (e *Engine) ListContacts(ctx context.Context, actor *models.User, companyID *primitive.ObjectID) ([]models.Contact, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	rows, err := e.Contacts.List(ctx, companyID)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return rows, nil
}

// QuickLogInput records a call, email or note against a contact.
type QuickLogInput struct {
	Action         models.InteractionType `json:"action" validate:"required,oneof=call email note"`
	Summary        string                 `json:"summary" validate:"notblank,max=5000"`
	Outcome        string                 `json:"outcome" validate:"max=255"`
	NextFollowUpAt *time.Time             `json:"nextFollowUpAt"`
	CycleID        *primitive.ObjectID    `json:"companySeasonCycleId"`
}

// QuickLog inserts the interaction and stamps the contact's
// lastContactedAt in one atomic unit.
func (e *Engine) QuickLog(ctx context.Context, actor *models.User, contactID primitive.ObjectID, in QuickLogInput) (models.Interaction, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Interaction{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.Interaction{}, flow.Refuse(workflow, err)
	}

	var out models.Interaction
	err := e.Atomic(ctx, func(ctx context.Context) error {
		c, err := e.Contacts.GetByID(ctx, contactID)
		if err != nil {
			return flow.Lookup(err, "contact")
		}
		now := e.Clock()
		id := contactID
		if out, err = e.Interactions.Create(ctx, models.Interaction{
			ID:             primitive.NewObjectID(),
			CompanyID:      c.CompanyID,
			ContactID:      &id,
			CycleID:        in.CycleID,
			Type:           in.Action,
			Outcome:        in.Outcome,
			Summary:        strings.TrimSpace(in.Summary),
			NextFollowUpAt: in.NextFollowUpAt,
			CreatedBy:      actor.ID,
			CreatedAt:      now,
		}); err != nil {
			return flow.Internal(err)
		}
		if err := e.Contacts.Touch(ctx, contactID, now); err != nil {
			return flow.Lookup(err, "contact")
		}
		return nil
	})
	if err != nil {
		return models.Interaction{}, flow.Refuse(workflow, err)
	}

	e.Record(ctx, actor, audit.ActionContactPrefix+string(in.Action), audit.TargetContact, contactID, map[string]string{
		"interactionId": out.ID.Hex(),
	})
	metrics.Create("interaction", 1)
	return out, nil
}
