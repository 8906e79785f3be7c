package outreach

import (
	"context"
	"strconv"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/csvutil"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExportContacts returns contact rows ready for CSV, optionally limited to
// one company. It is gated by the export_contacts permission, which admins
// hold unless it is explicitly denied.
func (e *Engine) ExportContacts(ctx context.Context, actor *models.User, companyID *primitive.ObjectID) ([]csvutil.ContactRow, error) {
	if actor == nil || !actor.IsActive {
		return nil, flow.Refuse(workflow, apperr.Unauthenticated(""))
	}
	var overrides authz.Overrides
	if e.Permissions != nil {
		perms, err := e.Permissions.ListByUser(ctx, actor.ID)
		if err != nil {
			return nil, flow.Internal(err)
		}
		overrides = authz.FromPermissions(perms)
	}
	if err := authz.Permitted(actor, overrides, models.PermExportContacts, authz.AdminOnly); err != nil {
		return nil, flow.Refuse(workflow, err)
	}

	contacts, err := e.Contacts.List(ctx, companyID)
	if err != nil {
		return nil, flow.Internal(err)
	}
	if len(contacts) > csvutil.MaxRows {
		return nil, flow.Refuse(workflow, apperr.Validation("export is too large; filter by company"))
	}

	names := map[primitive.ObjectID]string{}
	rows := make([]csvutil.ContactRow, 0, len(contacts))
	for _, c := range contacts {
		name, ok := names[c.CompanyID]
		if !ok {
			co, err := e.Companies.GetByID(ctx, c.CompanyID)
			if err != nil {
				return nil, flow.Lookup(err, "company")
			}
			name = co.Name
			names[c.CompanyID] = name
		}
		rows = append(rows, csvutil.ContactRow{
			ContactID:       c.ID.Hex(),
			CompanyID:       c.CompanyID.Hex(),
			CompanyName:     name,
			Name:            c.Name,
			Designation:     c.Designation,
			Emails:          c.Emails,
			Phones:          c.Phones,
			Preferred:       c.PreferredContactMethod,
			LastContactedAt: c.LastContactedAt,
		})
	}

	meta := map[string]string{"count": strconv.Itoa(len(rows))}
	if companyID != nil {
		meta["companyId"] = companyID.Hex()
	}
	e.Record(ctx, actor, audit.ActionExportContacts, "", primitive.NilObjectID, meta)
	return rows, nil
}
