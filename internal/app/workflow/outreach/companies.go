package outreach

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	assignmentstore "github.com/dalemusser/placementhub/internal/app/store/assignments"
	companystore "github.com/dalemusser/placementhub/internal/app/store/companies"
	cyclestore "github.com/dalemusser/placementhub/internal/app/store/cycles"
	drivestore "github.com/dalemusser/placementhub/internal/app/store/drives"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Detail sizes for GetCompany.
const (
	RecentInteractions = 10
	RecentDrives       = 5
)

var (
	readers = authz.Rule{Roles: []models.Role{models.RoleAdmin, models.RoleCoordinator, models.RoleSupport}}

	errDuplicateSlug = apperr.Conflict("a company with this slug already exists")
)

// CompanyInput is the full set of editable company fields.
type CompanyInput struct {
	Name     string `json:"name" validate:"notblank,max=255"`
	Slug     string `json:"slug" validate:"notblank,max=255"`
	Domain   string `json:"domain" validate:"max=255"`
	Industry string `json:"industry" validate:"max=100"`
	Website  string `json:"website" validate:"omitempty,url,max=500"`
	Priority *int   `json:"priority"`
	Notes    string `json:"notes" validate:"max=10000"`
}

// CompanyPatch changes only the fields it carries.
type CompanyPatch struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=255"`
	Slug     *string `json:"slug" validate:"omitempty,notblank,max=255"`
	Domain   *string `json:"domain" validate:"omitempty,max=255"`
	Industry *string `json:"industry" validate:"omitempty,max=100"`
	Website  *string `json:"website" validate:"omitempty,url,max=500"`
	Priority *int    `json:"priority"`
	Notes    *string `json:"notes" validate:"omitempty,max=10000"`
}

func (p CompanyPatch) apply(c *models.Company) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Slug != nil {
		c.Slug = *p.Slug
	}
	if p.Domain != nil {
		c.Domain = strings.ToLower(strings.TrimSpace(*p.Domain))
	}
	if p.Industry != nil {
		c.Industry = *p.Industry
	}
	if p.Website != nil {
		c.Website = *p.Website
	}
	if p.Priority != nil {
		c.Priority = p.Priority
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
}

// CreateCompany stores a company. The slug is unique in the store.
func (e *Engine) CreateCompany(ctx context.Context, actor *models.User, in CompanyInput) (models.Company, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Company{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.Company{}, flow.Refuse(workflow, err)
	}

	now := e.Clock()
	by := actor.ID
	created, err := e.Companies.Create(ctx, models.Company{
		ID:        primitive.NewObjectID(),
		Name:      strings.TrimSpace(in.Name),
		Slug:      in.Slug,
		Domain:    strings.ToLower(strings.TrimSpace(in.Domain)),
		Industry:  in.Industry,
		Website:   in.Website,
		Priority:  in.Priority,
		Notes:     in.Notes,
		CreatedBy: &by,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, companystore.ErrDuplicateSlug) {
		return models.Company{}, flow.Refuse(workflow, errDuplicateSlug)
	}
	if err != nil {
		return models.Company{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionCreateCompany, audit.TargetCompany, created.ID, map[string]string{
		"name": created.Name,
		"slug": created.Slug,
	})
	metrics.Create("company", 1)
	return created, nil
}

func (e *Engine) UpdateCompany(ctx context.Context, actor *models.User, id primitive.ObjectID, in CompanyPatch) (models.Company, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Company{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.Company{}, flow.Refuse(workflow, err)
	}

	c, err := e.Companies.GetByID(ctx, id)
	if err != nil {
		return models.Company{}, flow.Refuse(workflow, flow.Lookup(err, "company"))
	}
	in.apply(&c)
	c.UpdatedAt = e.Clock()

	err = e.Companies.Update(ctx, c)
	if errors.Is(err, companystore.ErrDuplicateSlug) {
		return models.Company{}, flow.Refuse(workflow, errDuplicateSlug)
	}
	if err != nil {
		return models.Company{}, flow.Refuse(workflow, flow.Lookup(err, "company"))
	}

	e.Record(ctx, actor, audit.ActionUpdateCompany, audit.TargetCompany, id, map[string]string{"name": c.Name})
	return c, nil
}

// DeleteCounts reports how many rows a company delete removed.
type DeleteCounts struct {
	Contacts          int64 `json:"contacts"`
	Cycles            int64 `json:"companySeasonCycles"`
	StatusHistory     int64 `json:"statusHistory"`
	Assignments       int64 `json:"assignments"`
	AssignmentHistory int64 `json:"assignmentHistory"`
	Drives            int64 `json:"drives"`
	MailRequests      int64 `json:"mailRequests"`
	Interactions      int64 `json:"interactions"`
	Follows           int64 `json:"follows"`
	Blogs             int64 `json:"blogs"`
}

func (d DeleteCounts) meta() map[string]string {
	f := func(n int64) string { return strconv.FormatInt(n, 10) }
	return map[string]string{
		"contacts":            f(d.Contacts),
		"companySeasonCycles": f(d.Cycles),
		"statusHistory":       f(d.StatusHistory),
		"assignments":         f(d.Assignments),
		"assignmentHistory":   f(d.AssignmentHistory),
		"drives":              f(d.Drives),
		"mailRequests":        f(d.MailRequests),
		"interactions":        f(d.Interactions),
		"follows":             f(d.Follows),
		"blogs":               f(d.Blogs),
	}
}

// DeleteCompany hard-deletes a company and everything it owns in one
// transaction. Dependents go first so a failure never strands them without
// their company.
func (e *Engine) DeleteCompany(ctx context.Context, actor *models.User, id primitive.ObjectID) (DeleteCounts, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return DeleteCounts{}, flow.Refuse(workflow, err)
	}

	var (
		counts DeleteCounts
		name   string
	)
	err := e.Atomic(ctx, func(ctx context.Context) error {
		counts = DeleteCounts{}
		c, err := e.Companies.GetByID(ctx, id)
		if err != nil {
			return flow.Lookup(err, "company")
		}
		name = c.Name

		contactIDs, err := e.Contacts.IDsByCompany(ctx, id)
		if err != nil {
			return flow.Internal(err)
		}
		var assignmentIDs []primitive.ObjectID
		for _, item := range []struct {
			typ models.ItemType
			ids []primitive.ObjectID
		}{
			{models.ItemCompany, []primitive.ObjectID{id}},
			{models.ItemContact, contactIDs},
		} {
			if len(item.ids) == 0 {
				continue
			}
			ids, err := e.Assignments.IDsByItems(ctx, item.typ, item.ids)
			if err != nil {
				return flow.Internal(err)
			}
			assignmentIDs = append(assignmentIDs, ids...)
		}
		if len(assignmentIDs) > 0 {
			if counts.AssignmentHistory, err = e.AssignmentHistory.DeleteByAssignments(ctx, assignmentIDs); err != nil {
				return flow.Internal(err)
			}
			if counts.Assignments, err = e.Assignments.DeleteByIDs(ctx, assignmentIDs); err != nil {
				return flow.Internal(err)
			}
		}

		cycleIDs, err := e.Cycles.IDs(ctx, cyclestore.ListFilter{CompanyID: &id})
		if err != nil {
			return flow.Internal(err)
		}
		if len(cycleIDs) > 0 {
			if counts.StatusHistory, err = e.CycleHistory.DeleteByCycles(ctx, cycleIDs); err != nil {
				return flow.Internal(err)
			}
		}

		for _, step := range []struct {
			dst   *int64
			store CompanyOwned
		}{
			{&counts.Cycles, e.Cycles},
			{&counts.Drives, e.Drives},
			{&counts.MailRequests, e.MailRequests},
			{&counts.Interactions, e.Interactions},
			{&counts.Follows, e.Follows},
			{&counts.Blogs, e.Blogs},
			{&counts.Contacts, e.Contacts},
		} {
			if *step.dst, err = step.store.DeleteByCompany(ctx, id); err != nil {
				return flow.Internal(err)
			}
		}

		n, err := e.Companies.Delete(ctx, id)
		if err != nil {
			return flow.Internal(err)
		}
		if n == 0 {
			return apperr.NotFound("company")
		}
		return nil
	})
	if err != nil {
		return DeleteCounts{}, flow.Refuse(workflow, err)
	}

	meta := counts.meta()
	meta["name"] = name
	e.Record(ctx, actor, audit.ActionDeleteCompany, audit.TargetCompany, id, meta)
	return counts, nil
}

// ListCompanies returns companies newest first.
func (e *Engine) ListCompanies(ctx context.Context, actor *models.User, f companystore.ListFilter, skip, limit int64) ([]models.Company, int64, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return nil, 0, flow.Refuse(workflow, err)
	}
	rows, total, err := e.Companies.List(ctx, f, skip, limit)
	if err != nil {
		return nil, 0, flow.Internal(err)
	}
	return rows, total, nil
}

// CompanyDetail is a company with the records its detail view shows.
type CompanyDetail struct {
	models.Company
	Contacts     []models.Contact     `json:"contacts"`
	Assignments  []models.Assignment  `json:"assignments"`
	Interactions []models.Interaction `json:"recentInteractions"`
	Drives       []models.Drive       `json:"recentDrives"`
}

func (e *Engine) GetCompany(ctx context.Context, actor *models.User, id primitive.ObjectID) (CompanyDetail, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return CompanyDetail{}, flow.Refuse(workflow, err)
	}
	c, err := e.Companies.GetByID(ctx, id)
	if err != nil {
		return CompanyDetail{}, flow.Refuse(workflow, flow.Lookup(err, "company"))
	}
	d := CompanyDetail{Company: c}

	if d.Contacts, err = e.Contacts.List(ctx, &id); err != nil {
		return CompanyDetail{}, flow.Internal(err)
	}
	if d.Assignments, _, err = e.Assignments.List(ctx, assignmentstore.ListFilter{
		ItemType: models.ItemCompany, ItemID: &id, ActiveOnly: true,
	}, 0, 100); err != nil {
		return CompanyDetail{}, flow.Internal(err)
	}
	if d.Interactions, err = e.Interactions.RecentByCompany(ctx, id, RecentInteractions); err != nil {
		return CompanyDetail{}, flow.Internal(err)
	}
	if d.Drives, err = e.Drives.List(ctx, drivestore.ListFilter{CompanyID: &id}, RecentDrives); err != nil {
		return CompanyDetail{}, flow.Internal(err)
	}
	return d, nil
}
