package mailflow

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	templatestore "github.com/dalemusser/placementhub/internal/app/store/mailtemplates"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateTemplateInput describes a new draft template.
type CreateTemplateInput struct {
	Name       string         `json:"name" validate:"notblank,max=255"`
	Slug       string         `json:"slug" validate:"notblank,max=255"`
	Subject    string         `json:"subject" validate:"notblank,max=500"`
	BodyHTML   string         `json:"bodyHtml" validate:"notblank"`
	BodyText   string         `json:"bodyText"`
	Variables  []string       `json:"variables" validate:"omitempty,dive,notblank"`
	SendPolicy map[string]any `json:"sendPolicy"`
}

// CreateTemplate stores a draft at version 1. Admins and mailing-team
// coordinators may create templates, as may anyone granted
// manage_templates.
func (e *Engine) CreateTemplate(ctx context.Context, actor *models.User, in CreateTemplateInput) (models.MailTemplate, error) {
	if err := e.permitted(ctx, actor, models.PermManageTemplates, authz.MailTeam); err != nil {
		return models.MailTemplate{}, flow.Refuse(templateFlow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.MailTemplate{}, flow.Refuse(templateFlow, err)
	}
	body := htmlsanitize.Sanitize(in.BodyHTML)
	if strings.TrimSpace(body) == "" {
		return models.MailTemplate{}, flow.Refuse(templateFlow, apperr.Field("bodyHtml", "has no content after sanitising"))
	}

	now := e.Clock()
	by := actor.ID
	created, err := e.Templates.Create(ctx, models.MailTemplate{
		ID:         primitive.NewObjectID(),
		Name:       strings.TrimSpace(in.Name),
		Slug:       in.Slug,
		Subject:    in.Subject,
		BodyHTML:   body,
		BodyText:   in.BodyText,
		Variables:  in.Variables,
		SendPolicy: in.SendPolicy,
		Status:     models.TemplateDraft,
		Version:    1,
		CreatedBy:  &by,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if errors.Is(err, templatestore.ErrDuplicateSlug) {
		return models.MailTemplate{}, flow.Refuse(templateFlow, apperr.Conflict("a template with this slug already exists"))
	}
	if err != nil {
		return models.MailTemplate{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionCreateTemplate, audit.TargetTemplate, created.ID, map[string]string{"name": created.Name})
	metrics.Create("email_template", 1)
	return created, nil
}

// ApproveTemplate marks a draft approved by actor. Approving an approved
// template refreshes approvedBy; archived templates cannot be approved.
func (e *Engine) ApproveTemplate(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.MailTemplate, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return models.MailTemplate{}, flow.Refuse(templateFlow, err)
	}

	var out models.MailTemplate
	err := e.Atomic(ctx, func(ctx context.Context) error {
		t, err := e.Templates.GetByID(ctx, id)
		if err != nil {
			return flow.Lookup(err, "template")
		}
		if t.Status == models.TemplateArchived {
			return apperr.Conflict("archived templates cannot be approved")
		}
		by := actor.ID
		t.Status = models.TemplateApproved
		t.ApprovedBy = &by
		t.UpdatedAt = e.Clock()
		if err := e.Templates.Update(ctx, t); err != nil {
			return flow.Lookup(err, "template")
		}
		out = t
		return nil
	})
	if err != nil {
		return models.MailTemplate{}, flow.Refuse(templateFlow, err)
	}

	e.Record(ctx, actor, audit.ActionApproveTemplate, audit.TargetTemplate, id, map[string]string{
		"version": strconv.Itoa(out.Version),
	})
	metrics.Transition(templateFlow, string(models.TemplateApproved))
	return out, nil
}

// EditTemplateInput carries the fields to change. Nil fields are kept.
type EditTemplateInput struct {
	Name       *string        `json:"name" validate:"omitempty,notblank,max=255"`
	Subject    *string        `json:"subject" validate:"omitempty,notblank,max=500"`
	BodyHTML   *string        `json:"bodyHtml" validate:"omitempty,notblank"`
	BodyText   *string        `json:"bodyText"`
	Variables  []string       `json:"variables" validate:"omitempty,dive,notblank"`
	SendPolicy map[string]any `json:"sendPolicy"`
}

func (in EditTemplateInput) meta() map[string]string {
	m := map[string]string{}
	if in.Name != nil {
		m["name"] = *in.Name
	}
	if in.Subject != nil {
		m["subject"] = *in.Subject
	}
	if in.BodyHTML != nil {
		m["bodyHtml"] = "changed"
	}
	if in.BodyText != nil {
		m["bodyText"] = "changed"
	}
	if in.Variables != nil {
		m["variables"] = strings.Join(in.Variables, ",")
	}
	return m
}

// EditTemplate applies in. When the template is approved its live content
// is first snapshotted as version max+1, the live version advances past
// it, and the template returns to draft. Other templates change in place.
func (e *Engine) EditTemplate(ctx context.Context, actor *models.User, id primitive.ObjectID, in EditTemplateInput) (models.MailTemplate, error) {
	if err := authz.Authorize(actor, authz.MailTeam); err != nil {
		return models.MailTemplate{}, flow.Refuse(templateFlow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.MailTemplate{}, flow.Refuse(templateFlow, err)
	}
	var body string
	if in.BodyHTML != nil {
		body = htmlsanitize.Sanitize(*in.BodyHTML)
		if strings.TrimSpace(body) == "" {
			return models.MailTemplate{}, flow.Refuse(templateFlow, apperr.Field("bodyHtml", "has no content after sanitising"))
		}
	}

	var (
		out      models.MailTemplate
		snapshot int
	)
	err := e.Atomic(ctx, func(ctx context.Context) error {
		t, err := e.Templates.GetByID(ctx, id)
		if err != nil {
			return flow.Lookup(err, "template")
		}
		now := e.Clock()

		if t.Status == models.TemplateApproved {
			top, err := e.Versions.MaxVersion(ctx, id)
			if err != nil {
				return flow.Internal(err)
			}
			by := actor.ID
			v, err := e.Versions.Insert(ctx, models.EmailTemplateVersion{
				ID:         primitive.NewObjectID(),
				TemplateID: id,
				Version:    top + 1,
				Subject:    t.Subject,
				BodyHTML:   t.BodyHTML,
				BodyText:   t.BodyText,
				Variables:  t.Variables,
				CreatedBy:  &by,
				CreatedAt:  now,
			})
			if errors.Is(err, templatestore.ErrDuplicateVersion) {
				return apperr.Conflict("template was edited concurrently; retry")
			}
			if err != nil {
				return flow.Internal(err)
			}
			snapshot = v.Version
			t.Version = v.Version + 1
			t.Status = models.TemplateDraft
			t.ApprovedBy = nil
		}

		if in.Name != nil {
			t.Name = strings.TrimSpace(*in.Name)
		}
		if in.Subject != nil {
			t.Subject = *in.Subject
		}
		if in.BodyHTML != nil {
			t.BodyHTML = body
		}
		if in.BodyText != nil {
			t.BodyText = *in.BodyText
		}
		if in.Variables != nil {
			t.Variables = in.Variables
		}
		if in.SendPolicy != nil {
			t.SendPolicy = in.SendPolicy
		}
		t.UpdatedAt = now
		if err := e.Templates.Update(ctx, t); err != nil {
			return flow.Lookup(err, "template")
		}
		out = t
		return nil
	})
	if err != nil {
		return models.MailTemplate{}, flow.Refuse(templateFlow, err)
	}

	meta := in.meta()
	if snapshot > 0 {
		meta["snapshotVersion"] = strconv.Itoa(snapshot)
	}
	e.Record(ctx, actor, audit.ActionUpdateTemplate, audit.TargetTemplate, id, meta)
	metrics.Transition(templateFlow, string(out.Status))
	return out, nil
}

// ArchiveTemplate retires a template. Archived templates cannot back new
// requests.
func (e *Engine) ArchiveTemplate(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.MailTemplate, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return models.MailTemplate{}, flow.Refuse(templateFlow, err)
	}

	var out models.MailTemplate
	err := e.Atomic(ctx, func(ctx context.Context) error {
		t, err := e.Templates.GetByID(ctx, id)
		if err != nil {
			return flow.Lookup(err, "template")
		}
		if t.Status == models.TemplateArchived {
			return apperr.Conflict("template is already archived")
		}
		t.Status = models.TemplateArchived
		t.UpdatedAt = e.Clock()
		if err := e.Templates.Update(ctx, t); err != nil {
			return flow.Lookup(err, "template")
		}
		out = t
		return nil
	})
	if err != nil {
		return models.MailTemplate{}, flow.Refuse(templateFlow, err)
	}

	e.Record(ctx, actor, audit.ActionArchiveTemplate, audit.TargetTemplate, id, nil)
	metrics.Transition(templateFlow, string(models.TemplateArchived))
	return out, nil
}

// TemplateDetail is a template with its snapshots, newest first.
type TemplateDetail struct {
	models.MailTemplate
	Versions []models.EmailTemplateVersion `json:"versions"`
}

func (e *Engine) GetTemplate(ctx context.Context, actor *models.User, id primitive.ObjectID) (TemplateDetail, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return TemplateDetail{}, flow.Refuse(templateFlow, err)
	}
	t, err := e.Templates.GetByID(ctx, id)
	if err != nil {
		return TemplateDetail{}, flow.Refuse(templateFlow, flow.Lookup(err, "template"))
	}
	vs, err := e.Versions.ListByTemplate(ctx, id)
	if err != nil {
		return TemplateDetail{}, flow.Internal(err)
	}
	return TemplateDetail{MailTemplate: t, Versions: vs}, nil
}

func (e *Engine) ListTemplates(ctx context.Context, actor *models.User, status models.TemplateStatus) ([]models.MailTemplate, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return nil, flow.Refuse(templateFlow, err)
	}
	rows, err := e.Templates.List(ctx, status)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return rows, nil
}
