// internal/app/features/mail/templates.go
package mail

import (
	"context"
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/mailflow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeTemplates handles GET /mail/templates?status=.
func (h *Handler) ServeTemplates(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	status, err := params.QueryEnum(r, "status", models.ParseTemplateStatus)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list templates")
	defer cancel()

	rows, err := h.Engine.ListTemplates(ctx, actor, status)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}

// HandleCreateTemplate handles POST /mail/templates. New templates start
// as drafts.
func (h *Handler) HandleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in mailflow.CreateTemplateInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create template")
	defer cancel()

	t, err := h.Engine.CreateTemplate(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, t)
}

// ServeTemplate handles GET /mail/templates/{id} with its version history.
func (h *Handler) ServeTemplate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "template detail")
	defer cancel()

	d, err := h.Engine.GetTemplate(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, d)
}

// HandleEditTemplate handles PATCH /mail/templates/{id}.
func (h *Handler) HandleEditTemplate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in mailflow.EditTemplateInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "edit template")
	defer cancel()

	t, err := h.Engine.EditTemplate(ctx, actor, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, t)
}

// HandleApproveTemplate handles POST /mail/templates/{id}/approve.
func (h *Handler) HandleApproveTemplate(w http.ResponseWriter, r *http.Request) {
	h.templateAction(w, r, "approve template", h.Engine.ApproveTemplate)
}

// HandleArchiveTemplate handles POST /mail/templates/{id}/archive.
func (h *Handler) HandleArchiveTemplate(w http.ResponseWriter, r *http.Request) {
	h.templateAction(w, r, "archive template", h.Engine.ArchiveTemplate)
}

type templateOp func(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.MailTemplate, error)

func (h *Handler) templateAction(w http.ResponseWriter, r *http.Request, op string, fn templateOp) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()

	t, err := fn(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, t)
}
