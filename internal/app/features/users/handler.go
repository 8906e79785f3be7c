// internal/app/features/users/handler.go
package users

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/paging"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/accounts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the caller's profile and admin user management.
type Handler struct {
	Engine *accounts.Engine
	Log    *zap.Logger
}

func NewHandler(engine *accounts.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// ServeMe handles GET /auth/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "current user")
	defer cancel()

	p, err := h.Engine.Me(ctx, actor)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, p)
}

// ServeList handles GET /admin/users?role=&search=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	role, err := params.QueryEnum(r, "role", models.ParseRole)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	f := userstore.ListFilter{Role: role, Search: params.Query(r, "search")}
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list users")
	defer cancel()

	rows, total, err := h.Engine.ListUsers(ctx, actor, f, p.Skip(), p.Limit64())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Page(w, rows, paging.NewMeta(p, total))
}

// HandleProvision handles POST /admin/users.
func (h *Handler) HandleProvision(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in accounts.ProvisionInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "provision user")
	defer cancel()

	u, err := h.Engine.ProvisionUser(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, u)
}

type activeInput struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// HandleSetActive handles PATCH /admin/users/{id}/active.
func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in activeInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Struct(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "set user active")
	defer cancel()

	u, err := h.Engine.SetUserActive(ctx, actor, id, *in.IsActive)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, u)
}

// HandleSetPermissions handles PUT /admin/users/{id}/permissions.
func (h *Handler) HandleSetPermissions(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in accounts.SetPermissionsInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "set permissions")
	defer cancel()

	perms, err := h.Engine.SetPermissions(ctx, actor, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, perms)
}
