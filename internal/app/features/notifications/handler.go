// internal/app/features/notifications/handler.go
package notifications

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/accounts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the caller's notifications and a student's company
// wishlist.
type Handler struct {
	Engine *accounts.Engine
	Log    *zap.Logger
}

func NewHandler(engine *accounts.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// ServeList handles GET /notifications?unread=true.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	unread, err := params.QueryBool(r, "unread")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list notifications")
	defer cancel()

	rows, err := h.Engine.ListNotifications(ctx, actor, unread)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}

// HandleMarkRead handles POST /notifications/mark-read.
func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in accounts.MarkReadInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "mark notifications read")
	defer cancel()

	n, err := h.Engine.MarkRead(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, map[string]int64{"updated": n})
}

// ServeWishlist handles GET /wishlist.
func (h *Handler) ServeWishlist(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list follows")
	defer cancel()

	rows, err := h.Engine.ListFollows(ctx, actor)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}

type toggleInput struct {
	CompanyID primitive.ObjectID `json:"companyId" validate:"required"`
}

// HandleToggle handles POST /wishlist/toggle and reports whether the
// student now follows the company.
func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in toggleInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if err := inputval.Struct(in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "toggle follow")
	defer cancel()

	following, err := h.Engine.ToggleFollow(ctx, actor, in.CompanyID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, map[string]any{"companyId": in.CompanyID.Hex(), "following": following})
}
