// internal/app/features/assignments/handler.go
package assignments

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	assignmentstore "github.com/dalemusser/placementhub/internal/app/store/assignments"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/paging"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/ownership"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves assignments and the reassignment trail.
type Handler struct {
	Engine *ownership.Engine
	Log    *zap.Logger
}

func NewHandler(engine *ownership.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// ServeList handles GET /assignments?itemType=&itemId=&assigneeId=&active=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var (
		f   assignmentstore.ListFilter
		err error
	)
	if f.ItemType, err = params.QueryEnum(r, "itemType", models.ParseItemType); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if f.ItemID, err = params.QueryID(r, "itemId"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if f.AssigneeID, err = params.QueryID(r, "assigneeId"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if f.ActiveOnly, err = params.QueryBool(r, "active"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list assignments")
	defer cancel()

	rows, total, err := h.Engine.List(ctx, actor, f, p.Skip(), p.Limit64())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Page(w, rows, paging.NewMeta(p, total))
}

// HandleCreate handles POST /assignments.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in ownership.AssignInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "assign")
	defer cancel()

	a, err := h.Engine.Assign(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, a)
}

// HandleBulk handles POST /assignments/bulk. Either every row is created or
// none is.
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in ownership.BulkInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "bulk assign")
	defer cancel()

	rows, err := h.Engine.BulkAssign(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, rows)
}

// HandleReassign handles POST /assignments/{id}/reassign.
func (h *Handler) HandleReassign(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in ownership.ReassignInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "reassign")
	defer cancel()

	a, err := h.Engine.Reassign(ctx, actor, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, a)
}

// ServeHistory handles GET /assignments/history?assignmentId=. Without an
// assignment it returns the latest rows across all assignments.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.QueryID(r, "assignmentId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "assignment history")
	defer cancel()

	rows, err := h.Engine.ListHistory(ctx, actor, id, p.Skip(), p.Limit64())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}
