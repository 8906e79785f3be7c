// internal/app/features/cycles/handler.go
package cycles

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	cyclestore "github.com/dalemusser/placementhub/internal/app/store/cycles"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/paging"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/cyclestatus"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves company season cycles and their status history.
type Handler struct {
	Engine *cyclestatus.Engine
	Log    *zap.Logger
}

func NewHandler(engine *cyclestatus.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// ServeList handles GET /company-season-cycles?seasonId=&companyId=&ownerId=&status=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	f, err := listFilter(r)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list cycles")
	defer cancel()

	rows, total, err := h.Engine.ListCycles(ctx, actor, f, p.Skip(), p.Limit64())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Page(w, rows, paging.NewMeta(p, total))
}

func listFilter(r *http.Request) (cyclestore.ListFilter, error) {
	var f cyclestore.ListFilter
	var err error
	if f.SeasonID, err = params.QueryID(r, "seasonId"); err != nil {
		return f, err
	}
	if f.CompanyID, err = params.QueryID(r, "companyId"); err != nil {
		return f, err
	}
	if f.OwnerID, err = params.QueryID(r, "ownerId"); err != nil {
		return f, err
	}
	f.Status, err = params.QueryEnum(r, "status", models.ParseCycleStatus)
	return f, err
}

// HandleCreate handles POST /company-season-cycles.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in cyclestatus.CreateInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create cycle")
	defer cancel()

	c, err := h.Engine.CreateCycle(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, c)
}

// HandleStatus handles PATCH /company-season-cycles/{id}/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in cyclestatus.TransitionInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "transition cycle status")
	defer cancel()

	c, err := h.Engine.TransitionStatus(ctx, actor, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, c)
}

// ServeHistory handles GET /company-season-cycles/{id}/history, newest first.
func (h *Handler) ServeHistory(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "cycle history")
	defer cancel()

	rows, err := h.Engine.HistoryPage(ctx, actor, id, p.Skip(), p.Limit64())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}
