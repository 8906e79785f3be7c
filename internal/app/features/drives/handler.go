// internal/app/features/drives/handler.go
package drives

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/scheduling"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves recruitment seasons and drives.
type Handler struct {
	Engine *scheduling.Engine
	Log    *zap.Logger
}

func NewHandler(engine *scheduling.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// ServeSeasons handles GET /seasons.
func (h *Handler) ServeSeasons(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list seasons")
	defer cancel()

	rows, err := h.Engine.ListSeasons(ctx, actor)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}

// HandleCreateSeason handles POST /seasons.
func (h *Handler) HandleCreateSeason(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in scheduling.SeasonInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create season")
	defer cancel()

	s, err := h.Engine.CreateSeason(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, s)
}

// ServeDrives handles GET /drives?from=&to=&status=&seasonId=.
func (h *Handler) ServeDrives(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var (
		q   scheduling.DriveQuery
		err error
	)
	if q.From, err = params.QueryTime(r, "from"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if q.To, err = params.QueryTime(r, "to"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if q.Status, err = params.QueryEnum(r, "status", models.ParseDriveStatus); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if q.SeasonID, err = params.QueryID(r, "seasonId"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list drives")
	defer cancel()

	rows, err := h.Engine.ListDrives(ctx, actor, q)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}

// HandleCreateDrive handles POST /drives. The response carries the
// venue conflict flag computed at creation.
func (h *Handler) HandleCreateDrive(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in scheduling.DriveInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create drive")
	defer cancel()

	d, err := h.Engine.CreateDrive(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, d)
}

// HandleUpdateDrive handles PATCH /drives/{id}.
func (h *Handler) HandleUpdateDrive(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in scheduling.DrivePatch
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update drive")
	defer cancel()

	d, err := h.Engine.UpdateDrive(ctx, actor, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, d)
}

type confirmation struct {
	models.Drive
	Notified int `json:"notified"`
}

// HandleConfirmDrive handles POST /drives/{id}/confirm and reports how many
// followers were notified.
func (h *Handler) HandleConfirmDrive(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "confirm drive")
	defer cancel()

	d, n, err := h.Engine.ConfirmDrive(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, confirmation{Drive: d, Notified: n})
}
