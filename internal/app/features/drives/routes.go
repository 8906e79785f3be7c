// internal/app/features/drives/routes.go
package drives

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// SeasonRoutes mounts season routes (typically at "/seasons").
func SeasonRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeSeasons)
	r.Post("/", h.HandleCreateSeason)
	return r
}

// DriveRoutes mounts drive routes (typically at "/drives").
func DriveRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeDrives)
	r.Post("/", h.HandleCreateDrive)
	r.Patch("/{id}", h.HandleUpdateDrive)
	r.Post("/{id}/confirm", h.HandleConfirmDrive)
	return r
}
