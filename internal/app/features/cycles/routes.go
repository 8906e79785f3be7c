// internal/app/features/cycles/routes.go
package cycles

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts cycle routes (typically at "/company-season-cycles").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Patch("/{id}/status", h.HandleStatus)
	r.Get("/{id}/history", h.ServeHistory)
	return r
}
