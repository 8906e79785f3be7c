// internal/app/features/assignments/routes.go
package assignments

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts assignment routes (typically at "/assignments").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Post("/bulk", h.HandleBulk)
	r.Get("/history", h.ServeHistory)
	r.Post("/{id}/reassign", h.HandleReassign)
	return r
}
