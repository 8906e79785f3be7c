// internal/app/features/blogs/routes.go
package blogs

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the reader and author routes (typically at "/blogs").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleSubmit)
	r.Get("/mine", h.ServeMine)
	r.Get("/{id}", h.ServeBlog)
	return r
}

// ModerationRoutes mounts the staff queue (typically at "/admin/blogs").
func ModerationRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/moderation", h.ServeQueue)
	r.Post("/{id}/approve", h.HandleApprove)
	r.Post("/{id}/reject", h.HandleReject)
	return r
}
