// internal/app/features/users/routes.go
package users

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// AuthRoutes mounts the caller's own account routes (typically at "/auth").
func AuthRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/me", h.ServeMe)
	return r
}

// AdminRoutes mounts user management (typically at "/admin/users").
// Every operation is admin-only; the engine enforces it.
func AdminRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleProvision)
	r.Patch("/{id}/active", h.HandleSetActive)
	r.Put("/{id}/permissions", h.HandleSetPermissions)
	return r
}
