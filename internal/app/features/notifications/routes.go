// internal/app/features/notifications/routes.go
package notifications

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts notification routes (typically at "/notifications").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/mark-read", h.HandleMarkRead)
	return r
}

// WishlistRoutes mounts student follow routes (typically at "/wishlist").
func WishlistRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeWishlist)
	r.Post("/toggle", h.HandleToggle)
	return r
}
