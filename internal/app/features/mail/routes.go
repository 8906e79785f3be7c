// internal/app/features/mail/routes.go
package mail

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// TemplateRoutes mounts template routes (typically at "/mail/templates").
func TemplateRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeTemplates)
	r.Post("/", h.HandleCreateTemplate)
	r.Get("/{id}", h.ServeTemplate)
	r.Patch("/{id}", h.HandleEditTemplate)
	r.Post("/{id}/approve", h.HandleApproveTemplate)
	r.Post("/{id}/archive", h.HandleArchiveTemplate)
	return r
}

// RequestRoutes mounts mail request routes (typically at "/mail/requests").
func RequestRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeRequests)
	r.Post("/", h.HandleCreateRequest)
	r.Post("/bulk-approve", h.HandleBulkApprove)
	r.Post("/{id}/approve", h.HandleApproveRequest)
	r.Post("/{id}/reject", h.HandleRejectRequest)
	r.Post("/{id}/cancel", h.HandleCancelRequest)
	r.Post("/{id}/sent", h.HandleMarkSent)
	return r
}
