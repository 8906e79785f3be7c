// internal/app/features/companies/routes.go
package companies

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts company routes (typically at "/companies").
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.ServeDetail)
	r.Patch("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
	r.Get("/{id}/contacts", h.ServeCompanyContacts)
	r.Post("/{id}/contacts", h.HandleCreateContact)
	return r
}

// ContactRoutes mounts contact routes (typically at "/contacts").
func ContactRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ServeContacts)
	r.Patch("/{id}", h.HandleUpdateContact)
	r.Delete("/{id}", h.HandleDeleteContact)
	r.Post("/{id}/quick-action", h.HandleQuickAction)
	return r
}

// ExportRoutes mounts CSV exports (typically at "/exports").
func ExportRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/contacts", h.ServeContactsCSV)
	return r
}
