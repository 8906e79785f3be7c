// internal/app/features/companies/contacts.go
package companies

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/outreach"
)

// ServeCompanyContacts handles GET /companies/{id}/contacts.
func (h *Handler) ServeCompanyContacts(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list company contacts")
	defer cancel()

	rows, err := h.Engine.ListContacts(ctx, actor, &id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}

// ServeContacts handles GET /contacts?companyId=.
func (h *Handler) ServeContacts(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	companyID, err := params.QueryID(r, "companyId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list contacts")
	defer cancel()

	rows, err := h.Engine.ListContacts(ctx, actor, companyID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}

// HandleCreateContact handles POST /companies/{id}/contacts.
func (h *Handler) HandleCreateContact(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	companyID, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in outreach.ContactInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create contact")
	defer cancel()

	c, err := h.Engine.CreateContact(ctx, actor, companyID, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, c)
}

// HandleUpdateContact handles PATCH /contacts/{id}.
func (h *Handler) HandleUpdateContact(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in outreach.ContactPatch
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update contact")
	defer cancel()

	c, err := h.Engine.UpdateContact(ctx, actor, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, c)
}

// HandleDeleteContact handles DELETE /contacts/{id}.
func (h *Handler) HandleDeleteContact(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete contact")
	defer cancel()

	if err := h.Engine.DeleteContact(ctx, actor, id); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, map[string]string{"id": id.Hex()})
}

// HandleQuickAction handles POST /contacts/{id}/quick-action.
func (h *Handler) HandleQuickAction(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in outreach.QuickLogInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "contact quick action")
	defer cancel()

	in2, err := h.Engine.QuickLog(ctx, actor, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, in2)
}
