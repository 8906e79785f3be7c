// internal/app/features/companies/companies.go
package companies

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	companystore "github.com/dalemusser/placementhub/internal/app/store/companies"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/paging"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/outreach"
)

// ServeList handles GET /companies?search=&industry=&page=&limit=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	p := paging.Parse(r)
	f := companystore.ListFilter{
		Search:   params.Query(r, "search"),
		Industry: params.Query(r, "industry"),
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list companies")
	defer cancel()

	rows, total, err := h.Engine.ListCompanies(ctx, actor, f, p.Skip(), p.Limit64())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Page(w, rows, paging.NewMeta(p, total))
}

// HandleCreate handles POST /companies.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in outreach.CompanyInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create company")
	defer cancel()

	c, err := h.Engine.CreateCompany(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, c)
}

// ServeDetail handles GET /companies/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "company detail")
	defer cancel()

	d, err := h.Engine.GetCompany(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, d)
}

// HandleUpdate handles PATCH /companies/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var in outreach.CompanyPatch
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update company")
	defer cancel()

	c, err := h.Engine.UpdateCompany(ctx, actor, id, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, c)
}

// HandleDelete handles DELETE /companies/{id}. The response reports how
// many dependent rows went with the company.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete company")
	defer cancel()

	counts, err := h.Engine.DeleteCompany(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, map[string]any{"id": id.Hex(), "deleted": counts})
}
