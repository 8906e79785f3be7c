// internal/app/features/mail/requests.go
package mail

import (
	"context"
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	mailrequeststore "github.com/dalemusser/placementhub/internal/app/store/mailrequests"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/paging"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/mailflow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServeRequests handles GET /mail/requests?status=&requestedBy=&companyId=.
func (h *Handler) ServeRequests(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var (
		f   mailrequeststore.ListFilter
		err error
	)
	if f.Status, err = params.QueryEnum(r, "status", models.ParseRequestStatus); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if f.RequestedBy, err = params.QueryID(r, "requestedBy"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	if f.CompanyID, err = params.QueryID(r, "companyId"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list mail requests")
	defer cancel()

	rows, total, err := h.Engine.ListRequests(ctx, actor, f, p.Skip(), p.Limit64())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Page(w, rows, paging.NewMeta(p, total))
}

// HandleCreateRequest handles POST /mail/requests.
func (h *Handler) HandleCreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in mailflow.CreateRequestInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create mail request")
	defer cancel()

	req, err := h.Engine.CreateRequest(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, req)
}

// HandleApproveRequest handles POST /mail/requests/{id}/approve. The body
// is optional; a sendAt schedules the request.
func (h *Handler) HandleApproveRequest(w http.ResponseWriter, r *http.Request) {
	var in mailflow.ApproveInput
	if r.ContentLength != 0 {
		if err := inputval.DecodeJSON(r, &in); err != nil {
			respond.Error(w, r, h.Log, err)
			return
		}
	}
	h.requestAction(w, r, "approve mail request", func(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.MailRequest, error) {
		return h.Engine.ApproveRequest(ctx, actor, id, in)
	})
}

// HandleRejectRequest handles POST /mail/requests/{id}/reject.
func (h *Handler) HandleRejectRequest(w http.ResponseWriter, r *http.Request) {
	var in mailflow.RejectInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.requestAction(w, r, "reject mail request", func(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.MailRequest, error) {
		return h.Engine.RejectRequest(ctx, actor, id, in)
	})
}

// HandleCancelRequest handles POST /mail/requests/{id}/cancel.
func (h *Handler) HandleCancelRequest(w http.ResponseWriter, r *http.Request) {
	h.requestAction(w, r, "cancel mail request", h.Engine.CancelRequest)
}

// HandleMarkSent handles POST /mail/requests/{id}/sent.
func (h *Handler) HandleMarkSent(w http.ResponseWriter, r *http.Request) {
	h.requestAction(w, r, "mark mail request sent", h.Engine.MarkSent)
}

// HandleBulkApprove handles POST /mail/requests/bulk-approve.
func (h *Handler) HandleBulkApprove(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in mailflow.BulkApproveInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "bulk approve mail requests")
	defer cancel()

	rows, err := h.Engine.BulkApprove(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}

type requestOp func(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.MailRequest, error)

func (h *Handler) requestAction(w http.ResponseWriter, r *http.Request, op string, fn requestOp) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()

	req, err := fn(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, req)
}
