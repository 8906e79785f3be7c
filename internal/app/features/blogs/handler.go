// internal/app/features/blogs/handler.go
package blogs

import (
	"context"
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared/params"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/paging"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/app/workflow/blogflow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves placement blogs and their moderation queue.
type Handler struct {
	Engine *blogflow.Engine
	Log    *zap.Logger
}

func NewHandler(engine *blogflow.Engine, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Log: logger}
}

// ServeList handles GET /blogs?companyId=&tag=.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var (
		f   blogflow.PublishedFilter
		err error
	)
	if f.CompanyID, err = params.QueryID(r, "companyId"); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	f.Tag = params.Query(r, "tag")
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list blogs")
	defer cancel()

	rows, total, err := h.Engine.ListPublished(ctx, actor, f, p.Skip(), p.Limit64())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Page(w, rows, paging.NewMeta(p, total))
}

// ServeMine handles GET /blogs/mine.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	p := paging.Parse(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list own blogs")
	defer cancel()

	rows, total, err := h.Engine.ListMine(ctx, actor, p.Skip(), p.Limit64())
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Page(w, rows, paging.NewMeta(p, total))
}

// HandleSubmit handles POST /blogs.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	var in blogflow.SubmitInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "submit blog")
	defer cancel()

	b, err := h.Engine.Submit(ctx, actor, in)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.Created(w, b)
}

// ServeBlog handles GET /blogs/{id}.
func (h *Handler) ServeBlog(w http.ResponseWriter, r *http.Request) {
	h.blogAction(w, r, "get blog", h.Engine.Get)
}

// ServeQueue handles GET /admin/blogs/moderation?status=.
func (h *Handler) ServeQueue(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.CurrentUser(r)
	status, err := params.QueryEnum(r, "status", models.ParseModerationStatus)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "blog moderation queue")
	defer cancel()

	rows, err := h.Engine.Queue(ctx, actor, status)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, rows)
}

// HandleApprove handles POST /admin/blogs/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.blogAction(w, r, "approve blog", h.Engine.Approve)
}

// HandleReject handles POST /admin/blogs/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	var in blogflow.RejectInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.blogAction(w, r, "reject blog", func(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.Blog, error) {
		return h.Engine.Reject(ctx, actor, id, in)
	})
}

type blogOp func(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.Blog, error)

func (h *Handler) blogAction(w http.ResponseWriter, r *http.Request, op string, fn blogOp) {
	actor, _ := auth.CurrentUser(r)
	id, err := params.PathID(r, "id")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, op)
	defer cancel()

	b, err := fn(ctx, actor, id)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.OK(w, b)
}
