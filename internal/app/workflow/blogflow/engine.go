// Package blogflow runs student placement blogs: anyone on campus may
// submit a post about a company, staff moderate it, and only approved posts
// are readable by everyone.
package blogflow

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	blogstore "github.com/dalemusser/placementhub/internal/app/store/blogs"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const workflow = "blog"

// QueueLimit caps one moderation queue read.
const QueueLimit = 100

var (
	authors = authz.Rule{Roles: []models.Role{models.RoleAdmin, models.RoleCoordinator, models.RoleStudent}}
	readers = authz.Rule{Roles: []models.Role{models.RoleAdmin, models.RoleCoordinator, models.RoleStudent, models.RoleSupport}}

	approvable = []models.ModerationStatus{models.BlogPending, models.BlogRejected}
	rejectable = []models.ModerationStatus{models.BlogPending, models.BlogApproved}
)

type Blogs interface {
	Create(ctx context.Context, b models.Blog) (models.Blog, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Blog, error)
	Moderate(ctx context.Context, id primitive.ObjectID, from []models.ModerationStatus, d blogstore.Decision) (bool, error)
	List(ctx context.Context, f blogstore.ListFilter, skip, limit int64) ([]models.Blog, int64, error)
}

type Companies interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Company, error)
}

type Engine struct {
	flow.Env
	Blogs     Blogs
	Companies Companies
}

// SubmitInput is a new post. Body is HTML and is sanitised before storage.
type SubmitInput struct {
	CompanyID    primitive.ObjectID `json:"companyId" validate:"required"`
	Title        string             `json:"title" validate:"notblank,max=500"`
	Body         string             `json:"body" validate:"notblank"`
	Tags         []string           `json:"tags" validate:"max=20,dive,max=50"`
	IsAIAssisted bool               `json:"isAiAssisted"`
}

// Submit files a post for moderation.
func (e *Engine) Submit(ctx context.Context, actor *models.User, in SubmitInput) (models.Blog, error) {
	if err := authz.Authorize(actor, authors); err != nil {
		return models.Blog{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.Blog{}, flow.Refuse(workflow, err)
	}
	body := htmlsanitize.Sanitize(in.Body)
	if strings.TrimSpace(body) == "" {
		return models.Blog{}, flow.Refuse(workflow, apperr.Field("body", "has no content once sanitised"))
	}
	if _, err := e.Companies.GetByID(ctx, in.CompanyID); err != nil {
		return models.Blog{}, flow.Refuse(workflow, flow.Lookup(err, "company"))
	}

	now := e.Clock()
	created, err := e.Blogs.Create(ctx, models.Blog{
		ID:               primitive.NewObjectID(),
		AuthorID:         actor.ID,
		CompanyID:        in.CompanyID,
		Title:            strings.TrimSpace(in.Title),
		Body:             body,
		Tags:             normaliseTags(in.Tags),
		IsAIAssisted:     in.IsAIAssisted,
		ModerationStatus: models.BlogPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return models.Blog{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionCreateBlog, audit.TargetBlog, created.ID, map[string]string{"title": created.Title})
	metrics.Create("blog", 1)
	return created, nil
}

// normaliseTags trims and lowercases tags, dropping blanks and repeats
// while keeping first-seen order.
func normaliseTags(in []string) []string {
	var out []string
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// PublishedFilter narrows the public list.
type PublishedFilter struct {
	CompanyID *primitive.ObjectID
	Tag       string
}

// ListPublished returns approved posts, newest first.
func (e *Engine) ListPublished(ctx context.Context, actor *models.User, f PublishedFilter, skip, limit int64) ([]models.Blog, int64, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return nil, 0, flow.Refuse(workflow, err)
	}
	rows, total, err := e.Blogs.List(ctx, blogstore.ListFilter{
		Status:    models.BlogApproved,
		CompanyID: f.CompanyID,
		Tag:       strings.ToLower(strings.TrimSpace(f.Tag)),
	}, skip, limit)
	if err != nil {
		return nil, 0, flow.Internal(err)
	}
	return rows, total, nil
}

// ListMine returns the actor's own posts in every moderation state.
func (e *Engine) ListMine(ctx context.Context, actor *models.User, skip, limit int64) ([]models.Blog, int64, error) {
	if err := authz.Authorize(actor, authors); err != nil {
		return nil, 0, flow.Refuse(workflow, err)
	}
	id := actor.ID
	rows, total, err := e.Blogs.List(ctx, blogstore.ListFilter{AuthorID: &id}, skip, limit)
	if err != nil {
		return nil, 0, flow.Internal(err)
	}
	return rows, total, nil
}

// Get returns one post. Unapproved posts are visible only to their author
// and to staff; anyone else sees NOT_FOUND.
func (e *Engine) Get(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.Blog, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return models.Blog{}, flow.Refuse(workflow, err)
	}
	b, err := e.Blogs.GetByID(ctx, id)
	if err != nil {
		return models.Blog{}, flow.Refuse(workflow, flow.Lookup(err, "blog"))
	}
	if b.ModerationStatus != models.BlogApproved && b.AuthorID != actor.ID && !authz.Allowed(actor, authz.Staff) {
		return models.Blog{}, flow.Refuse(workflow, apperr.NotFound("blog"))
	}
	return b, nil
}

// Queue returns posts in status for moderators, newest first. An empty
// status means pending.
func (e *Engine) Queue(ctx context.Context, actor *models.User, status models.ModerationStatus) ([]models.Blog, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	if status == "" {
		status = models.BlogPending
	}
	rows, _, err := e.Blogs.List(ctx, blogstore.ListFilter{Status: status}, 0, QueueLimit)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return rows, nil
}

// moderate moves one post from one of from to d.Status. A post already in
// another state is a CONFLICT.
func (e *Engine) moderate(ctx context.Context, id primitive.ObjectID, from []models.ModerationStatus, d blogstore.Decision) (models.Blog, error) {
	cur, err := e.Blogs.GetByID(ctx, id)
	if err != nil {
		return models.Blog{}, flow.Lookup(err, "blog")
	}
	if !slices.Contains(from, cur.ModerationStatus) {
		return models.Blog{}, apperr.Conflict(fmt.Sprintf("blog is already %s", cur.ModerationStatus))
	}
	ok, err := e.Blogs.Moderate(ctx, id, from, d)
	if err != nil {
		return models.Blog{}, flow.Internal(err)
	}
	if !ok {
		return models.Blog{}, apperr.Conflict("blog changed while it was being moderated")
	}
	cur.ModerationStatus = d.Status
	cur.UpdatedAt = d.At
	switch d.Status {
	case models.BlogApproved:
		at := d.At
		cur.ApprovedBy = d.ApprovedBy
		cur.ApprovedAt = &at
	case models.BlogRejected:
		cur.ModerationNote = d.Note
		cur.ApprovedBy = nil
		cur.ApprovedAt = nil
	}
	return cur, nil
}

// Approve publishes a pending or previously rejected post.
func (e *Engine) Approve(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.Blog, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Blog{}, flow.Refuse(workflow, err)
	}
	by := actor.ID
	out, err := e.moderate(ctx, id, approvable, blogstore.Decision{Status: models.BlogApproved, ApprovedBy: &by, At: e.Clock()})
	if err != nil {
		return models.Blog{}, flow.Refuse(workflow, err)
	}
	e.Record(ctx, actor, audit.ActionApproveBlog, audit.TargetBlog, id, nil)
	metrics.Transition(workflow, string(models.BlogApproved))
	return out, nil
}

// RejectInput carries the mandatory moderation note.
type RejectInput struct {
	ModerationNote string `json:"moderationNote" validate:"notblank,max=2000"`
}

// Reject turns down a pending post or withdraws an approved one.
func (e *Engine) Reject(ctx context.Context, actor *models.User, id primitive.ObjectID, in RejectInput) (models.Blog, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Blog{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.Blog{}, flow.Refuse(workflow, err)
	}
	note := strings.TrimSpace(in.ModerationNote)
	out, err := e.moderate(ctx, id, rejectable, blogstore.Decision{Status: models.BlogRejected, Note: note, At: e.Clock()})
	if err != nil {
		return models.Blog{}, flow.Refuse(workflow, err)
	}
	e.Record(ctx, actor, audit.ActionRejectBlog, audit.TargetBlog, id, map[string]string{"moderationNote": note})
	metrics.Transition(workflow, string(models.BlogRejected))
	return out, nil
}
