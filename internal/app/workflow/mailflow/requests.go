package mailflow

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	mailrequeststore "github.com/dalemusser/placementhub/internal/app/store/mailrequests"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	reviewable  = []models.RequestStatus{models.RequestPending}
	cancellable = []models.RequestStatus{models.RequestPending, models.RequestApproved, models.RequestScheduled}
	sendable    = []models.RequestStatus{models.RequestApproved, models.RequestScheduled}
)

// CreateRequestInput proposes a mail. Template requests name an approved
// template; custom requests carry their own subject and body.
type CreateRequestInput struct {
	CompanyID       *primitive.ObjectID `json:"companyId"`
	CycleID         *primitive.ObjectID `json:"companySeasonCycleId"`
	RequestType     models.RequestType  `json:"requestType" validate:"required,oneof=template custom"`
	TemplateID      *primitive.ObjectID `json:"templateId"`
	CustomSubject   string              `json:"customSubject" validate:"max=500"`
	CustomBody      string              `json:"customBody"`
	RecipientFilter map[string]any      `json:"recipientFilter"`
	Urgency         *int                `json:"urgency" validate:"omitempty,min=1,max=5"`
}

// CreateRequest files a pending request. A template request pins the
// template's live version.
func (e *Engine) CreateRequest(ctx context.Context, actor *models.User, in CreateRequestInput) (models.MailRequest, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}

	now := e.Clock()
	r := models.MailRequest{
		ID:              primitive.NewObjectID(),
		CompanyID:       in.CompanyID,
		CycleID:         in.CycleID,
		RequestedBy:     actor.ID,
		RequestType:     in.RequestType,
		RecipientFilter: in.RecipientFilter,
		Urgency:         in.Urgency,
		Status:          models.RequestPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	switch in.RequestType {
	case models.RequestTemplate:
		if in.TemplateID == nil {
			return models.MailRequest{}, flow.Refuse(requestFlow, apperr.Field("templateId", "is required for template requests"))
		}
		t, err := e.Templates.GetByID(ctx, *in.TemplateID)
		if err != nil {
			return models.MailRequest{}, flow.Refuse(requestFlow, flow.Lookup(err, "template"))
		}
		if t.Status != models.TemplateApproved {
			return models.MailRequest{}, flow.Refuse(requestFlow, apperr.Field("templateId", "must reference an approved template"))
		}
		v := t.Version
		r.TemplateID = in.TemplateID
		r.TemplateVersion = &v
	case models.RequestCustom:
		var issues []apperr.Issue
		if strings.TrimSpace(in.CustomSubject) == "" {
			issues = append(issues, apperr.Issue{Field: "customSubject", Message: "is required for custom requests"})
		}
		body := htmlsanitize.Sanitize(in.CustomBody)
		if strings.TrimSpace(body) == "" {
			issues = append(issues, apperr.Issue{Field: "customBody", Message: "is required for custom requests"})
		}
		if len(issues) > 0 {
			return models.MailRequest{}, flow.Refuse(requestFlow, apperr.Validation("validation failed", issues...))
		}
		r.CustomSubject = strings.TrimSpace(in.CustomSubject)
		r.CustomBody = body
	}

	if in.CompanyID != nil && e.Companies != nil {
		if _, err := e.Companies.GetByID(ctx, *in.CompanyID); err != nil {
			return models.MailRequest{}, flow.Refuse(requestFlow, flow.Lookup(err, "company"))
		}
	}

	created, err := e.Requests.Create(ctx, r)
	if err != nil {
		return models.MailRequest{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionCreateMailRequest, audit.TargetMailRequest, created.ID, map[string]string{
		"requestType": string(created.RequestType),
	})
	metrics.Create("mail_request", 1)
	return created, nil
}

// transition moves one request from one of from to ch.Status. A request
// that exists in another state is a CONFLICT.
func (e *Engine) transition(ctx context.Context, id primitive.ObjectID, from []models.RequestStatus, ch mailrequeststore.Change) (models.MailRequest, error) {
	cur, err := e.Requests.GetByID(ctx, id)
	if err != nil {
		return models.MailRequest{}, flow.Lookup(err, "mail request")
	}
	if !slices.Contains(from, cur.Status) {
		return models.MailRequest{}, apperr.Conflict(fmt.Sprintf("mail request is %s", cur.Status))
	}
	ok, err := e.Requests.Transition(ctx, id, from, ch)
	if err != nil {
		return models.MailRequest{}, flow.Internal(err)
	}
	if !ok {
		return models.MailRequest{}, apperr.Conflict("mail request changed while it was being reviewed")
	}
	cur.Status = ch.Status
	cur.UpdatedAt = ch.At
	if ch.ReviewedBy != nil {
		cur.ReviewedBy = ch.ReviewedBy
	}
	if ch.ReviewNote != "" {
		cur.ReviewNote = ch.ReviewNote
	}
	if ch.SendAt != nil {
		cur.SendAt = ch.SendAt
	}
	if ch.SentAt != nil {
		cur.SentAt = ch.SentAt
	}
	return cur, nil
}

// ApproveInput optionally schedules the send.
type ApproveInput struct {
	SendAt *time.Time `json:"sendAt"`
}

// ApproveRequest approves a pending request. With a sendAt it becomes
// scheduled instead.
func (e *Engine) ApproveRequest(ctx context.Context, actor *models.User, id primitive.ObjectID, in ApproveInput) (models.MailRequest, error) {
	if err := authz.Authorize(actor, authz.MailTeam); err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}
	now := e.Clock()
	if err := future(in.SendAt, now); err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}

	ch := approval(actor, in.SendAt, now)
	out, err := e.transition(ctx, id, reviewable, ch)
	if err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}

	meta := map[string]string{"status": string(out.Status)}
	if in.SendAt != nil {
		meta["sendAt"] = in.SendAt.UTC().Format(time.RFC3339)
	}
	e.Record(ctx, actor, audit.ActionApproveMailRequest, audit.TargetMailRequest, id, meta)
	metrics.Transition(requestFlow, string(out.Status))
	return out, nil
}

func approval(actor *models.User, sendAt *time.Time, now time.Time) mailrequeststore.Change {
	by := actor.ID
	ch := mailrequeststore.Change{Status: models.RequestApproved, ReviewedBy: &by, At: now}
	if sendAt != nil {
		at := sendAt.UTC()
		ch.Status = models.RequestScheduled
		ch.SendAt = &at
	}
	return ch
}

// RejectInput carries the mandatory review note.
type RejectInput struct {
	ReviewNote string `json:"reviewNote" validate:"notblank,max=2000"`
}

func (e *Engine) RejectRequest(ctx context.Context, actor *models.User, id primitive.ObjectID, in RejectInput) (models.MailRequest, error) {
	if err := authz.Authorize(actor, authz.MailTeam); err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}

	by := actor.ID
	note := strings.TrimSpace(in.ReviewNote)
	out, err := e.transition(ctx, id, reviewable, mailrequeststore.Change{
		Status:     models.RequestRejected,
		ReviewedBy: &by,
		ReviewNote: note,
		At:         e.Clock(),
	})
	if err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}

	e.Record(ctx, actor, audit.ActionRejectMailRequest, audit.TargetMailRequest, id, map[string]string{"reviewNote": note})
	metrics.Transition(requestFlow, string(models.RequestRejected))
	return out, nil
}

// BulkApproveInput approves several template requests at once.
type BulkApproveInput struct {
	RequestIDs []primitive.ObjectID `json:"requestIds" validate:"required,min=1,max=100,dive,required"`
	SendAt     *time.Time           `json:"sendAt"`
}

// BulkApprove approves every listed request or none. Custom requests
// always need individual review, so one in the batch refuses it.
func (e *Engine) BulkApprove(ctx context.Context, actor *models.User, in BulkApproveInput) ([]models.MailRequest, error) {
	if err := authz.Authorize(actor, authz.MailTeam); err != nil {
		return nil, flow.Refuse(requestFlow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return nil, flow.Refuse(requestFlow, err)
	}
	now := e.Clock()
	if err := future(in.SendAt, now); err != nil {
		return nil, flow.Refuse(requestFlow, err)
	}

	ids := slices.Clone(in.RequestIDs)
	slices.SortFunc(ids, func(a, b primitive.ObjectID) int { return strings.Compare(a.Hex(), b.Hex()) })
	ids = slices.Compact(ids)

	rows, err := e.Requests.GetByIDs(ctx, ids)
	if err != nil {
		return nil, flow.Internal(err)
	}
	if len(rows) != len(ids) {
		return nil, flow.Refuse(requestFlow, apperr.NotFound("mail request"))
	}
	var issues []apperr.Issue
	for _, r := range rows {
		if r.RequestType != models.RequestTemplate {
			issues = append(issues, apperr.Issue{Field: "requestIds", Message: r.ID.Hex() + " is a custom request and needs individual review"})
		}
	}
	if len(issues) > 0 {
		return nil, flow.Refuse(requestFlow, apperr.Validation("custom requests cannot be bulk approved", issues...))
	}
	for _, r := range rows {
		if r.Status != models.RequestPending {
			return nil, flow.Refuse(requestFlow, apperr.Conflict(fmt.Sprintf("mail request %s is %s", r.ID.Hex(), r.Status)))
		}
	}

	ch := approval(actor, in.SendAt, now)
	err = e.Atomic(ctx, func(ctx context.Context) error {
		n, err := e.Requests.TransitionMany(ctx, ids, reviewable, ch)
		if err != nil {
			return flow.Internal(err)
		}
		if n != int64(len(ids)) {
			return apperr.Conflict("some mail requests changed while they were being reviewed")
		}
		return nil
	})
	if err != nil {
		return nil, flow.Refuse(requestFlow, err)
	}

	for i := range rows {
		rows[i].Status = ch.Status
		rows[i].ReviewedBy = ch.ReviewedBy
		rows[i].SendAt = ch.SendAt
		rows[i].UpdatedAt = now
	}
	e.Record(ctx, actor, audit.ActionBulkApproveMailRequest, audit.TargetMailRequest, primitive.NilObjectID, map[string]string{
		"count":  strconv.Itoa(len(rows)),
		"status": string(ch.Status),
	})
	metrics.Transition(requestFlow, string(ch.Status))
	return rows, nil
}

// CancelRequest withdraws a request that has not been sent. Only its
// requester or an admin may cancel it.
func (e *Engine) CancelRequest(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.MailRequest, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}
	cur, err := e.Requests.GetByID(ctx, id)
	if err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, flow.Lookup(err, "mail request"))
	}
	if actor.Role != models.RoleAdmin && cur.RequestedBy != actor.ID {
		return models.MailRequest{}, flow.Refuse(requestFlow, apperr.Forbidden("only the requester or an admin can cancel a mail request"))
	}

	out, err := e.transition(ctx, id, cancellable, mailrequeststore.Change{Status: models.RequestCancelled, At: e.Clock()})
	if err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}

	e.Record(ctx, actor, audit.ActionCancelMailRequest, audit.TargetMailRequest, id, map[string]string{"from": string(cur.Status)})
	metrics.Transition(requestFlow, string(models.RequestCancelled))
	return out, nil
}

// MarkSent records that the dispatch collaborator delivered the mail.
func (e *Engine) MarkSent(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.MailRequest, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}
	now := e.Clock()
	out, err := e.transition(ctx, id, sendable, mailrequeststore.Change{Status: models.RequestSent, SentAt: &now, At: now})
	if err != nil {
		return models.MailRequest{}, flow.Refuse(requestFlow, err)
	}

	e.Record(ctx, actor, audit.ActionMarkMailRequestSent, audit.TargetMailRequest, id, nil)
	metrics.Transition(requestFlow, string(models.RequestSent))
	return out, nil
}

func (e *Engine) ListRequests(ctx context.Context, actor *models.User, f mailrequeststore.ListFilter, skip, limit int64) ([]models.MailRequest, int64, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return nil, 0, flow.Refuse(requestFlow, err)
	}
	rows, total, err := e.Requests.List(ctx, f, skip, limit)
	if err != nil {
		return nil, 0, flow.Internal(err)
	}
	return rows, total, nil
}
