// Package ownership governs who is responsible for a company or contact.
//
// Assignments are created singly or in all-or-nothing batches. Reassignment
// requires a reason and writes its trail row in the same transaction as the
// assignment update.
package ownership

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	assignmentstore "github.com/dalemusser/placementhub/internal/app/store/assignments"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const workflow = "assignment"

// History limits.
const (
	GlobalHistoryLimit  = 100
	DefaultHistoryLimit = 20
)

type Assignments interface {
	Create(ctx context.Context, a models.Assignment) (models.Assignment, error)
	InsertMany(ctx context.Context, rows []models.Assignment) error
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Assignment, error)
	Reassign(ctx context.Context, id, to, by primitive.ObjectID, at time.Time) error
	List(ctx context.Context, f assignmentstore.ListFilter, skip, limit int64) ([]models.Assignment, int64, error)
}

type History interface {
	Append(ctx context.Context, h models.AssignmentHistory) (models.AssignmentHistory, error)
	List(ctx context.Context, assignmentID *primitive.ObjectID, skip, limit int64) ([]models.AssignmentHistory, error)
}

// Users reports which of the given ids belong to active users.
type Users interface {
	ActiveIDs(ctx context.Context, ids []primitive.ObjectID) ([]primitive.ObjectID, error)
}

// Engine runs assignment operations.
type Engine struct {
	flow.Env
	Assignments Assignments
	History     History
	Users       Users
	Log         *zap.Logger
}

// AssignInput is one requested assignment.
type AssignInput struct {
	ItemType       models.ItemType       `json:"itemType" validate:"required,oneof=company contact"`
	ItemID         primitive.ObjectID    `json:"itemId" validate:"required"`
	AssigneeUserID primitive.ObjectID    `json:"assigneeUserId" validate:"required"`
	Role           models.AssignmentRole `json:"assignmentRole" validate:"omitempty,oneof=primary secondary"`
	Notes          string                `json:"notes" validate:"max=2000"`
}

func (in AssignInput) row(by primitive.ObjectID, now time.Time) models.Assignment {
	role := in.Role
	if role == "" {
		role = models.AssignPrimary
	}
	return models.Assignment{
		ID:             primitive.NewObjectID(),
		ItemType:       in.ItemType,
		ItemID:         in.ItemID,
		AssigneeUserID: in.AssigneeUserID,
		AssignedBy:     &by,
		Role:           role,
		Notes:          in.Notes,
		IsActive:       true,
		AssignedAt:     now,
		UpdatedAt:      now,
	}
}

// checkAssignees returns VALIDATION_FAILED naming every input whose
// assignee is unknown or inactive. field formats the issue path.
func (e *Engine) checkAssignees(ctx context.Context, ids []primitive.ObjectID, field func(i int) string) error {
	active, err := e.Users.ActiveIDs(ctx, ids)
	if err != nil {
		return flow.Internal(err)
	}
	ok := make(map[primitive.ObjectID]bool, len(active))
	for _, id := range active {
		ok[id] = true
	}
	var issues []apperr.Issue
	for i, id := range ids {
		if !ok[id] {
			issues = append(issues, apperr.Issue{Field: field(i), Message: "must be an active user"})
		}
	}
	if len(issues) > 0 {
		return apperr.Validation("validation failed", issues...)
	}
	return nil
}

// Assign creates one assignment on behalf of actor.
func (e *Engine) Assign(ctx context.Context, actor *models.User, in AssignInput) (models.Assignment, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Assignment{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.Assignment{}, flow.Refuse(workflow, err)
	}
	if err := e.checkAssignees(ctx, []primitive.ObjectID{in.AssigneeUserID}, func(int) string { return "assigneeUserId" }); err != nil {
		return models.Assignment{}, flow.Refuse(workflow, err)
	}

	created, err := e.Assignments.Create(ctx, in.row(actor.ID, e.Clock()))
	if err != nil {
		return models.Assignment{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionCreateAssignment, audit.TargetAssignment, created.ID, map[string]string{
		"itemType":       string(created.ItemType),
		"itemId":         created.ItemID.Hex(),
		"assigneeUserId": created.AssigneeUserID.Hex(),
		"assignmentRole": string(created.Role),
	})
	metrics.Create("assignment", 1)
	return created, nil
}

// BulkInput is a batch of assignments authorized and applied as one unit.
type BulkInput struct {
	Assignments []AssignInput `json:"assignments" validate:"required,min=1,max=500,dive"`
}

// BulkAssign inserts every row or none. When the store cannot run a real
// transaction, rows that landed before a failure are deleted again.
func (e *Engine) BulkAssign(ctx context.Context, actor *models.User, in BulkInput) ([]models.Assignment, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	assignees := make([]primitive.ObjectID, len(in.Assignments))
	for i, a := range in.Assignments {
		assignees[i] = a.AssigneeUserID
	}
	if err := e.checkAssignees(ctx, assignees, func(i int) string {
		return fmt.Sprintf("assignments[%d].assigneeUserId", i)
	}); err != nil {
		return nil, flow.Refuse(workflow, err)
	}

	now := e.Clock()
	rows := make([]models.Assignment, len(in.Assignments))
	ids := make([]primitive.ObjectID, len(in.Assignments))
	for i, a := range in.Assignments {
		rows[i] = a.row(actor.ID, now)
		ids[i] = rows[i].ID
	}

	err := e.Atomic(ctx, func(ctx context.Context) error {
		return e.Assignments.InsertMany(ctx, rows)
	})
	if err != nil {
		e.compensate(ctx, ids)
		return nil, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionBulkCreateAssignments, audit.TargetAssignment, primitive.NilObjectID, map[string]string{
		"count": strconv.Itoa(len(rows)),
	})
	metrics.Create("assignment", len(rows))
	return rows, nil
}

// compensate removes whatever part of a failed batch reached the store.
// Under a real transaction nothing did and the delete matches no rows.
func (e *Engine) compensate(ctx context.Context, ids []primitive.ObjectID) {
	n, err := e.Assignments.DeleteByIDs(context.WithoutCancel(ctx), ids)
	if err != nil && e.Log != nil {
		e.Log.Error("bulk assignment compensation failed", zap.Error(err), zap.Int("rows", len(ids)))
		return
	}
	if n > 0 && e.Log != nil {
		e.Log.Warn("rolled back partial bulk assignment", zap.Int64("deleted", n))
	}
}

// ReassignInput names the new assignee and why.
type ReassignInput struct {
	NewAssigneeUserID primitive.ObjectID `json:"newAssigneeUserId" validate:"required"`
	Reason            string             `json:"reason" validate:"notblank,max=1000"`
}

// Reassign moves an assignment to a new user, appending the trail row and
// updating the assignment in one atomic unit.
func (e *Engine) Reassign(ctx context.Context, actor *models.User, assignmentID primitive.ObjectID, in ReassignInput) (models.Assignment, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Assignment{}, flow.Refuse(workflow, err)
	}
	in.Reason = strings.TrimSpace(in.Reason)
	if err := inputval.Struct(in); err != nil {
		return models.Assignment{}, flow.Refuse(workflow, err)
	}
	if err := e.checkAssignees(ctx, []primitive.ObjectID{in.NewAssigneeUserID}, func(int) string { return "newAssigneeUserId" }); err != nil {
		return models.Assignment{}, flow.Refuse(workflow, err)
	}

	var (
		from    primitive.ObjectID
		updated models.Assignment
	)
	err := e.Atomic(ctx, func(ctx context.Context) error {
		cur, err := e.Assignments.GetByID(ctx, assignmentID)
		if err != nil {
			return flow.Lookup(err, "assignment")
		}
		from = cur.AssigneeUserID
		now := e.Clock()

		if _, err := e.History.Append(ctx, models.AssignmentHistory{
			ID:           primitive.NewObjectID(),
			AssignmentID: assignmentID,
			FromUserID:   flow.OptionalID(cur.AssigneeUserID),
			ToUserID:     in.NewAssigneeUserID,
			ChangedBy:    actor.ID,
			Reason:       in.Reason,
			ChangedAt:    now,
		}); err != nil {
			return flow.Internal(err)
		}
		if err := e.Assignments.Reassign(ctx, assignmentID, in.NewAssigneeUserID, actor.ID, now); err != nil {
			return flow.Lookup(err, "assignment")
		}
		by := actor.ID
		cur.AssigneeUserID = in.NewAssigneeUserID
		cur.AssignedBy = &by
		cur.UpdatedAt = now
		updated = cur
		return nil
	})
	if err != nil {
		return models.Assignment{}, flow.Refuse(workflow, err)
	}

	e.Record(ctx, actor, audit.ActionReassignAssignment, audit.TargetAssignment, assignmentID, map[string]string{
		"from":   from.Hex(),
		"to":     in.NewAssigneeUserID.Hex(),
		"reason": in.Reason,
	})
	metrics.Transition(workflow, "reassigned")
	return updated, nil
}

// ListHistory lists reassignment rows most recent first. Scoped to one
// assignment it pages with skip/limit; unscoped it returns the latest
// GlobalHistoryLimit rows.
func (e *Engine) ListHistory(ctx context.Context, actor *models.User, assignmentID *primitive.ObjectID, skip, limit int64) ([]models.AssignmentHistory, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	if assignmentID == nil {
		skip, limit = 0, GlobalHistoryLimit
	} else if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := e.History.List(ctx, assignmentID, skip, limit)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return rows, nil
}

// List returns assignments newest first.
func (e *Engine) List(ctx context.Context, actor *models.User, f assignmentstore.ListFilter, skip, limit int64) ([]models.Assignment, int64, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return nil, 0, flow.Refuse(workflow, err)
	}
	rows, total, err := e.Assignments.List(ctx, f, skip, limit)
	if err != nil {
		return nil, 0, flow.Internal(err)
	}
	return rows, total, nil
}
