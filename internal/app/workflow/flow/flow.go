// Package flow holds the plumbing every workflow engine shares: the
// transaction boundary, the audit sink, the clock, and translation of
// store errors into apperr kinds.
package flow

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Transactor runs fn as one atomic unit. Stores called with the ctx passed
// to fn take part in the unit.
type Transactor interface {
	Run(ctx context.Context, fn func(ctx context.Context) error) error
}

// Direct runs fn without a transaction.
type Direct struct{}

func (Direct) Run(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

// Env is embedded by every engine.
type Env struct {
	Tx    Transactor
	Audit auditlog.Sink
	Now   func() time.Time
}

// Clock returns the current time in UTC.
func (e Env) Clock() time.Time {
	if e.Now == nil {
		return time.Now().UTC()
	}
	return e.Now().UTC()
}

// Atomic runs fn through Tx, or directly when none is configured.
func (e Env) Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	if e.Tx == nil {
		return fn(ctx)
	}
	return e.Tx.Run(ctx, fn)
}

// Record sends an entry for actor to the audit sink. It never fails.
func (e Env) Record(ctx context.Context, actor *models.User, action, targetType string, target primitive.ObjectID, meta map[string]string) {
	if e.Audit == nil {
		return
	}
	entry := audit.Entry{
		Timestamp:  e.Clock(),
		Action:     action,
		TargetType: targetType,
		Meta:       meta,
	}
	if actor != nil {
		id := actor.ID
		entry.ActorID = &id
	}
	if !target.IsZero() {
		t := target
		entry.TargetID = &t
	}
	e.Audit.Record(ctx, entry)
}

// Lookup translates a load failure: a missing document becomes NOT_FOUND
// for entity, anything else INTERNAL.
func Lookup(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(entity)
	}
	return Internal(err)
}

// Internal wraps err as INTERNAL unless it already carries a kind.
func Internal(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Internal(err)
}

// Refuse counts a rejected operation for workflow and returns err unchanged.
func Refuse(workflow string, err error) error {
	if err != nil {
		metrics.Rejection(workflow, string(apperr.KindOf(err)))
	}
	return err
}

// OptionalID returns a pointer to id, or nil for the zero id.
func OptionalID(id primitive.ObjectID) *primitive.ObjectID {
	if id.IsZero() {
		return nil
	}
	return &id
}
