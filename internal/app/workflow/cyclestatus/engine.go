// Package cyclestatus governs a company's per-season outreach status.
//
// Every status change appends one history row and moves the cycle in the
// same transaction, so the newest history row always names the cycle's
// current status. Any status may move to any other status.
package cyclestatus

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	cyclestore "github.com/dalemusser/placementhub/internal/app/store/cycles"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const workflow = "cycle_status"

// DefaultPageSize is the history page fetched per round trip.
const DefaultPageSize = 20

// Cycles is the cycle storage the engine needs.
type Cycles interface {
	Create(ctx context.Context, c models.CompanySeasonCycle) (models.CompanySeasonCycle, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.CompanySeasonCycle, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.CycleStatus, at time.Time) error
	List(ctx context.Context, f cyclestore.ListFilter, skip, limit int64) ([]models.CompanySeasonCycle, int64, error)
}

// History is the append-only status history.
type History interface {
	Append(ctx context.Context, h models.StatusHistory) (models.StatusHistory, error)
	Page(ctx context.Context, cycleID primitive.ObjectID, skip, limit int64) ([]models.StatusHistory, error)
}

// Companies and Seasons confirm that referenced records exist.
type Companies interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Company, error)
}

type Seasons interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.RecruitmentSeason, error)
}

// Engine runs cycle operations.
type Engine struct {
	flow.Env
	Cycles    Cycles
	History   History
	Companies Companies
	Seasons   Seasons
}

// CreateInput describes a new cycle.
type CreateInput struct {
	CompanyID      primitive.ObjectID  `json:"companyId" validate:"required"`
	SeasonID       primitive.ObjectID  `json:"seasonId" validate:"required"`
	Status         models.CycleStatus  `json:"status"`
	OwnerUserID    *primitive.ObjectID `json:"ownerUserId"`
	NextFollowUpAt *time.Time          `json:"nextFollowUpAt"`
	Notes          string              `json:"notes" validate:"max=5000"`
}

// CreateCycle opens a cycle for (company, season). A second cycle for the
// same pair is refused by the store's unique index and reported as CONFLICT.
func (e *Engine) CreateCycle(ctx context.Context, actor *models.User, in CreateInput) (models.CompanySeasonCycle, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.CompanySeasonCycle{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.CompanySeasonCycle{}, flow.Refuse(workflow, err)
	}
	if in.Status == "" {
		in.Status = models.CycleNotContacted
	}
	if _, err := e.Companies.GetByID(ctx, in.CompanyID); err != nil {
		return models.CompanySeasonCycle{}, flow.Refuse(workflow, flow.Lookup(err, "company"))
	}
	if _, err := e.Seasons.GetByID(ctx, in.SeasonID); err != nil {
		return models.CompanySeasonCycle{}, flow.Refuse(workflow, flow.Lookup(err, "season"))
	}

	now := e.Clock()
	created, err := e.Cycles.Create(ctx, models.CompanySeasonCycle{
		ID:             primitive.NewObjectID(),
		CompanyID:      in.CompanyID,
		SeasonID:       in.SeasonID,
		Status:         in.Status,
		OwnerUserID:    in.OwnerUserID,
		NextFollowUpAt: in.NextFollowUpAt,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if errors.Is(err, cyclestore.ErrDuplicateCycle) {
		return models.CompanySeasonCycle{}, flow.Refuse(workflow, apperr.Conflict("company cycle for this season already exists"))
	}
	if err != nil {
		return models.CompanySeasonCycle{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionCreateCycle, audit.TargetCycle, created.ID, map[string]string{
		"companyId": in.CompanyID.Hex(),
		"seasonId":  in.SeasonID.Hex(),
	})
	metrics.Create("company_season_cycle", 1)
	return created, nil
}

// TransitionInput is a requested status change.
type TransitionInput struct {
	Status models.CycleStatus `json:"status" validate:"required"`
	Note   string             `json:"note" validate:"max=2000"`
}

// TransitionStatus moves the cycle to in.Status and appends the matching
// history row in one atomic unit.
func (e *Engine) TransitionStatus(ctx context.Context, actor *models.User, cycleID primitive.ObjectID, in TransitionInput) (models.CompanySeasonCycle, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.CompanySeasonCycle{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.CompanySeasonCycle{}, flow.Refuse(workflow, err)
	}

	var (
		from    models.CycleStatus
		updated models.CompanySeasonCycle
	)
	err := e.Atomic(ctx, func(ctx context.Context) error {
		cur, err := e.Cycles.GetByID(ctx, cycleID)
		if err != nil {
			return flow.Lookup(err, "company season cycle")
		}
		from = cur.Status
		now := e.Clock()

		if _, err := e.History.Append(ctx, models.StatusHistory{
			ID:         primitive.NewObjectID(),
			CycleID:    cycleID,
			FromStatus: cur.Status,
			ToStatus:   in.Status,
			ChangedBy:  actor.ID,
			Note:       in.Note,
			ChangedAt:  now,
		}); err != nil {
			return flow.Internal(err)
		}
		if err := e.Cycles.SetStatus(ctx, cycleID, in.Status, now); err != nil {
			return flow.Lookup(err, "company season cycle")
		}
		cur.Status = in.Status
		cur.UpdatedAt = now
		updated = cur
		return nil
	})
	if err != nil {
		return models.CompanySeasonCycle{}, flow.Refuse(workflow, err)
	}

	meta := map[string]string{"from": string(from), "to": string(in.Status)}
	if in.Note != "" {
		meta["note"] = in.Note
	}
	e.Record(ctx, actor, audit.ActionUpdateCycleStatus, audit.TargetCycle, cycleID, meta)
	metrics.Transition(workflow, string(in.Status))
	return updated, nil
}

// StatusHistory yields the cycle's history most recent first, fetching
// pageSize rows per round trip. The sequence is finite and can be ranged
// over again to restart from the newest row. A failed fetch is yielded
// once and ends the sequence.
func (e *Engine) StatusHistory(ctx context.Context, actor *models.User, cycleID primitive.ObjectID, pageSize int64) (iter.Seq2[models.StatusHistory, error], error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	if _, err := e.Cycles.GetByID(ctx, cycleID); err != nil {
		return nil, flow.Refuse(workflow, flow.Lookup(err, "company season cycle"))
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return func(yield func(models.StatusHistory, error) bool) {
		for skip := int64(0); ; skip += pageSize {
			rows, err := e.History.Page(ctx, cycleID, skip, pageSize)
			if err != nil {
				yield(models.StatusHistory{}, flow.Internal(err))
				return
			}
			for _, h := range rows {
				if !yield(h, nil) {
					return
				}
			}
			if int64(len(rows)) < pageSize {
				return
			}
		}
	}, nil
}

// HistoryPage returns one page of history for callers that paginate
// explicitly.
func (e *Engine) HistoryPage(ctx context.Context, actor *models.User, cycleID primitive.ObjectID, skip, limit int64) ([]models.StatusHistory, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	if _, err := e.Cycles.GetByID(ctx, cycleID); err != nil {
		return nil, flow.Refuse(workflow, flow.Lookup(err, "company season cycle"))
	}
	rows, err := e.History.Page(ctx, cycleID, skip, limit)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return rows, nil
}

// ListCycles returns cycles most recently updated first.
func (e *Engine) ListCycles(ctx context.Context, actor *models.User, f cyclestore.ListFilter, skip, limit int64) ([]models.CompanySeasonCycle, int64, error) {
	if err := authz.Authorize(actor, authz.Rule{Roles: []models.Role{models.RoleAdmin, models.RoleCoordinator, models.RoleSupport}}); err != nil {
		return nil, 0, flow.Refuse(workflow, err)
	}
	rows, total, err := e.Cycles.List(ctx, f, skip, limit)
	if err != nil {
		return nil, 0, flow.Internal(err)
	}
	return rows, total, nil
}
