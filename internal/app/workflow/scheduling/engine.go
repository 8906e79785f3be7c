// Package scheduling owns recruitment seasons and the drives held within
// them.
//
// A drive's conflict flag is decided once, when it is created, by asking
// whether any non-cancelled drive at the same venue has an overlapping
// window. Later edits never revisit it.
package scheduling

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	cyclestore "github.com/dalemusser/placementhub/internal/app/store/cycles"
	drivestore "github.com/dalemusser/placementhub/internal/app/store/drives"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/inputval"
	"github.com/dalemusser/placementhub/internal/app/system/metrics"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const workflow = "drive"

// MaxDrives caps ListDrives.
const MaxDrives = 100

// NotificationDriveConfirmed is the notification type sent to followers.
const NotificationDriveConfirmed = "drive_confirmed"

var readers = authz.Rule{Roles: []models.Role{models.RoleAdmin, models.RoleCoordinator, models.RoleSupport, models.RoleStudent}}

type Seasons interface {
	Create(ctx context.Context, rs models.RecruitmentSeason) (models.RecruitmentSeason, error)
	List(ctx context.Context) ([]models.RecruitmentSeason, error)
}

type Cycles interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.CompanySeasonCycle, error)
	IDs(ctx context.Context, f cyclestore.ListFilter) ([]primitive.ObjectID, error)
}

type Drives interface {
	Create(ctx context.Context, d models.Drive) (models.Drive, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Drive, error)
	Update(ctx context.Context, d models.Drive) error
	HasOverlap(ctx context.Context, venue string, start, end time.Time) (bool, error)
	List(ctx context.Context, f drivestore.ListFilter, limit int64) ([]models.Drive, error)
}

type Followers interface {
	FollowerIDs(ctx context.Context, companyID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type Notifications interface {
	InsertMany(ctx context.Context, rows []models.Notification) error
}

// Engine runs season and drive operations.
type Engine struct {
	flow.Env
	Seasons       Seasons
	Cycles        Cycles
	Drives        Drives
	Followers     Followers
	Notifications Notifications
}

// SeasonInput describes a new recruitment season.
type SeasonInput struct {
	Name         string            `json:"name" validate:"notblank,max=255"`
	SeasonType   models.SeasonType `json:"seasonType" validate:"required,oneof=intern placement"`
	AcademicYear string            `json:"academicYear" validate:"notblank,max=20"`
	StartDate    *time.Time        `json:"startDate"`
	EndDate      *time.Time        `json:"endDate"`
	IsActive     bool              `json:"isActive"`
}

func (e *Engine) CreateSeason(ctx context.Context, actor *models.User, in SeasonInput) (models.RecruitmentSeason, error) {
	if err := authz.Authorize(actor, authz.AdminOnly); err != nil {
		return models.RecruitmentSeason{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.RecruitmentSeason{}, flow.Refuse(workflow, err)
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return models.RecruitmentSeason{}, flow.Refuse(workflow, apperr.Field("endDate", "must not precede startDate"))
	}

	now := e.Clock()
	by := actor.ID
	rs, err := e.Seasons.Create(ctx, models.RecruitmentSeason{
		ID:           primitive.NewObjectID(),
		Name:         strings.TrimSpace(in.Name),
		SeasonType:   in.SeasonType,
		AcademicYear: strings.TrimSpace(in.AcademicYear),
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		IsActive:     in.IsActive,
		CreatedBy:    &by,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return models.RecruitmentSeason{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionCreateSeason, audit.TargetSeason, rs.ID, map[string]string{
		"name":       rs.Name,
		"seasonType": string(rs.SeasonType),
	})
	metrics.Create("season", 1)
	return rs, nil
}

func (e *Engine) ListSeasons(ctx context.Context, actor *models.User) ([]models.RecruitmentSeason, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	rows, err := e.Seasons.List(ctx)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return rows, nil
}

// DriveInput describes a new drive.
type DriveInput struct {
	CompanyID primitive.ObjectID `json:"companyId" validate:"required"`
	CycleID   primitive.ObjectID `json:"companySeasonCycleId" validate:"required"`
	Title     string             `json:"title" validate:"notblank,max=255"`
	Stage     models.DriveStage  `json:"stage" validate:"required,oneof=oa interview hr final other"`
	Status    models.DriveStatus `json:"status" validate:"omitempty,oneof=tentative confirmed completed cancelled"`
	Venue     string             `json:"venue" validate:"max=255"`
	StartAt   *time.Time         `json:"startAt"`
	EndAt     *time.Time         `json:"endAt"`
	Notes     string             `json:"notes" validate:"max=10000"`
}

func window(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperr.Field("endAt", "must not precede startAt")
	}
	return nil
}

// CreateDrive stores a drive for a cycle of the given company and flags it
// when its window collides with another drive at the same venue.
func (e *Engine) CreateDrive(ctx context.Context, actor *models.User, in DriveInput) (models.Drive, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Drive{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.Drive{}, flow.Refuse(workflow, err)
	}
	if err := window(in.StartAt, in.EndAt); err != nil {
		return models.Drive{}, flow.Refuse(workflow, err)
	}

	cycle, err := e.Cycles.GetByID(ctx, in.CycleID)
	if err != nil {
		return models.Drive{}, flow.Refuse(workflow, flow.Lookup(err, "company season cycle"))
	}
	if cycle.CompanyID != in.CompanyID {
		return models.Drive{}, flow.Refuse(workflow, apperr.Field("companySeasonCycleId", "cycle does not belong to this company"))
	}

	venue := strings.TrimSpace(in.Venue)
	flagged := false
	if venue != "" && in.StartAt != nil && in.EndAt != nil {
		if flagged, err = e.Drives.HasOverlap(ctx, venue, *in.StartAt, *in.EndAt); err != nil {
			return models.Drive{}, flow.Internal(err)
		}
	}

	status := in.Status
	if status == "" {
		status = models.DriveTentative
	}
	now := e.Clock()
	by := actor.ID
	d, err := e.Drives.Create(ctx, models.Drive{
		ID:                primitive.NewObjectID(),
		CompanyID:         in.CompanyID,
		CycleID:           in.CycleID,
		Title:             strings.TrimSpace(in.Title),
		Stage:             in.Stage,
		Status:            status,
		Venue:             venue,
		StartAt:           in.StartAt,
		EndAt:             in.EndAt,
		IsConflictFlagged: flagged,
		Notes:             in.Notes,
		CreatedBy:         &by,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		return models.Drive{}, flow.Internal(err)
	}

	e.Record(ctx, actor, audit.ActionCreateDrive, audit.TargetDrive, d.ID, map[string]string{
		"companyId":  d.CompanyID.Hex(),
		"stage":      string(d.Stage),
		"conflicted": strconv.FormatBool(flagged),
	})
	metrics.Create("drive", 1)
	return d, nil
}

// DrivePatch changes only the fields it carries. ClearSchedule removes
// both window endpoints.
type DrivePatch struct {
	Title         *string            `json:"title" validate:"omitempty,notblank,max=255"`
	Stage         *models.DriveStage `json:"stage" validate:"omitempty,oneof=oa interview hr final other"`
	Venue         *string            `json:"venue" validate:"omitempty,max=255"`
	StartAt       *time.Time         `json:"startAt"`
	EndAt         *time.Time         `json:"endAt"`
	ClearSchedule bool               `json:"clearSchedule"`
	Notes         *string            `json:"notes" validate:"omitempty,max=10000"`
}

// UpdateDrive edits a drive. The conflict flag keeps its creation value.
func (e *Engine) UpdateDrive(ctx context.Context, actor *models.User, id primitive.ObjectID, in DrivePatch) (models.Drive, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Drive{}, flow.Refuse(workflow, err)
	}
	if err := inputval.Struct(in); err != nil {
		return models.Drive{}, flow.Refuse(workflow, err)
	}
	d, err := e.Drives.GetByID(ctx, id)
	if err != nil {
		return models.Drive{}, flow.Refuse(workflow, flow.Lookup(err, "drive"))
	}

	if in.Title != nil {
		d.Title = strings.TrimSpace(*in.Title)
	}
	if in.Stage != nil {
		d.Stage = *in.Stage
	}
	if in.Venue != nil {
		d.Venue = strings.TrimSpace(*in.Venue)
	}
	if in.ClearSchedule {
		d.StartAt, d.EndAt = nil, nil
	}
	if in.StartAt != nil {
		d.StartAt = in.StartAt
	}
	if in.EndAt != nil {
		d.EndAt = in.EndAt
	}
	if in.Notes != nil {
		d.Notes = *in.Notes
	}
	if err := window(d.StartAt, d.EndAt); err != nil {
		return models.Drive{}, flow.Refuse(workflow, err)
	}
	d.UpdatedAt = e.Clock()

	if err := e.Drives.Update(ctx, d); err != nil {
		return models.Drive{}, flow.Refuse(workflow, flow.Lookup(err, "drive"))
	}
	e.Record(ctx, actor, audit.ActionUpdateDrive, audit.TargetDrive, id, map[string]string{"title": d.Title})
	return d, nil
}

// ConfirmDrive marks a drive confirmed and records one notification for
// every student following its company. Both writes commit together.
func (e *Engine) ConfirmDrive(ctx context.Context, actor *models.User, id primitive.ObjectID) (models.Drive, int, error) {
	if err := authz.Authorize(actor, authz.Staff); err != nil {
		return models.Drive{}, 0, flow.Refuse(workflow, err)
	}

	var (
		d        models.Drive
		notified int
	)
	err := e.Atomic(ctx, func(ctx context.Context) error {
		var err error
		if d, err = e.Drives.GetByID(ctx, id); err != nil {
			return flow.Lookup(err, "drive")
		}
		switch d.Status {
		case models.DriveCancelled, models.DriveCompleted:
			return apperr.Conflict("a " + string(d.Status) + " drive cannot be confirmed")
		}
		now := e.Clock()
		d.Status = models.DriveConfirmed
		d.UpdatedAt = now
		if err := e.Drives.Update(ctx, d); err != nil {
			return flow.Lookup(err, "drive")
		}

		followers, err := e.Followers.FollowerIDs(ctx, d.CompanyID)
		if err != nil {
			return flow.Internal(err)
		}
		notified = len(followers)
		if notified == 0 {
			return nil
		}
		rows := make([]models.Notification, 0, notified)
		for _, uid := range followers {
			rows = append(rows, models.Notification{
				ID:     primitive.NewObjectID(),
				UserID: uid,
				Type:   NotificationDriveConfirmed,
				Title:  "Drive confirmed: " + d.Title,
				Payload: map[string]string{
					"driveId":   d.ID.Hex(),
					"companyId": d.CompanyID.Hex(),
				},
				CreatedAt: now,
			})
		}
		if err := e.Notifications.InsertMany(ctx, rows); err != nil {
			return flow.Internal(err)
		}
		return nil
	})
	if err != nil {
		return models.Drive{}, 0, flow.Refuse(workflow, err)
	}

	e.Record(ctx, actor, audit.ActionConfirmDrive, audit.TargetDrive, id, map[string]string{
		"notified": strconv.Itoa(notified),
	})
	metrics.Transition(workflow, string(models.DriveConfirmed))
	return d, notified, nil
}

// DriveQuery narrows ListDrives. SeasonID is resolved to that season's
// cycles before the drive lookup.
type DriveQuery struct {
	From     *time.Time
	To       *time.Time
	Status   models.DriveStatus
	SeasonID *primitive.ObjectID
}

func (e *Engine) ListDrives(ctx context.Context, actor *models.User, q DriveQuery) ([]models.Drive, error) {
	if err := authz.Authorize(actor, readers); err != nil {
		return nil, flow.Refuse(workflow, err)
	}
	f := drivestore.ListFilter{From: q.From, To: q.To, Status: q.Status}
	if q.SeasonID != nil {
		ids, err := e.Cycles.IDs(ctx, cyclestore.ListFilter{SeasonID: q.SeasonID})
		if err != nil {
			return nil, flow.Internal(err)
		}
		if len(ids) == 0 {
			return []models.Drive{}, nil
		}
		f.CycleIDs = ids
	}
	rows, err := e.Drives.List(ctx, f, MaxDrives)
	if err != nil {
		return nil, flow.Internal(err)
	}
	return rows, nil
}
