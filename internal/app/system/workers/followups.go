// internal/app/system/workers/followups.go
package workers

import (
	"context"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// NotificationFollowUpDue is the notification type sent to cycle owners.
const NotificationFollowUpDue = "follow_up_due"

// followUpBatch caps the cycles handled per run.
const followUpBatch = 200

// DueCycles finds and stamps cycles whose follow-up date has passed.
type DueCycles interface {
	DueFollowUps(ctx context.Context, now time.Time, limit int64) ([]models.CompanySeasonCycle, error)
	MarkFollowUpNotified(ctx context.Context, ids []primitive.ObjectID, at time.Time) (int64, error)
}

// NotificationWriter stores notification rows.
type NotificationWriter interface {
	InsertMany(ctx context.Context, rows []models.Notification) error
}

// FollowUpReminders notifies each cycle owner once per follow-up date.
func FollowUpReminders(cycles DueCycles, notes NotificationWriter, now func() time.Time, logger *zap.Logger, interval time.Duration) Job {
	return Job{
		Name:     "follow-up-reminders",
		Interval: interval,
		Run: func(ctx context.Context) error {
			n, err := remindFollowUps(ctx, cycles, notes, now().UTC())
			if err != nil {
				return err
			}
			if n > 0 {
				logger.Info("follow-up reminders sent", zap.Int("count", n))
			}
			return nil
		},
	}
}

func remindFollowUps(ctx context.Context, cycles DueCycles, notes NotificationWriter, now time.Time) (int, error) {
	due, err := cycles.DueFollowUps(ctx, now, followUpBatch)
	if err != nil || len(due) == 0 {
		return 0, err
	}

	rows := make([]models.Notification, 0, len(due))
	ids := make([]primitive.ObjectID, 0, len(due))
	for _, c := range due {
		if c.OwnerUserID == nil || c.NextFollowUpAt == nil {
			continue
		}
		rows = append(rows, models.Notification{
			ID:     primitive.NewObjectID(),
			UserID: *c.OwnerUserID,
			Type:   NotificationFollowUpDue,
			Title:  "Follow-up due",
			Body:   "A company you own is due for a follow-up.",
			Payload: map[string]string{
				"cycleId":   c.ID.Hex(),
				"companyId": c.CompanyID.Hex(),
				"seasonId":  c.SeasonID.Hex(),
				"dueAt":     c.NextFollowUpAt.UTC().Format(time.RFC3339),
			},
			CreatedAt: now,
		})
		ids = append(ids, c.ID)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	if err := notes.InsertMany(ctx, rows); err != nil {
		return 0, err
	}
	// A failure here repeats the reminder on the next run.
	if _, err := cycles.MarkFollowUpNotified(ctx, ids, now); err != nil {
		return len(rows), err
	}
	return len(rows), nil
}
