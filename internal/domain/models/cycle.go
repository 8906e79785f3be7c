// internal/domain/models/cycle.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CycleStatus is the outreach status of a company within one season.
// Any status may move to any other status.
type CycleStatus string

const (
	CycleNotContacted CycleStatus = "not_contacted"
	CycleContacted    CycleStatus = "contacted"
	CyclePositive     CycleStatus = "positive"
	CycleAccepted     CycleStatus = "accepted"
	CycleRejected     CycleStatus = "rejected"
)

var cycleStatuses = []CycleStatus{CycleNotContacted, CycleContacted, CyclePositive, CycleAccepted, CycleRejected}

// ParseCycleStatus validates s as a CycleStatus.
func ParseCycleStatus(s string) (CycleStatus, error) {
	return parseEnum("cycle status", s, cycleStatuses)
}

func (s *CycleStatus) UnmarshalText(b []byte) error {
	v, err := ParseCycleStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CompanySeasonCycle is a company's participation in one season.
// (company_id, season_id) is unique.
type CompanySeasonCycle struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID       primitive.ObjectID  `bson:"company_id" json:"companyId"`
	SeasonID        primitive.ObjectID  `bson:"season_id" json:"seasonId"`
	Status          CycleStatus         `bson:"status" json:"status"`
	OwnerUserID     *primitive.ObjectID `bson:"owner_user_id,omitempty" json:"ownerUserId,omitempty"`
	LastContactedAt *time.Time          `bson:"last_contacted_at,omitempty" json:"lastContactedAt,omitempty"`
	NextFollowUpAt  *time.Time          `bson:"next_follow_up_at,omitempty" json:"nextFollowUpAt,omitempty"`
	Notes           string              `bson:"notes,omitempty" json:"notes,omitempty"`

	// FollowUpNotifiedAt is when the owner was last reminded. Another
	// reminder is due once NextFollowUpAt moves past it.
	FollowUpNotifiedAt *time.Time `bson:"follow_up_notified_at,omitempty" json:"followUpNotifiedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// StatusHistory is one append-only record of a cycle status change.
type StatusHistory struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CycleID    primitive.ObjectID `bson:"cycle_id" json:"companySeasonCycleId"`
	FromStatus CycleStatus        `bson:"from_status,omitempty" json:"fromStatus,omitempty"`
	ToStatus   CycleStatus        `bson:"to_status" json:"toStatus"`
	ChangedBy  primitive.ObjectID `bson:"changed_by" json:"changedBy"`
	Note       string             `bson:"note,omitempty" json:"changeNote,omitempty"`
	ChangedAt  time.Time          `bson:"changed_at" json:"changedAt"`
}
