// internal/domain/models/drive.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DriveStage is the recruiting round a drive covers.
type DriveStage string

const (
	StageOA        DriveStage = "oa"
	StageInterview DriveStage = "interview"
	StageHR        DriveStage = "hr"
	StageFinal     DriveStage = "final"
	StageOther     DriveStage = "other"
)

var driveStages = []DriveStage{StageOA, StageInterview, StageHR, StageFinal, StageOther}

// ParseDriveStage validates s as a DriveStage.
func ParseDriveStage(s string) (DriveStage, error) { return parseEnum("drive stage", s, driveStages) }

func (d *DriveStage) UnmarshalText(b []byte) error {
	v, err := ParseDriveStage(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// DriveStatus is the scheduling state of a drive.
type DriveStatus string

const (
	DriveTentative DriveStatus = "tentative"
	DriveConfirmed DriveStatus = "confirmed"
	DriveCompleted DriveStatus = "completed"
	DriveCancelled DriveStatus = "cancelled"
)

var driveStatuses = []DriveStatus{DriveTentative, DriveConfirmed, DriveCompleted, DriveCancelled}

// ParseDriveStatus validates s as a DriveStatus.
func ParseDriveStatus(s string) (DriveStatus, error) {
	return parseEnum("drive status", s, driveStatuses)
}

func (d *DriveStatus) UnmarshalText(b []byte) error {
	v, err := ParseDriveStatus(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Drive is a scheduled recruiting event for a company's season cycle.
//
// IsConflictFlagged is computed once when the drive is created.
type Drive struct {
	ID                primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID         primitive.ObjectID  `bson:"company_id" json:"companyId"`
	CycleID           primitive.ObjectID  `bson:"cycle_id" json:"companySeasonCycleId"`
	Title             string              `bson:"title" json:"title"`
	Stage             DriveStage          `bson:"stage" json:"stage"`
	Status            DriveStatus         `bson:"status" json:"status"`
	Venue             string              `bson:"venue,omitempty" json:"venue,omitempty"`
	StartAt           *time.Time          `bson:"start_at,omitempty" json:"startAt,omitempty"`
	EndAt             *time.Time          `bson:"end_at,omitempty" json:"endAt,omitempty"`
	IsConflictFlagged bool                `bson:"is_conflict_flagged" json:"isConflictFlagged"`
	Notes             string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy         *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
