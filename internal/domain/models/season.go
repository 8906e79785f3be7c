// internal/domain/models/season.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SeasonType distinguishes internship and placement seasons.
type SeasonType string

const (
	SeasonIntern    SeasonType = "intern"
	SeasonPlacement SeasonType = "placement"
)

var seasonTypes = []SeasonType{SeasonIntern, SeasonPlacement}

// ParseSeasonType validates s as a SeasonType.
func ParseSeasonType(s string) (SeasonType, error) { return parseEnum("season type", s, seasonTypes) }

func (t *SeasonType) UnmarshalText(b []byte) error {
	v, err := ParseSeasonType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// RecruitmentSeason is a named recruiting period companies attach to.
type RecruitmentSeason struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name         string              `bson:"name" json:"name"`
	SeasonType   SeasonType          `bson:"season_type" json:"seasonType"`
	AcademicYear string              `bson:"academic_year" json:"academicYear"`
	StartDate    *time.Time          `bson:"start_date,omitempty" json:"startDate,omitempty"`
	EndDate      *time.Time          `bson:"end_date,omitempty" json:"endDate,omitempty"`
	IsActive     bool                `bson:"is_active" json:"isActive"`
	CreatedBy    *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
