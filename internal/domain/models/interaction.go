// internal/domain/models/interaction.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InteractionType is the channel of a logged interaction.
type InteractionType string

const (
	InteractionCall    InteractionType = "call"
	InteractionEmail   InteractionType = "email"
	InteractionMeeting InteractionType = "meeting"
	InteractionNote    InteractionType = "note"
)

var interactionTypes = []InteractionType{InteractionCall, InteractionEmail, InteractionMeeting, InteractionNote}

// ParseInteractionType validates s as an InteractionType.
func ParseInteractionType(s string) (InteractionType, error) {
	return parseEnum("interaction type", s, interactionTypes)
}

func (t *InteractionType) UnmarshalText(b []byte) error {
	v, err := ParseInteractionType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Interaction records one touchpoint with a company contact.
type Interaction struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID      primitive.ObjectID  `bson:"company_id" json:"companyId"`
	ContactID      *primitive.ObjectID `bson:"contact_id,omitempty" json:"contactId,omitempty"`
	CycleID        *primitive.ObjectID `bson:"cycle_id,omitempty" json:"companySeasonCycleId,omitempty"`
	Type           InteractionType     `bson:"interaction_type" json:"interactionType"`
	Outcome        string              `bson:"outcome,omitempty" json:"outcome,omitempty"`
	Summary        string              `bson:"summary" json:"summary"`
	NextFollowUpAt *time.Time          `bson:"next_follow_up_at,omitempty" json:"nextFollowUpAt,omitempty"`
	CreatedBy      primitive.ObjectID  `bson:"created_by" json:"createdBy"`
	CreatedAt      time.Time           `bson:"created_at" json:"createdAt"`
}

// Notification is a recorded decision to notify a user. Delivery is external.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Type      string             `bson:"type" json:"type"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body,omitempty" json:"body,omitempty"`
	Payload   map[string]string  `bson:"payload,omitempty" json:"payload,omitempty"`
	IsRead    bool               `bson:"is_read" json:"isRead"`
	ReadAt    *time.Time         `bson:"read_at,omitempty" json:"readAt,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Follow records a student's interest in a company.
// (student_id, company_id) is unique.
type Follow struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"studentId"`
	CompanyID primitive.ObjectID `bson:"company_id" json:"companyId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}
