// internal/domain/models/blog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationStatus is where a blog post stands in review.
type ModerationStatus string

const (
	BlogPending  ModerationStatus = "pending"
	BlogApproved ModerationStatus = "approved"
	BlogRejected ModerationStatus = "rejected"
)

var moderationStatuses = []ModerationStatus{BlogPending, BlogApproved, BlogRejected}

// ParseModerationStatus validates s as a ModerationStatus.
func ParseModerationStatus(s string) (ModerationStatus, error) {
	return parseEnum("moderation status", s, moderationStatuses)
}

func (m *ModerationStatus) UnmarshalText(b []byte) error {
	v, err := ParseModerationStatus(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Blog is an interview or placement experience write-up about a company.
// Only approved posts are visible to readers.
type Blog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID     primitive.ObjectID `bson:"author_id" json:"authorId"`
	CompanyID    primitive.ObjectID `bson:"company_id" json:"companyId"`
	Title        string             `bson:"title" json:"title"`
	Body         string             `bson:"body" json:"body"`
	Tags         []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	IsAIAssisted bool               `bson:"is_ai_assisted" json:"isAiAssisted"`

	ModerationStatus ModerationStatus    `bson:"moderation_status" json:"moderationStatus"`
	ModerationNote   string              `bson:"moderation_note,omitempty" json:"moderationNote,omitempty"`
	ApprovedBy       *primitive.ObjectID `bson:"approved_by,omitempty" json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time          `bson:"approved_at,omitempty" json:"approvedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
