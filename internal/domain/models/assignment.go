// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ItemType names what an assignment points at.
type ItemType string

const (
	ItemCompany ItemType = "company"
	ItemContact ItemType = "contact"
)

var itemTypes = []ItemType{ItemCompany, ItemContact}

// ParseItemType validates s as an ItemType.
func ParseItemType(s string) (ItemType, error) { return parseEnum("item type", s, itemTypes) }

func (t *ItemType) UnmarshalText(b []byte) error {
	v, err := ParseItemType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// AssignmentRole weights an assignment.
type AssignmentRole string

const (
	AssignPrimary   AssignmentRole = "primary"
	AssignSecondary AssignmentRole = "secondary"
)

var assignmentRoles = []AssignmentRole{AssignPrimary, AssignSecondary}

// ParseAssignmentRole validates s as an AssignmentRole.
func ParseAssignmentRole(s string) (AssignmentRole, error) {
	return parseEnum("assignment role", s, assignmentRoles)
}

func (r *AssignmentRole) UnmarshalText(b []byte) error {
	v, err := ParseAssignmentRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Assignment makes a user responsible for a company or contact.
// Several assignments may exist for the same item.
type Assignment struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ItemType       ItemType            `bson:"item_type" json:"itemType"`
	ItemID         primitive.ObjectID  `bson:"item_id" json:"itemId"`
	AssigneeUserID primitive.ObjectID  `bson:"assignee_user_id" json:"assigneeUserId"`
	AssignedBy     *primitive.ObjectID `bson:"assigned_by,omitempty" json:"assignedBy,omitempty"`
	Role           AssignmentRole      `bson:"assignment_role" json:"assignmentRole"`
	Notes          string              `bson:"notes,omitempty" json:"notes,omitempty"`
	IsActive       bool                `bson:"is_active" json:"isActive"`

	AssignedAt time.Time `bson:"assigned_at" json:"assignedAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// AssignmentHistory is one append-only record of a reassignment.
type AssignmentHistory struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	AssignmentID primitive.ObjectID  `bson:"assignment_id" json:"assignmentId"`
	FromUserID   *primitive.ObjectID `bson:"from_user_id,omitempty" json:"fromUserId,omitempty"`
	ToUserID     primitive.ObjectID  `bson:"to_user_id" json:"toUserId"`
	ChangedBy    primitive.ObjectID  `bson:"changed_by" json:"changedBy"`
	Reason       string              `bson:"reason" json:"reason"`
	ChangedAt    time.Time           `bson:"changed_at" json:"changedAt"`
}
