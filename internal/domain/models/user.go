// internal/domain/models/user.go
package models

import (
	"slices"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a user's primary role.
type Role string

const (
	RoleAdmin       Role = "tpo_admin"
	RoleCoordinator Role = "coordinator"
	RoleStudent     Role = "student"
	RoleSupport     Role = "tech_support"
)

var roles = []Role{RoleAdmin, RoleCoordinator, RoleStudent, RoleSupport}

// ParseRole validates s as a Role.
func ParseRole(s string) (Role, error) { return parseEnum("role", s, roles) }

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// CoordinatorType narrows what a coordinator may do.
type CoordinatorType string

const (
	CoordinatorGeneral               CoordinatorType = "general"
	CoordinatorStudentRepresentative CoordinatorType = "student_representative"
	CoordinatorMailingTeam           CoordinatorType = "mailing_team"
)

var coordinatorTypes = []CoordinatorType{CoordinatorGeneral, CoordinatorStudentRepresentative, CoordinatorMailingTeam}

// ParseCoordinatorType validates s as a CoordinatorType.
func ParseCoordinatorType(s string) (CoordinatorType, error) {
	return parseEnum("coordinator type", s, coordinatorTypes)
}

func (c *CoordinatorType) UnmarshalText(b []byte) error {
	v, err := ParseCoordinatorType(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// User is a portal account. Users are deactivated, never deleted.
//
// CoordinatorType is only meaningful when Role is RoleCoordinator.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email           string             `bson:"email" json:"email"` // stored lowercase
	Name            string             `bson:"name" json:"name"`
	NameCI          string             `bson:"name_ci" json:"-"` // folded for search
	Role            Role               `bson:"role" json:"role"`
	CoordinatorType *CoordinatorType   `bson:"coordinator_type,omitempty" json:"coordinatorType,omitempty"`
	AuthProvider    string             `bson:"auth_provider,omitempty" json:"authProvider,omitempty"`
	AuthSubject     string             `bson:"auth_subject,omitempty" json:"-"`
	IsActive        bool               `bson:"is_active" json:"isActive"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// HasRole reports whether the user's role is one of rs.
func (u *User) HasRole(rs ...Role) bool {
	return u != nil && slices.Contains(rs, u.Role)
}

// IsCoordinatorOfType reports whether u is a coordinator whose subtype is in ts.
func (u *User) IsCoordinatorOfType(ts ...CoordinatorType) bool {
	if u == nil || u.Role != RoleCoordinator || u.CoordinatorType == nil {
		return false
	}
	return slices.Contains(ts, *u.CoordinatorType)
}
