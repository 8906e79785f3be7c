// internal/domain/models/company.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is a recruiting organisation. Slug is unique.
//
// A company exclusively owns its contacts, season cycles, assignments,
// drives, mail requests, interactions and follows.
type Company struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name      string              `bson:"name" json:"name"`
	NameCI    string              `bson:"name_ci" json:"-"`
	Slug      string              `bson:"slug" json:"slug"`
	Domain    string              `bson:"domain,omitempty" json:"domain,omitempty"`
	Industry  string              `bson:"industry,omitempty" json:"industry,omitempty"`
	Website   string              `bson:"website,omitempty" json:"website,omitempty"`
	Priority  *int                `bson:"priority,omitempty" json:"priority,omitempty"`
	Notes     string              `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy *primitive.ObjectID `bson:"created_by,omitempty" json:"createdBy,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Contact is a person at a company.
//
// LastContactedAt is set automatically when an interaction is logged.
type Contact struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID              primitive.ObjectID `bson:"company_id" json:"companyId"`
	Name                   string             `bson:"name" json:"name"`
	Designation            string             `bson:"designation,omitempty" json:"designation,omitempty"`
	Emails                 []string           `bson:"emails,omitempty" json:"emails,omitempty"`
	Phones                 []string           `bson:"phones,omitempty" json:"phones,omitempty"`
	PreferredContactMethod string             `bson:"preferred_contact_method,omitempty" json:"preferredContactMethod,omitempty"`
	Notes                  string             `bson:"notes,omitempty" json:"notes,omitempty"`
	LastContactedAt        *time.Time         `bson:"last_contacted_at,omitempty" json:"lastContactedAt,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
