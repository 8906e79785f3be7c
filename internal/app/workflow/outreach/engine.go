// Package outreach manages the companies the office recruits from, their
// contacts, and the interactions logged against them.
//
// A company owns its contacts, season cycles, assignments, drives, mail
// requests, interactions, follows and blogs. Deleting a company removes each of
// those explicitly, in one transaction, and the audit entry carries how
// many rows of each kind went.
package outreach

import (
	"context"
	"time"

	assignmentstore "github.com/dalemusser/placementhub/internal/app/store/assignments"
	companystore "github.com/dalemusser/placementhub/internal/app/store/companies"
	cyclestore "github.com/dalemusser/placementhub/internal/app/store/cycles"
	drivestore "github.com/dalemusser/placementhub/internal/app/store/drives"
	"github.com/dalemusser/placementhub/internal/app/workflow/flow"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const workflow = "outreach"

type Companies interface {
	Create(ctx context.Context, c models.Company) (models.Company, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Company, error)
	Update(ctx context.Context, c models.Company) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	List(ctx context.Context, f companystore.ListFilter, skip, limit int64) ([]models.Company, int64, error)
}

type Contacts interface {
	Create(ctx context.Context, c models.Contact) (models.Contact, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Contact, error)
	Update(ctx context.Context, c models.Contact) error
	Touch(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
	List(ctx context.Context, companyID *primitive.ObjectID) ([]models.Contact, error)
	IDsByCompany(ctx context.Context, companyID primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)
}

type Interactions interface {
	Create(ctx context.Context, in models.Interaction) (models.Interaction, error)
	RecentByCompany(ctx context.Context, companyID primitive.ObjectID, limit int64) ([]models.Interaction, error)
	DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)
}

// Cycles covers season cycles and their status history.
type Cycles interface {
	IDs(ctx context.Context, f cyclestore.ListFilter) ([]primitive.ObjectID, error)
	DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)
}

type CycleHistory interface {
	DeleteByCycles(ctx context.Context, cycleIDs []primitive.ObjectID) (int64, error)
}

type Assignments interface {
	IDsByItems(ctx context.Context, itemType models.ItemType, itemIDs []primitive.ObjectID) ([]primitive.ObjectID, error)
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	List(ctx context.Context, f assignmentstore.ListFilter, skip, limit int64) ([]models.Assignment, int64, error)
}

type AssignmentHistory interface {
	DeleteByAssignments(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

type Drives interface {
	List(ctx context.Context, f drivestore.ListFilter, limit int64) ([]models.Drive, error)
	DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)
}

// CompanyOwned is any store whose rows belong to one company.
type CompanyOwned interface {
	DeleteByCompany(ctx context.Context, companyID primitive.ObjectID) (int64, error)
}

type Permissions interface {
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.UserPermission, error)
}

// Engine runs company, contact and interaction operations.
type Engine struct {
	flow.Env
	Companies         Companies
	Contacts          Contacts
	Interactions      Interactions
	Cycles            Cycles
	CycleHistory      CycleHistory
	Assignments       Assignments
	AssignmentHistory AssignmentHistory
	Drives            Drives
	MailRequests      CompanyOwned
	Follows           CompanyOwned
	Blogs             CompanyOwned
	Permissions       Permissions
}
