package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("insert into %s: %v", coll, err)
	}
}

// CreateUser inserts an active user. ctype is only meaningful for coordinators.
func (f *Fixtures) CreateUser(ctx context.Context, name, email string, role models.Role, ctype *models.CoordinatorType) models.User {
	f.t.Helper()
	now := time.Now().UTC()
	u := models.User{
		ID:              primitive.NewObjectID(),
		Email:           email,
		Name:            name,
		NameCI:          text.Fold(name),
		Role:            role,
		CoordinatorType: ctype,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateAdmin creates an active placement-office admin.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleAdmin, nil)
}

// CreateCoordinator creates an active coordinator of the given subtype.
func (f *Fixtures) CreateCoordinator(ctx context.Context, name, email string, ct models.CoordinatorType) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleCoordinator, &ct)
}

// CreateStudent creates an active student.
func (f *Fixtures) CreateStudent(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleStudent, nil)
}

// CreateCompany inserts a company with a slug derived from its name.
func (f *Fixtures) CreateCompany(ctx context.Context, name string) models.Company {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.Company{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Slug:      text.Fold(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "companies", c)
	return c
}

// CreateSeason inserts an active placement season.
func (f *Fixtures) CreateSeason(ctx context.Context, name string) models.RecruitmentSeason {
	f.t.Helper()
	now := time.Now().UTC()
	s := models.RecruitmentSeason{
		ID:           primitive.NewObjectID(),
		Name:         name,
		SeasonType:   models.SeasonPlacement,
		AcademicYear: "2026-27",
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	f.insert(ctx, "recruitment_seasons", s)
	return s
}

// CreateCycle inserts a cycle linking company and season with the given status.
func (f *Fixtures) CreateCycle(ctx context.Context, companyID, seasonID primitive.ObjectID, status models.CycleStatus) models.CompanySeasonCycle {
	f.t.Helper()
	now := time.Now().UTC()
	c := models.CompanySeasonCycle{
		ID:        primitive.NewObjectID(),
		CompanyID: companyID,
		SeasonID:  seasonID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "company_season_cycles", c)
	return c
}

// CreateTemplate inserts a mail template in the given status at version 1.
func (f *Fixtures) CreateTemplate(ctx context.Context, slug string, status models.TemplateStatus) models.MailTemplate {
	f.t.Helper()
	now := time.Now().UTC()
	m := models.MailTemplate{
		ID:        primitive.NewObjectID(),
		Name:      slug,
		Slug:      slug,
		Subject:   "Subject " + slug,
		BodyHTML:  "<p>Hello {{name}}</p>",
		Variables: []string{"name"},
		Status:    status,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "email_templates", m)
	return m
}
