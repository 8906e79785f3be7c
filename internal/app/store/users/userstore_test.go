package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/indexes"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_NormalizesFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	general := models.CoordinatorGeneral
	created, err := store.Create(ctx, models.User{
		Email:           "  Admin@Example.COM ",
		Name:            "Admin User",
		Role:            models.RoleAdmin,
		CoordinatorType: &general,
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "admin@example.com" {
		t.Errorf("email = %q, want lowercased", created.Email)
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.CoordinatorType != nil {
		t.Error("non-coordinator should not keep a coordinator type")
	}

	got, err := store.GetByEmail(ctx, "ADMIN@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail returned %s, want %s", got.ID.Hex(), created.ID.Hex())
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	store := userstore.New(db)

	if _, err := store.Create(ctx, models.User{Email: "a@example.com", Name: "A", Role: models.RoleStudent}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{Email: "A@example.com", Name: "B", Role: models.RoleStudent})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_SetActive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateStudent(ctx, "Stu", "stu@example.com")

	if err := store.SetActive(ctx, u.ID, false, time.Now().UTC()); err != nil {
		t.Fatalf("SetActive failed: %v", err)
	}
	got, err := userstore.NewFetcher(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.IsActive {
		t.Error("expected user to be inactive")
	}

	err = store.SetActive(ctx, primitive.NewObjectID(), true, time.Now().UTC())
	if !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments for unknown id, got %v", err)
	}
}

func TestStore_SetRole_ClearsCoordinatorType(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	u := fx.CreateCoordinator(ctx, "Coord", "c@example.com", models.CoordinatorMailingTeam)

	if err := store.SetRole(ctx, u.ID, models.RoleAdmin, nil); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}
	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Role != models.RoleAdmin || got.CoordinatorType != nil {
		t.Errorf("got role %q type %v, want tpo_admin without type", got.Role, got.CoordinatorType)
	}
}
