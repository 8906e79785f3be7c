package validators_test

import (
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/validators"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesCollections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames failed: %v", err)
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range []string{
		"users", "companies", "company_season_cycles", "company_season_status_history",
		"company_assignments", "company_assignment_history", "email_templates",
		"email_template_versions", "mail_requests", "drives", "audit_logs", "blogs",
	} {
		if !have[want] {
			t.Errorf("expected collection %q to exist", want)
		}
	}
}

func TestEnsureAll_RejectsUnknownCycleStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	now := time.Now().UTC()
	_, err := db.Collection("company_season_cycles").InsertOne(ctx, bson.M{
		"_id":        primitive.NewObjectID(),
		"company_id": primitive.NewObjectID(),
		"season_id":  primitive.NewObjectID(),
		"status":     "ghosted",
		"created_at": now,
	})
	if err == nil {
		t.Fatal("expected validator to reject unknown status")
	}

	_, err = db.Collection("company_season_cycles").InsertOne(ctx, bson.M{
		"_id":        primitive.NewObjectID(),
		"company_id": primitive.NewObjectID(),
		"season_id":  primitive.NewObjectID(),
		"status":     "contacted",
		"created_at": now,
	})
	if err != nil {
		t.Fatalf("valid cycle rejected: %v", err)
	}
}

func TestEnsureAll_RejectsUnknownRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	_, err := db.Collection("users").InsertOne(ctx, bson.M{
		"email":     "x@example.com",
		"name":      "X",
		"role":      "superuser",
		"is_active": true,
	})
	if err == nil {
		t.Fatal("expected validator to reject unknown role")
	}
}

func TestEnsureAll_RejectsUnknownModerationStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := validators.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	doc := func(status string) bson.M {
		return bson.M{
			"author_id":         primitive.NewObjectID(),
			"company_id":        primitive.NewObjectID(),
			"title":             "My OA round",
			"moderation_status": status,
		}
	}
	if _, err := db.Collection("blogs").InsertOne(ctx, doc("published")); err == nil {
		t.Fatal("expected validator to reject unknown moderation status")
	}
	if _, err := db.Collection("blogs").InsertOne(ctx, doc("pending")); err != nil {
		t.Fatalf("valid blog rejected: %v", err)
	}
}
