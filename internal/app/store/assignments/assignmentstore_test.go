package assignmentstore_test

import (
	"testing"
	"time"

	assignmentstore "github.com/dalemusser/placementhub/internal/app/store/assignments"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_InsertManyAndCompensate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	item := primitive.NewObjectID()
	now := time.Now().UTC()
	rows := make([]models.Assignment, 3)
	ids := make([]primitive.ObjectID, 3)
	for i := range rows {
		ids[i] = primitive.NewObjectID()
		rows[i] = models.Assignment{
			ID:             ids[i],
			ItemType:       models.ItemCompany,
			ItemID:         item,
			AssigneeUserID: primitive.NewObjectID(),
			Role:           models.AssignSecondary,
			IsActive:       true,
			AssignedAt:     now,
			UpdatedAt:      now,
		}
	}
	if err := store.InsertMany(ctx, rows); err != nil {
		t.Fatalf("InsertMany failed: %v", err)
	}

	// Re-inserting collides on _id at the first row; ordered batches stop there.
	if err := store.InsertMany(ctx, rows); err == nil {
		t.Fatal("expected duplicate _id failure")
	}

	got, err := store.IDsByItems(ctx, models.ItemCompany, []primitive.ObjectID{item})
	if err != nil {
		t.Fatalf("IDsByItems failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(got))
	}

	n, err := store.DeleteByIDs(ctx, ids)
	if err != nil || n != 3 {
		t.Fatalf("DeleteByIDs = %d, %v; want 3", n, err)
	}
}

func TestStore_ReassignAndHistory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := assignmentstore.New(db)
	hist := assignmentstore.NewHistory(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	from, to, by := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	a, err := store.Create(ctx, models.Assignment{
		ItemType:       models.ItemContact,
		ItemID:         primitive.NewObjectID(),
		AssigneeUserID: from,
		Role:           models.AssignPrimary,
		IsActive:       true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	at := time.Now().UTC()
	if _, err := hist.Append(ctx, models.AssignmentHistory{
		AssignmentID: a.ID, FromUserID: &from, ToUserID: to, ChangedBy: by, Reason: "rebalance", ChangedAt: at,
	}); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Reassign(ctx, a.ID, to, by, at); err != nil {
		t.Fatalf("Reassign failed: %v", err)
	}

	got, err := store.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.AssigneeUserID != to || got.AssignedBy == nil || *got.AssignedBy != by {
		t.Errorf("unexpected assignment after reassign: %+v", got)
	}

	rows, err := hist.List(ctx, &a.ID, 0, 20)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Reason != "rebalance" {
		t.Errorf("unexpected history: %+v", rows)
	}
}
