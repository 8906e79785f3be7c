package followstore_test

import (
	"errors"
	"testing"

	followstore "github.com/dalemusser/placementhub/internal/app/store/follows"
	"github.com/dalemusser/placementhub/internal/app/system/indexes"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_FollowUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	store := followstore.New(db)

	student, company := primitive.NewObjectID(), primitive.NewObjectID()
	if _, err := store.Create(ctx, models.Follow{StudentID: student, CompanyID: company}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Follow{StudentID: student, CompanyID: company})
	if !errors.Is(err, followstore.ErrAlreadyFollowing) {
		t.Fatalf("expected ErrAlreadyFollowing, got %v", err)
	}

	ids, err := store.FollowerIDs(ctx, company)
	if err != nil || len(ids) != 1 || ids[0] != student {
		t.Fatalf("FollowerIDs = %v, %v", ids, err)
	}

	n, err := store.Delete(ctx, student, company)
	if err != nil || n != 1 {
		t.Fatalf("Delete = %d, %v; want 1", n, err)
	}
}
