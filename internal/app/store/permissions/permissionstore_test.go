package permissionstore_test

import (
	"testing"

	permissionstore "github.com/dalemusser/placementhub/internal/app/store/permissions"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Upsert_ReplacesValue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := permissionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	uid := primitive.NewObjectID()
	for _, allowed := range []bool{true, false} {
		err := store.Upsert(ctx, models.UserPermission{UserID: uid, Key: models.PermExportContacts, Allowed: allowed})
		if err != nil {
			t.Fatalf("Upsert(%v) failed: %v", allowed, err)
		}
	}

	perms, err := store.ListByUser(ctx, uid)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(perms) != 1 {
		t.Fatalf("expected 1 row, got %d", len(perms))
	}
	if perms[0].Allowed {
		t.Error("expected latest value (false) to win")
	}
}
