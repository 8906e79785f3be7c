package contactstore_test

import (
	"testing"
	"time"

	contactstore "github.com/dalemusser/placementhub/internal/app/store/contacts"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
)

func TestStore_TouchAndCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := contactstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx := testutil.NewFixtures(t, db)
	acme := fx.CreateCompany(ctx, "Acme")
	other := fx.CreateCompany(ctx, "Other")

	c1, err := store.Create(ctx, models.Contact{CompanyID: acme.ID, Name: "Ana"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Contact{CompanyID: acme.ID, Name: "Bo"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, models.Contact{CompanyID: other.ID, Name: "Cy"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.Touch(ctx, c1.ID, at); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	got, err := store.GetByID(ctx, c1.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.LastContactedAt == nil || !got.LastContactedAt.Equal(at) {
		t.Errorf("LastContactedAt = %v, want %v", got.LastContactedAt, at)
	}

	ids, err := store.IDsByCompany(ctx, acme.ID)
	if err != nil {
		t.Fatalf("IDsByCompany failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 contact ids, got %d", len(ids))
	}

	n, err := store.DeleteByCompany(ctx, acme.ID)
	if err != nil {
		t.Fatalf("DeleteByCompany failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted %d, want 2", n)
	}
	left, err := store.List(ctx, nil)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(left) != 1 || left[0].Name != "Cy" {
		t.Errorf("unexpected remaining contacts: %+v", left)
	}
}
