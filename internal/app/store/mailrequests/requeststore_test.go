package requeststore_test

import (
	"testing"
	"time"

	requeststore "github.com/dalemusser/placementhub/internal/app/store/mailrequests"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_TransitionGuardsFromStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	r, err := store.Create(ctx, models.MailRequest{
		RequestedBy:   primitive.NewObjectID(),
		RequestType:   models.RequestCustom,
		CustomSubject: "Hello",
		CustomBody:    "<p>Body</p>",
		Status:        models.RequestPending,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reviewer := primitive.NewObjectID()
	pending := []models.RequestStatus{models.RequestPending}
	ch := requeststore.Change{Status: models.RequestApproved, ReviewedBy: &reviewer, At: time.Now().UTC()}

	ok, err := store.Transition(ctx, r.ID, pending, ch)
	if err != nil || !ok {
		t.Fatalf("first Transition = %v, %v; want true", ok, err)
	}
	ok, err = store.Transition(ctx, r.ID, pending, ch)
	if err != nil || ok {
		t.Fatalf("second Transition = %v, %v; want false", ok, err)
	}

	got, err := store.GetByID(ctx, r.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.RequestApproved || got.ReviewedBy == nil || *got.ReviewedBy != reviewer {
		t.Errorf("unexpected request: %+v", got)
	}
}

func TestStore_List_FilterByStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := requeststore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	by := primitive.NewObjectID()
	for _, st := range []models.RequestStatus{models.RequestPending, models.RequestPending, models.RequestSent} {
		if _, err := store.Create(ctx, models.MailRequest{RequestedBy: by, RequestType: models.RequestCustom, Status: st}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	rows, total, err := store.List(ctx, requeststore.ListFilter{Status: models.RequestPending}, 0, 20)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("got %d rows (total %d), want 2", len(rows), total)
	}
}
