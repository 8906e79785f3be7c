package blogstore_test

import (
	"testing"
	"time"

	blogstore "github.com/dalemusser/placementhub/internal/app/store/blogs"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_ModerateGuardsFromStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := blogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, err := store.Create(ctx, models.Blog{
		AuthorID:         primitive.NewObjectID(),
		CompanyID:        primitive.NewObjectID(),
		Title:            "My OA round",
		Body:             "<p>Two DSA questions.</p>",
		ModerationStatus: models.BlogPending,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	mod := primitive.NewObjectID()
	at := time.Now().UTC().Truncate(time.Millisecond)
	approve := blogstore.Decision{Status: models.BlogApproved, ApprovedBy: &mod, At: at}
	pending := []models.ModerationStatus{models.BlogPending}

	ok, err := store.Moderate(ctx, b.ID, pending, approve)
	if err != nil || !ok {
		t.Fatalf("first Moderate = %v, %v; want true", ok, err)
	}
	ok, err = store.Moderate(ctx, b.ID, pending, approve)
	if err != nil || ok {
		t.Fatalf("second Moderate = %v, %v; want false", ok, err)
	}

	got, err := store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ModerationStatus != models.BlogApproved || got.ApprovedBy == nil || *got.ApprovedBy != mod || got.ApprovedAt == nil {
		t.Errorf("unexpected blog after approval: %+v", got)
	}

	// Rejecting an approved post withdraws the approval.
	reject := blogstore.Decision{Status: models.BlogRejected, Note: "names a candidate", At: at}
	ok, err = store.Moderate(ctx, b.ID, []models.ModerationStatus{models.BlogApproved}, reject)
	if err != nil || !ok {
		t.Fatalf("reject Moderate = %v, %v; want true", ok, err)
	}
	got, err = store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ModerationStatus != models.BlogRejected || got.ModerationNote != "names a candidate" || got.ApprovedBy != nil || got.ApprovedAt != nil {
		t.Errorf("unexpected blog after rejection: %+v", got)
	}
}

func TestStore_List_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := blogstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	acme, globex := primitive.NewObjectID(), primitive.NewObjectID()
	author := primitive.NewObjectID()
	seed := []models.Blog{
		{CompanyID: acme, ModerationStatus: models.BlogApproved, Tags: []string{"oa"}},
		{CompanyID: acme, ModerationStatus: models.BlogApproved, Tags: []string{"hr"}},
		{CompanyID: acme, ModerationStatus: models.BlogPending, Tags: []string{"oa"}},
		{CompanyID: globex, ModerationStatus: models.BlogApproved, Tags: []string{"oa"}},
	}
	for i, b := range seed {
		b.AuthorID = author
		b.Title = "post"
		b.Body = "body"
		b.CreatedAt = time.Date(2026, 3, 1, 9, i, 0, 0, time.UTC)
		if _, err := store.Create(ctx, b); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	tests := []struct {
		name string
		f    blogstore.ListFilter
		want int64
	}{
		{"approved", blogstore.ListFilter{Status: models.BlogApproved}, 3},
		{"approved at acme", blogstore.ListFilter{Status: models.BlogApproved, CompanyID: &acme}, 2},
		{"approved oa", blogstore.ListFilter{Status: models.BlogApproved, Tag: "oa"}, 2},
		{"by author", blogstore.ListFilter{AuthorID: &author}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, total, err := store.List(ctx, tt.f, 0, 20)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if total != tt.want || int64(len(rows)) != tt.want {
				t.Errorf("got %d rows (total %d), want %d", len(rows), total, tt.want)
			}
			for i := 1; i < len(rows); i++ {
				if rows[i].CreatedAt.After(rows[i-1].CreatedAt) {
					t.Errorf("rows not newest first at %d", i)
				}
			}
		})
	}

	n, err := store.DeleteByCompany(ctx, acme)
	if err != nil || n != 3 {
		t.Errorf("DeleteByCompany = %d, %v; want 3", n, err)
	}
}
