package companystore_test

import (
	"errors"
	"testing"
	"time"

	companystore "github.com/dalemusser/placementhub/internal/app/store/companies"
	"github.com/dalemusser/placementhub/internal/app/system/indexes"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
)

func TestStore_Create_DuplicateSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	store := companystore.New(db)

	if _, err := store.Create(ctx, models.Company{Name: "Acme", Slug: "acme"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.Company{Name: "Acme Two", Slug: " ACME "})
	if !errors.Is(err, companystore.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestStore_List_SearchAndOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := companystore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	base := time.Now().UTC().Add(-time.Hour)
	for i, name := range []string{"Globex", "Gamma Labs", "Initech"} {
		_, err := store.Create(ctx, models.Company{
			Name:      name,
			Slug:      name,
			Industry:  "software",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	tests := []struct {
		name   string
		filter companystore.ListFilter
		want   []string
	}{
		{"all newest first", companystore.ListFilter{}, []string{"Initech", "Gamma Labs", "Globex"}},
		{"prefix search", companystore.ListFilter{Search: "g"}, []string{"Gamma Labs", "Globex"}},
		{"case-insensitive", companystore.ListFilter{Search: "INIT"}, []string{"Initech"}},
		{"industry miss", companystore.ListFilter{Industry: "retail"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, total, err := store.List(ctx, tt.filter, 0, 20)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if int(total) != len(tt.want) || len(rows) != len(tt.want) {
				t.Fatalf("got %d rows (total %d), want %d", len(rows), total, len(tt.want))
			}
			for i, r := range rows {
				if r.Name != tt.want[i] {
					t.Errorf("row %d = %q, want %q", i, r.Name, tt.want[i])
				}
			}
		})
	}
}
