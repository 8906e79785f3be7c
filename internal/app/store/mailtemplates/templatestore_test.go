package templatestore_test

import (
	"errors"
	"testing"
	"time"

	templatestore "github.com/dalemusser/placementhub/internal/app/store/mailtemplates"
	"github.com/dalemusser/placementhub/internal/app/system/indexes"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
)

func TestVersionStore_MaxAndUnique(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	fx := testutil.NewFixtures(t, db)
	tpl := fx.CreateTemplate(ctx, "welcome", models.TemplateApproved)
	versions := templatestore.NewVersions(db)

	top, err := versions.MaxVersion(ctx, tpl.ID)
	if err != nil || top != 0 {
		t.Fatalf("MaxVersion on empty = %d, %v; want 0", top, err)
	}

	for _, v := range []int{1, 2} {
		_, err := versions.Insert(ctx, models.EmailTemplateVersion{
			TemplateID: tpl.ID, Version: v, Subject: "s", BodyHTML: "b", CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("Insert v%d failed: %v", v, err)
		}
	}
	top, err = versions.MaxVersion(ctx, tpl.ID)
	if err != nil || top != 2 {
		t.Fatalf("MaxVersion = %d, %v; want 2", top, err)
	}

	_, err = versions.Insert(ctx, models.EmailTemplateVersion{TemplateID: tpl.ID, Version: 2, Subject: "s", BodyHTML: "b"})
	if !errors.Is(err, templatestore.ErrDuplicateVersion) {
		t.Fatalf("expected ErrDuplicateVersion, got %v", err)
	}
}

func TestStore_UpdateKeepsSlug(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := templatestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tpl, err := store.Create(ctx, models.MailTemplate{
		Name: "Intro", Slug: " Intro-Mail ", Subject: "Hi", BodyHTML: "<p>Hi</p>", Status: models.TemplateDraft, Version: 1,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tpl.Slug != "intro-mail" {
		t.Errorf("slug = %q, want normalized", tpl.Slug)
	}

	tpl.Subject = "Hello"
	tpl.Slug = "changed"
	tpl.UpdatedAt = time.Now().UTC()
	if err := store.Update(ctx, tpl); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	got, err := store.GetByID(ctx, tpl.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Subject != "Hello" || got.Slug != "intro-mail" {
		t.Errorf("got subject %q slug %q", got.Subject, got.Slug)
	}
}
