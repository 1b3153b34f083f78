package postgres

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	customErrors "github.com/osavchuk/contacts-api/internal/domain/contacts/errors"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/model"
	"github.com/osavchuk/contacts-api/internal/domain/contacts/repo"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Contact{}, &model.AppMeta{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestUserRepo_CreateAndGet(t *testing.T) {
	r := NewUserRepo(setupDB(t))
	ctx := context.Background()

	id, err := r.CreateUser(ctx, model.User{Email: "a@b.com", PasswordHash: "h", IsActive: true, Role: model.RoleUser})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	byID, err := r.GetUserByID(ctx, id)
	if err != nil || byID.Email != "a@b.com" {
		t.Fatalf("get by id: %v", err)
	}
	byEmail, err := r.GetUserByEmail(ctx, "a@b.com")
	if err != nil || byEmail.ID != id {
		t.Fatalf("get by email: %v", err)
	}

	if _, err := r.GetUserByID(ctx, 999); !customErrors.IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	r := NewUserRepo(setupDB(t))
	ctx := context.Background()

	if _, err := r.CreateUser(ctx, model.User{Email: "a@b.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := r.CreateUser(ctx, model.User{Email: "a@b.com", PasswordHash: "h2"}); !customErrors.IsAlreadyExists(err) {
		t.Fatalf("want already exists, got %v", err)
	}
}

func TestUserRepo_Mutations(t *testing.T) {
	r := NewUserRepo(setupDB(t))
	ctx := context.Background()

	id, err := r.CreateUser(ctx, model.User{Email: "a@b.com", PasswordHash: "h", IsActive: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := r.SetVerified(ctx, id, true); err != nil {
		t.Fatalf("set verified: %v", err)
	}
	if err := r.SetRole(ctx, id, model.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	if err := r.SetActive(ctx, id, false); err != nil {
		t.Fatalf("set active: %v", err)
	}
	if err := r.SetAvatarURL(ctx, id, "https://img/1.png"); err != nil {
		t.Fatalf("set avatar: %v", err)
	}
	if err := r.SetPasswordHash(ctx, id, "h2"); err != nil {
		t.Fatalf("set hash: %v", err)
	}

	u, err := r.GetUserByID(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !u.IsVerified || u.Role != model.RoleAdmin || u.IsActive || u.AvatarURL != "https://img/1.png" || u.PasswordHash != "h2" {
		t.Fatalf("mutations not applied: %+v", u)
	}

	if err := r.SetRole(ctx, 999, model.RoleAdmin); !customErrors.IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
}

func seedContact(t *testing.T, r *ContactRepo, ownerID uint, first, last, email string) model.Contact {
	t.Helper()
	c, err := r.Create(context.Background(), model.Contact{
		FirstName: first, LastName: last, Email: email,
		Phone:    "+380501112233",
		Birthday: time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC),
		OwnerID:  ownerID,
	})
	if err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return c
}

func TestContactRepo_OwnerScope(t *testing.T) {
	r := NewContactRepo(setupDB(t))
	ctx := context.Background()

	c := seedContact(t, r, 1, "Olena", "Shevchenko", "olena@example.com")

	if _, err := r.Get(ctx, 1, c.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if _, err := r.Get(ctx, 2, c.ID); !customErrors.IsNotFound(err) {
		t.Fatalf("foreign owner must not see the contact, got %v", err)
	}
	if err := r.Delete(ctx, 2, c.ID); !customErrors.IsNotFound(err) {
		t.Fatalf("foreign owner must not delete, got %v", err)
	}
	if err := r.Delete(ctx, 1, c.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := r.Delete(ctx, 1, c.ID); !customErrors.IsNotFound(err) {
		t.Fatalf("double delete must be not found, got %v", err)
	}
}

func TestContactRepo_ListFilters(t *testing.T) {
	r := NewContactRepo(setupDB(t))
	ctx := context.Background()

	seedContact(t, r, 1, "Olena", "Shevchenko", "olena@example.com")
	seedContact(t, r, 1, "Ivan", "Franko", "ivan@example.com")
	seedContact(t, r, 2, "Olena", "Kovalenko", "kovalenko@other.org")

	all, err := r.List(ctx, 1, 0, 100, repo.ContactFilter{})
	if err != nil || len(all) != 2 {
		t.Fatalf("want 2 contacts for owner 1, got %d (%v)", len(all), err)
	}

	// filters are OR-combined, case-insensitive substrings
	got, err := r.List(ctx, 1, 0, 100, repo.ContactFilter{FirstName: "olen", Email: "ivan@"})
	if err != nil || len(got) != 2 {
		t.Fatalf("want both matches, got %d (%v)", len(got), err)
	}

	got, err = r.List(ctx, 1, 0, 100, repo.ContactFilter{LastName: "shev"})
	if err != nil || len(got) != 1 || got[0].LastName != "Shevchenko" {
		t.Fatalf("want Shevchenko only, got %+v (%v)", got, err)
	}

	page, err := r.List(ctx, 1, 1, 1, repo.ContactFilter{})
	if err != nil || len(page) != 1 || page[0].FirstName != "Ivan" {
		t.Fatalf("paging broken: %+v (%v)", page, err)
	}
}

func TestContactRepo_Update(t *testing.T) {
	r := NewContactRepo(setupDB(t))
	ctx := context.Background()

	c := seedContact(t, r, 1, "Olena", "Shevchenko", "olena@example.com")
	c.Phone = "+380671234567"
	updated, err := r.Update(ctx, c)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Phone != "+380671234567" {
		t.Fatalf("phone not updated: %+v", updated)
	}
}

func TestMetaRepo_SetGetOverwrite(t *testing.T) {
	r := NewMetaRepo(setupDB(t))
	ctx := context.Background()

	if _, err := r.Get(ctx, "default_avatar_url"); !customErrors.IsNotFound(err) {
		t.Fatalf("want not found, got %v", err)
	}
	if err := r.Set(ctx, "default_avatar_url", "https://img/a.png"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := r.Set(ctx, "default_avatar_url", "https://img/b.png"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, err := r.Get(ctx, "default_avatar_url")
	if err != nil || v != "https://img/b.png" {
		t.Fatalf("want overwritten value, got %q (%v)", v, err)
	}
}
