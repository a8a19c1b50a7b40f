package user

import (
	"context"
	"errors"
	"testing"

	"fixiestore/internal/dbtest"
	"fixiestore/internal/domain"
)

func TestPostgres_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(dbtest.Pool(t), nil)

	created, err := repo.Create(ctx, domain.User{Email: "Rider@Example.com", PasswordHash: "hash", FullName: "Rider"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "rider@example.com" || created.IsAdmin {
		t.Fatalf("unexpected user %+v", created)
	}

	byEmail, err := repo.GetByEmail(ctx, "RIDER@example.com")
	if err != nil || byEmail.ID != created.ID {
		t.Fatalf("GetByEmail: %v %+v", err, byEmail)
	}
	byID, err := repo.GetByID(ctx, created.ID)
	if err != nil || byID.FullName != "Rider" {
		t.Fatalf("GetByID: %v %+v", err, byID)
	}

	if _, err := repo.Create(ctx, domain.User{Email: "rider@example.com", PasswordHash: "x"}); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	if _, err := repo.GetByID(ctx, "not-a-uuid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPostgres_SetAdmin(t *testing.T) {
	ctx := context.Background()
	repo := NewPostgres(dbtest.Pool(t), nil)

	created, err := repo.Create(ctx, domain.User{Email: "admin@example.com", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.SetAdmin(ctx, "ADMIN@example.com", true); err != nil {
		t.Fatalf("SetAdmin: %v", err)
	}
	got, _ := repo.GetByID(ctx, created.ID)
	if !got.IsAdmin {
		t.Fatalf("expected admin flag set")
	}
	if err := repo.SetAdmin(ctx, "ghost@example.com", true); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
