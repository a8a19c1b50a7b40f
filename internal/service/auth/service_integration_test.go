package auth

import (
	"context"
	"log"
	"os"
	"testing"

	"fixiestore/internal/dbtest"
	"fixiestore/internal/identity"
	sessionrepo "fixiestore/internal/repository/session"
	userrepo "fixiestore/internal/repository/user"
)

func TestSignupAndLogin_Integration(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.Pool(t)

	repo := userrepo.NewPostgres(pool, log.New(os.Stdout, "[test] ", log.LstdFlags))
	svc := New(repo, sessionrepo.NewPostgres(pool), identity.NewHub(), Options{})

	password := "Abcdefg1"
	user, err := svc.SignUp(ctx, SignupInput{
		Email:    "integration@example.com",
		Password: password,
		FullName: "Int User",
	})
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatalf("expected created user, got %+v", user)
	}

	session, err := svc.SignIn(ctx, "Integration@Example.com", password, "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token == "" {
		t.Fatalf("expected token")
	}

	current, err := svc.CurrentUser(ctx, session.Token)
	if err != nil || current.Email != "integration@example.com" {
		t.Fatalf("current user: %v %+v", err, current)
	}
	if err := svc.SignOut(ctx, session.Token); err != nil {
		t.Fatalf("signout: %v", err)
	}
}
