package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/studybuddy/internal/auth"
	"github.com/garnizeh/studybuddy/internal/session"
	"github.com/garnizeh/studybuddy/pkg/errorx"
	"github.com/garnizeh/studybuddy/pkg/repository/mock"
)

func newService() (*auth.Service, *mock.Store, *session.Issuer) {
	store := mock.New()
	iss := session.NewIssuer("secret", time.Hour)
	return auth.New(store, iss, nil).WithCost(bcrypt.MinCost), store, iss
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _, iss := newService()
	ctx := context.Background()

	token, acc, err := svc.SignUp(ctx, " Alice@Example.com ", "pw")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if acc.UserID == "" || acc.Email != "alice@example.com" {
		t.Fatalf("unexpected account %#v", acc)
	}
	claims, err := iss.Parse(token)
	if err != nil || claims.UserID != acc.UserID {
		t.Fatalf("token does not identify the new user: %#v, %v", claims, err)
	}

	_, again, err := svc.SignIn(ctx, "alice@example.com", "pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if again.UserID != acc.UserID {
		t.Fatalf("expected same user id")
	}
}

func TestSignUpErrors(t *testing.T) {
	svc, store, _ := newService()
	ctx := context.Background()

	if _, _, err := svc.SignUp(ctx, "", "pw"); !errorx.Is(err, errorx.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, _, err := svc.SignUp(ctx, "a@example.com", "pw"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, _, err := svc.SignUp(ctx, "a@example.com", "pw"); !errorx.Is(err, errorx.KindAuth) {
		t.Fatalf("expected auth error for duplicate email, got %v", err)
	}

	store.CreateErr = errors.New("db down")
	if _, _, err := svc.SignUp(ctx, "b@example.com", "pw"); !errorx.Is(err, errorx.KindQuery) {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestSignInErrors(t *testing.T) {
	svc, store, _ := newService()
	ctx := context.Background()

	if _, _, err := svc.SignUp(ctx, "a@example.com", "pw"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
		kind     errorx.Kind
	}{
		{name: "missing", email: "", password: "", kind: errorx.KindValidation},
		{name: "unknown", email: "x@example.com", password: "pw", kind: errorx.KindAuth},
		{name: "wrong password", email: "a@example.com", password: "nope", kind: errorx.KindAuth},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, _, err := svc.SignIn(ctx, c.email, c.password); !errorx.Is(err, c.kind) {
				t.Fatalf("want %v got %v", c.kind, err)
			}
		})
	}

	store.GetErr = errors.New("db down")
	if _, _, err := svc.SignIn(ctx, "a@example.com", "pw"); !errorx.Is(err, errorx.KindQuery) {
		t.Fatalf("expected query error, got %v", err)
	}
}
