package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndParse(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue("u-1", "a@example.com")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := iss.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != "u-1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims %#v", claims)
	}
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)

	other := NewIssuer("other", time.Hour)
	foreign, _ := other.Issue("u-1", "a@example.com")
	if _, err := iss.Parse(foreign); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	expired := NewIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _ := expired.Issue("u-1", "a@example.com")
	if _, err := iss.Parse(old); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	if _, err := iss.Parse("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	// a token signed with "none" must not pass
	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u-1"})
	s, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if _, err := iss.Parse(s); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for alg none, got %v", err)
	}

	noUser, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "a@example.com"}).SignedString([]byte("secret"))
	if _, err := iss.Parse(noUser); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken without user id, got %v", err)
	}
}

func TestContextUserID(t *testing.T) {
	ctx := context.Background()
	if got := UserID(ctx); got != "" {
		t.Fatalf("expected empty user id, got %q", got)
	}
	ctx = WithUserID(ctx, "u-9")
	if got := UserID(ctx); got != "u-9" {
		t.Fatalf("expected u-9, got %q", got)
	}
}
