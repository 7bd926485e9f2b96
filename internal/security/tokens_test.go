package security

import (
	"testing"
	"time"
)

func TestTokenRegistry_IssueResolve(t *testing.T) {
	reg := NewTokenRegistry(time.Hour)

	token := reg.Issue("user-1")
	if token == "" {
		t.Fatal("expected a token")
	}

	userID, ok := reg.Resolve(token)
	if !ok {
		t.Fatal("expected token to resolve")
	}
	if userID != "user-1" {
		t.Errorf("expected user-1, got %s", userID)
	}
}

func TestTokenRegistry_UnknownToken(t *testing.T) {
	reg := NewTokenRegistry(time.Hour)

	if _, ok := reg.Resolve("bogus"); ok {
		t.Error("unknown token must not resolve")
	}
	if _, ok := reg.Resolve(""); ok {
		t.Error("empty token must not resolve")
	}
}

func TestTokenRegistry_Expiry(t *testing.T) {
	reg := NewTokenRegistry(time.Minute)
	current := time.Now()
	reg.now = func() time.Time { return current }

	token := reg.Issue("user-1")

	current = current.Add(2 * time.Minute)
	if _, ok := reg.Resolve(token); ok {
		t.Error("expired token must not resolve")
	}
}

func TestTokenRegistry_ZeroTTLNeverExpires(t *testing.T) {
	reg := NewTokenRegistry(0)
	current := time.Now()
	reg.now = func() time.Time { return current }

	token := reg.Issue("user-1")

	current = current.Add(1000 * time.Hour)
	if _, ok := reg.Resolve(token); !ok {
		t.Error("zero-TTL token must still resolve")
	}
}

func TestTokenRegistry_Revoke(t *testing.T) {
	reg := NewTokenRegistry(time.Hour)

	token := reg.Issue("user-1")
	reg.Revoke(token)

	if _, ok := reg.Resolve(token); ok {
		t.Error("revoked token must not resolve")
	}
}

func TestHashPassword(t *testing.T) {
	h1 := HashPassword("secret")
	h2 := HashPassword("secret")
	if h1 != h2 {
		t.Error("hash must be deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h1))
	}
	if h1 == HashPassword("other") {
		t.Error("different passwords must hash differently")
	}
}
