package security

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func TestJWTRoundTrip(t *testing.T) {
	issuer, err := NewJWTIssuer("secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatal(err)
	}
	id, err := issuer.Parse(token)
	if err != nil || id != "user-1" {
		t.Fatalf("parse: %q, %v", id, err)
	}
}

func TestJWTRejectsExpiredAndForeignTokens(t *testing.T) {
	issuer, _ := NewJWTIssuer("secret", time.Hour)
	token, _ := issuer.Issue("user-1")

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if _, err := issuer.Parse(token); err == nil {
		t.Fatal("expired token accepted")
	}

	other, _ := NewJWTIssuer("another", time.Hour)
	if _, err := other.Parse(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
	if _, err := NewJWTIssuer(" ", time.Hour); !errors.Is(err, ErrSecretRequired) {
		t.Fatalf("empty secret: %v", err)
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("hunter22")
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Compare(hash, "hunter22"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := h.Compare(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("mismatch: %v", err)
	}
}
