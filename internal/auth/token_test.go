package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIssueVerify_RoundTrip(t *testing.T) {
	tokens := NewTokenIssuer([]byte("secret"), "http://localhost:8080", time.Hour)
	identity := Identity{ID: uuid.New(), Email: "kumari@example.com"}

	signed, expires, err := tokens.Issue(identity)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if time.Until(expires) < 55*time.Minute {
		t.Fatalf("expiry too soon: %v", expires)
	}

	claims, err := tokens.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != identity.ID.String() {
		t.Errorf("user_id = %q, want %q", claims.UserID, identity.ID)
	}
	if claims.Email != identity.Email {
		t.Errorf("email = %q, want %q", claims.Email, identity.Email)
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"), "http://localhost:8080", time.Hour)
	verifier := NewTokenIssuer([]byte("secret-b"), "http://localhost:8080", time.Hour)

	signed, _, err := issuer.Issue(Identity{ID: uuid.New(), Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(signed); err == nil {
		t.Fatal("token with wrong secret accepted")
	}
}

func TestVerify_RejectsWrongIssuer(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), "http://other-host", time.Hour)
	verifier := NewTokenIssuer([]byte("secret"), "http://localhost:8080", time.Hour)

	signed, _, err := issuer.Issue(Identity{ID: uuid.New(), Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(signed); err == nil {
		t.Fatal("token with wrong issuer accepted")
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	tokens := NewTokenIssuer([]byte("secret"), "http://localhost:8080", -time.Minute)

	signed, _, err := tokens.Issue(Identity{ID: uuid.New(), Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tokens.Verify(signed); err == nil {
		t.Fatal("expired token accepted")
	}
}
