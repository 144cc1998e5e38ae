package auth

import (
	"testing"
	"time"

	"github.com/NewEdu-F-2025/platform-service/internal/models"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", "newedu-platform", 14*24*time.Hour)
	user := &models.User{ID: 42, Role: models.RoleStudent}

	token, expiresAt, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	if remaining := time.Until(expiresAt); remaining < 13*24*time.Hour {
		t.Fatalf("expected ~14 day validity, got %v", remaining)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if claims.UserID != 42 || claims.Role != models.RoleStudent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", "newedu-platform", -time.Minute)

	token, _, err := issuer.Issue(&models.User{ID: 1, Role: models.RoleTeacher})
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	if _, err := issuer.Verify(token); err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	issuer := NewTokenIssuer("secret", "newedu-platform", time.Hour)

	token, _, err := issuer.Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	other := NewTokenIssuer("different-secret", "newedu-platform", time.Hour)
	if _, err := other.Verify(token); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for wrong secret, got %v", err)
	}

	if _, err := issuer.Verify(token + "x"); err != ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("topsecret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if err := CheckPassword(hash, "topsecret"); err != nil {
		t.Fatalf("expected password to match")
	}
	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatalf("expected password mismatch")
	}
}
