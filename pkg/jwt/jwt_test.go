package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "alice@lab.example")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	claims, err := m.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("user id = %s, want %s", claims.UserID, userID)
	}
	if claims.Email != "alice@lab.example" {
		t.Fatalf("email = %s", claims.Email)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).GenerateAccessToken(uuid.New(), "x@lab.example")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := NewManager("secret-b", time.Hour).ValidateAccessToken(token); err == nil {
		t.Fatal("token signed with another secret was accepted")
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	token, err := m.GenerateAccessToken(uuid.New(), "x@lab.example")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := m.ValidateAccessToken(token); err == nil {
		t.Fatal("expired token was accepted")
	}
}
