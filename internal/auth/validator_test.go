package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestValidator_IssueAndValidate(t *testing.T) {
	v := NewJWTValidator("test-secret")

	token, err := v.Issue("user_1", "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := v.Validate(token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if claims.UserID != "user_1" {
		t.Errorf("user id: got %q", claims.UserID)
	}
	if claims.Email != "ada@example.com" {
		t.Errorf("email: got %q", claims.Email)
	}
}

func TestValidator_AcceptsBearerPrefix(t *testing.T) {
	v := NewJWTValidator("test-secret")

	token, err := v.Issue("user_1", "ada@example.com", "Ada", "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := v.Validate("Bearer " + token); err != nil {
		t.Errorf("bearer-prefixed token rejected: %v", err)
	}
}

func TestValidator_RejectsWrongKey(t *testing.T) {
	token, err := NewJWTValidator("key-a").Issue("user_1", "", "", "")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := NewJWTValidator("key-b").Validate(token); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidator_RejectsExpired(t *testing.T) {
	v := NewJWTValidator("test-secret")

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "user_1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	if _, err := v.Validate(token); err != ErrExpiredToken {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidator_RejectsGarbage(t *testing.T) {
	v := NewJWTValidator("test-secret")
	if _, err := v.Validate("not.a.token"); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}
