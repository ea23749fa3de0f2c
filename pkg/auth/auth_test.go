// Tests for bcrypt hashing and JWT lifecycle.
// No t.Parallel() in JWT tests — JWT_SECRET is process-global env state.
package auth

import (
	"strings"
	"testing"
	"time"
)

func TestHashPassword_ProducesBcryptHash(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v; want nil", err)
	}

	// bcrypt hashes start with $2a$ / $2b$ and encode the cost
	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("hash %q does not look like bcrypt", hash)
	}
	if !strings.Contains(hash, "$12$") {
		t.Errorf("hash %q does not encode cost %d", hash, BCryptCost)
	}
}

func TestHashPassword_DifferentSaltsPerCall(t *testing.T) {
	t.Parallel()

	h1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("first HashPassword() error = %v", err)
	}
	h2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("second HashPassword() error = %v", err)
	}

	if h1 == h2 {
		t.Error("two hashes of the same password are identical; want different salts")
	}
}

func TestVerifyPassword_Match(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !VerifyPassword(hash, "correct-horse") {
		t.Error("VerifyPassword() = false for correct password; want true")
	}
}

func TestVerifyPassword_Mismatch(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if VerifyPassword(hash, "battery-staple") {
		t.Error("VerifyPassword() = true for wrong password; want false")
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	t.Parallel()

	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Error("VerifyPassword() = true for garbage hash; want false")
	}
}

func TestGenerateJWT_RoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRY", "")

	token, err := GenerateJWT("user-123", "ws-456")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v; want nil", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT() error = %v; want nil", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q; want 'user-123'", claims.UserID)
	}
	if claims.WorkspaceID != "ws-456" {
		t.Errorf("WorkspaceID = %q; want 'ws-456'", claims.WorkspaceID)
	}
}

func TestGenerateJWT_ExpirySet(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")
	t.Setenv("JWT_EXPIRY", "1")

	token, err := GenerateJWT("user-1", "ws-1")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	claims, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("ParseJWT() error = %v", err)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 || remaining > time.Hour+time.Minute {
		t.Errorf("token expiry %v away; want ~1h", remaining)
	}
}

func TestParseJWT_TamperedToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")

	token, err := GenerateJWT("user-1", "ws-1")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	// Flip a character in the signature segment
	tampered := token[:len(token)-2] + "xx"
	if _, err := ParseJWT(tampered); err == nil {
		t.Error("ParseJWT() accepted a tampered token; want error")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")

	token, err := GenerateJWT("user-1", "ws-1")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	t.Setenv("JWT_SECRET", "secret-two")
	if _, err := ParseJWT(token); err == nil {
		t.Error("ParseJWT() accepted token signed with a different secret; want error")
	}
}

func TestParseJWT_EmptyToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-key")

	if _, err := ParseJWT(""); err == nil {
		t.Error("ParseJWT(\"\") = nil error; want error")
	}
}

func TestGenerateJWT_PanicsWithoutSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("GenerateJWT() did not panic with empty JWT_SECRET; want panic")
		}
	}()

	_, _ = GenerateJWT("user-1", "ws-1") //nolint:errcheck // panic expected before return
}

func TestParseJWTExpiry(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want time.Duration
	}{
		{"", 24 * time.Hour},
		{"not-a-number", 24 * time.Hour},
		{"1", time.Hour},
		{"48", 48 * time.Hour},
	}

	for _, tc := range cases {
		if got := parseJWTExpiry(tc.in); got != tc.want {
			t.Errorf("parseJWTExpiry(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}
