package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSignAndVerifyRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignJWT(Claims{Sub: "ada_example_com", Sid: "sess-1", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	claims, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT: %v", err)
	}
	if claims.Sub != "ada_example_com" || claims.Sid != "sess-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Exp-claims.Iat != int64(defaultTTL/time.Second) {
		t.Fatalf("expected default ttl, got %d", claims.Exp-claims.Iat)
	}
}

func TestVerifyRejectsTamperedAndExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := SignJWT(Claims{Sub: "u", Sid: "s"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	parts := strings.Split(token, ".")
	if _, err := VerifyJWT(parts[0] + "." + parts[1] + ".AAAA"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	past := time.Now().Add(-time.Hour).Unix()
	expired, err := SignJWT(Claims{Sub: "u", Sid: "s", Iat: past - 10, Exp: past})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}
	if _, err := VerifyJWT(expired); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestSignRequiresSession(t *testing.T) {
	if _, err := SignJWT(Claims{Sub: "u"}); err == nil {
		t.Fatalf("expected error without sid")
	}
}

func TestSecretRequiredInProduction(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := SignJWT(Claims{Sub: "u", Sid: "s"}); err == nil {
		t.Fatalf("expected missing secret error")
	}
}
