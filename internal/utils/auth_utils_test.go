package utils

import (
	"testing"
	"time"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if err := CompareHashAndPassword(hash, "s3cret-pass"); err != nil {
		t.Errorf("expected matching password to verify: %v", err)
	}
	if err := CompareHashAndPassword(hash, "wrong-pass"); err == nil {
		t.Error("expected mismatching password to fail")
	}
}

func TestJwtTokenRoundTrip(t *testing.T) {
	key := []byte("test-signing-key")
	token, err := CreateJwtToken(42, "jane@example.com", "Jane", "Doe", key, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateJwtToken: %v", err)
	}

	claims, err := VerifyToken(token, key)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.ID != 42 || claims.Email != "jane@example.com" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// The Authorization header value arrives with the scheme prefix.
	if _, err := VerifyToken("Bearer "+token, key); err != nil {
		t.Errorf("expected Bearer-prefixed token to verify: %v", err)
	}
}

func TestVerifyTokenRejections(t *testing.T) {
	key := []byte("test-signing-key")

	if _, err := VerifyToken("not-a-token", key); err == nil {
		t.Error("expected garbage token to fail")
	}

	expired, err := CreateJwtToken(7, "old@example.com", "Old", "User", key, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("CreateJwtToken: %v", err)
	}
	if _, err := VerifyToken(expired, key); err == nil {
		t.Error("expected expired token to fail")
	}

	token, err := CreateJwtToken(7, "x@example.com", "X", "Y", key, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("CreateJwtToken: %v", err)
	}
	if _, err := VerifyToken(token, []byte("other-key")); err == nil {
		t.Error("expected token signed with another key to fail")
	}
}
