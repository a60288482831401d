package api

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2025, 1, 11, 12, 0, 0, 0, time.UTC)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": exp.Unix(),
	}).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatal(err)
	}

	got, ok := TokenExpiry(tok)
	if !ok {
		t.Fatal("expected exp claim")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
	if TokenExpired(tok, exp.Add(-time.Minute)) {
		t.Fatal("token reported expired before exp")
	}
	if !TokenExpired(tok, exp) {
		t.Fatal("token not expired at exp")
	}
}

func TestTokenExpiryGarbage(t *testing.T) {
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, ok := TokenExpiry(tok); ok {
			t.Fatalf("TokenExpiry(%q) reported ok", tok)
		}
		if TokenExpired(tok, time.Now()) {
			t.Fatalf("TokenExpired(%q) = true", tok)
		}
	}
}
