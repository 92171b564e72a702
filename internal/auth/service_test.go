package auth

import (
	"testing"
	"time"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService("test-secret", time.Hour, "demo@example.com", "password123")
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}
	return svc
}

func TestLoginAndParseRoundTrip(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Login("demo@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token.AccessToken == "" {
		t.Fatalf("access token must not be empty")
	}
	if token.ExpiresInSec != 3600 {
		t.Fatalf("expires_in_sec = %d, want 3600", token.ExpiresInSec)
	}

	claims, err := svc.ParseAccess(token.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Email != "demo@example.com" {
		t.Fatalf("claims email = %q", claims.Email)
	}
	if claims.Issuer != "video-editor" {
		t.Fatalf("claims issuer = %q", claims.Issuer)
	}
}

func TestLoginRejectsWrongCredentials(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Login("demo@example.com", "wrong"); err != ErrUnauthorized {
		t.Fatalf("wrong password: err = %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Login("other@example.com", "password123"); err != ErrUnauthorized {
		t.Fatalf("unknown email: err = %v, want ErrUnauthorized", err)
	}
}

func TestParseRejectsGarbageToken(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.ParseAccess("not.a.token"); err != ErrUnauthorized {
		t.Fatalf("garbage token: err = %v, want ErrUnauthorized", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := svc.Login("demo@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ParseAccess(token.AccessToken); err != ErrTokenExpired {
		t.Fatalf("expired token: err = %v, want ErrTokenExpired", err)
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t)
	other, err := NewService("other-secret", time.Hour, "demo@example.com", "password123")
	if err != nil {
		t.Fatalf("new auth service: %v", err)
	}

	token, err := other.Login("demo@example.com", "password123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := svc.ParseAccess(token.AccessToken); err != ErrUnauthorized {
		t.Fatalf("foreign signature: err = %v, want ErrUnauthorized", err)
	}
}
