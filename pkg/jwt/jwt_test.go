package jwt

import (
	"testing"
	"time"

	"github.com/Luolin0826/bodian-gateway/config"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManager(&config.SessionConfig{
		JWTSecret: "test-secret-key-for-unit-testing-2026",
		TTL:       ttl,
	})
}

func TestSessionToken_RoundTrip(t *testing.T) {
	mgr := newTestManager(time.Hour)

	token, err := mgr.GenerateSessionToken("sess-1", "user-1", "sales")
	if err != nil {
		t.Fatalf("签发 Token 失败: %v", err)
	}

	claims, err := mgr.ParseSessionToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.SessionID != "sess-1" {
		t.Errorf("期望 SessionID=sess-1，实际=%s", claims.SessionID)
	}
	if claims.UserID != "user-1" {
		t.Errorf("期望 UserID=user-1，实际=%s", claims.UserID)
	}
	if claims.Role != "sales" {
		t.Errorf("期望 Role=sales，实际=%s", claims.Role)
	}
}

func TestSessionToken_Expired(t *testing.T) {
	mgr := newTestManager(-time.Minute)

	token, err := mgr.GenerateSessionToken("sess-1", "user-1", "sales")
	if err != nil {
		t.Fatalf("签发 Token 失败: %v", err)
	}

	if _, err := mgr.ParseSessionToken(token); err != ErrTokenExpired {
		t.Errorf("期望 ErrTokenExpired，实际: %v", err)
	}
}

func TestSessionToken_Tampered(t *testing.T) {
	mgr := newTestManager(time.Hour)
	other := newTestManager(time.Hour)
	other.secret = []byte("another-secret-key-xxxxxxxxxxxxx")

	token, _ := other.GenerateSessionToken("sess-1", "user-1", "sales")
	if _, err := mgr.ParseSessionToken(token); err != ErrTokenInvalid {
		t.Errorf("异签名 Token 期望 ErrTokenInvalid，实际: %v", err)
	}

	if _, err := mgr.ParseSessionToken("not.a.token"); err != ErrTokenInvalid {
		t.Errorf("畸形 Token 期望 ErrTokenInvalid，实际: %v", err)
	}
}
