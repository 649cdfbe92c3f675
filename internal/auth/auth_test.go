package auth

import (
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
)

func newTestManager() *Manager {
	return NewManager("correct horse", "0123456789abcdef", time.Hour, true)
}

func TestCheckPassword(t *testing.T) {
	m := newTestManager()
	if err := m.CheckPassword("correct horse"); err != nil {
		t.Errorf("valid password rejected: %v", err)
	}
	for _, pw := range []string{"", "correct", "correct horse "} {
		if err := m.CheckPassword(pw); !errors.Is(err, ErrInvalidPassword) {
			t.Errorf("CheckPassword(%q) = %v", pw, err)
		}
	}
	if err := NewManager("", "0123456789abcdef", time.Hour, true).CheckPassword(""); err == nil {
		t.Error("empty configured password must never match")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := newTestManager()
	token, expires, err := m.IssueToken()
	if err != nil {
		t.Fatal(err)
	}
	if err := m.VerifyToken(token); err != nil {
		t.Fatalf("fresh token rejected: %v", err)
	}
	if time.Until(expires) > time.Hour || time.Until(expires) < 59*time.Minute {
		t.Errorf("expiry %v not about one hour out", expires)
	}
}

func TestTokenFormat(t *testing.T) {
	token, expires, err := newTestManager().IssueToken()
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token %q has %d parts, want expiry.nonce.mac", token, len(parts))
	}
	if parts[0] != strconv.FormatInt(expires.Unix(), 10) {
		t.Errorf("expiry part = %q, want %d", parts[0], expires.Unix())
	}
	if nonce, err := hex.DecodeString(parts[1]); err != nil || len(nonce) != 16 {
		t.Errorf("nonce part = %q", parts[1])
	}
	if mac, err := hex.DecodeString(parts[2]); err != nil || len(mac) != 32 {
		t.Errorf("mac part = %q", parts[2])
	}
}

func TestVerifyToken_Rejects(t *testing.T) {
	m := newTestManager()
	token, _, _ := m.IssueToken()
	parts := strings.Split(token, ".")

	other := NewManager("correct horse", "fedcba9876543210", time.Hour, true)
	foreign, _, _ := other.IssueToken()

	tests := map[string]string{
		"empty":           "",
		"garbage":         "not-a-token",
		"wrong secret":    foreign,
		"tampered expiry": "9999999999." + parts[1] + "." + parts[2],
		"tampered mac":    parts[0] + "." + parts[1] + "." + strings.Repeat("0", 64),
	}
	for name, tok := range tests {
		if err := m.VerifyToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: VerifyToken = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	m := newTestManager()
	token, _, _ := m.IssueToken()

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if err := m.VerifyToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestLoginSetsCookie(t *testing.T) {
	m := newTestManager()
	rec := httptest.NewRecorder()
	if err := m.Login(rec, "correct horse"); err != nil {
		t.Fatal(err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %v", cookies)
	}
	c := cookies[0]
	if c.Name != CookieName || !c.HttpOnly || !c.Secure || c.SameSite != http.SameSiteStrictMode || c.MaxAge != 3600 {
		t.Errorf("unexpected cookie: %+v", c)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	if !m.IsAuthenticated(req) {
		t.Error("request with issued cookie not authenticated")
	}
	if m.IsAuthenticated(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Error("request without cookie authenticated")
	}
}

func TestLoginWrongPasswordSetsNothing(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := newTestManager().Login(rec, "nope"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("Login = %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("cookie set on failed login")
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestManager().Logout(rec)
	c := rec.Result().Cookies()
	if len(c) != 1 || c[0].Name != CookieName || c[0].MaxAge >= 0 {
		t.Fatalf("logout cookie = %+v", c)
	}
}
