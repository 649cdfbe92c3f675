// Package auth implements the admin session guard: a password login that
// issues an HMAC-signed, expiring session cookie.
package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const CookieName = "admin_session"

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid session token")
	ErrExpiredToken    = errors.New("session expired")
)

// Manager issues and verifies admin session tokens. Tokens have the form
// <expiry-unix>.<nonce-hex>.<hmac-hex>.
type Manager struct {
	password []byte
	secret   []byte
	ttl      time.Duration
	secure   bool
	now      func() time.Time
}

func NewManager(password, secret string, ttl time.Duration, secureCookie bool) *Manager {
	return &Manager{
		password: []byte(password),
		secret:   []byte(secret),
		ttl:      ttl,
		secure:   secureCookie,
		now:      time.Now,
	}
}

// CheckPassword compares in constant time.
func (m *Manager) CheckPassword(password string) error {
	want := sha256.Sum256(m.password)
	got := sha256.Sum256([]byte(password))
	if len(m.password) == 0 || !hmac.Equal(want[:], got[:]) {
		return ErrInvalidPassword
	}
	return nil
}

// IssueToken returns a new signed token and its expiry.
func (m *Manager) IssueToken() (string, time.Time, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", time.Time{}, fmt.Errorf("generate session nonce: %w", err)
	}
	expires := m.now().Add(m.ttl).Truncate(time.Second)
	payload := strconv.FormatInt(expires.Unix(), 10) + "." + hex.EncodeToString(nonce)
	return payload + "." + m.sign(payload), expires, nil
}

// VerifyToken checks the signature and expiry of token.
func (m *Manager) VerifyToken(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return ErrInvalidToken
	}
	payload := parts[0] + "." + parts[1]
	if !hmac.Equal([]byte(parts[2]), []byte(m.sign(payload))) {
		return ErrInvalidToken
	}
	exp, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return ErrInvalidToken
	}
	if !m.now().Before(time.Unix(exp, 0)) {
		return ErrExpiredToken
	}
	return nil
}

// IsAuthenticated reports whether r carries a valid session cookie.
func (m *Manager) IsAuthenticated(r *http.Request) bool {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return m.VerifyToken(c.Value) == nil
}

// Login checks password and, on success, sets a fresh session cookie.
func (m *Manager) Login(w http.ResponseWriter, password string) error {
	if err := m.CheckPassword(password); err != nil {
		return err
	}
	token, expires, err := m.IssueToken()
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.ttl / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// Logout expires the session cookie.
func (m *Manager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (m *Manager) sign(payload string) string {
	h := hmac.New(sha256.New, m.secret)
	h.Write([]byte(payload))
	return hex.EncodeToString(h.Sum(nil))
}
