// SPDX-License-Identifier: MIT

// Package auth provides password hashing and JWT issuing/verification.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for expired, malformed or mis-signed tokens.
var ErrInvalidToken = errors.New("auth: invalid token")

// Manager issues and verifies HS256 tokens with a shared secret.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	verifyTTL  time.Duration
}

// NewManager creates a token manager. The secret must not be empty.
func NewManager(secret string, accessTTL, refreshTTL, verifyTTL time.Duration) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth: secret must not be empty")
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		verifyTTL:  verifyTTL,
	}, nil
}

func (m *Manager) mint(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// MintAccess issues a short-lived access token for the given email.
func (m *Manager) MintAccess(email string) (string, error) {
	return m.mint(email, m.accessTTL)
}

// MintRefresh issues a long-lived refresh token for the given email.
func (m *Manager) MintRefresh(email string) (string, error) {
	return m.mint(email, m.refreshTTL)
}

// MintVerify issues an email-verification token for the given email.
func (m *Manager) MintVerify(email string) (string, error) {
	return m.mint(email, m.verifyTTL)
}

// Subject verifies the token signature and expiry and returns its subject.
func (m *Manager) Subject(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method %v", t.Header["alg"])
			}
			return m.secret, nil
		})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ExtractBearer retrieves the bearer token from the Authorization header.
// Returns an empty string if no bearer token is present.
func ExtractBearer(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
