package auth

import (
	"sync"
	"time"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/golang-jwt/jwt/v5"
)

// Token is a bearer credential and what could be read from it.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type,omitempty"`
	Subject     string    `json:"subject,omitempty"`
	IssuedAt    time.Time `json:"issued_at,omitzero"`
	ExpiresAt   time.Time `json:"expires_at,omitzero"`
}

// NewToken builds a bearer token, reading its claims when it is a JWT.
func NewToken(accessToken string) *Token {
	token := &Token{AccessToken: accessToken, TokenType: "bearer"}
	token.readClaims()

	return token
}

// readClaims fills Subject, IssuedAt and ExpiresAt from an unverified JWT.
// The server is the only authority on validity; the claims are informational.
func (t *Token) readClaims() {
	claims := jwt.MapClaims{}

	_, _, err := jwt.NewParser().ParseUnverified(t.AccessToken, claims)
	if err != nil {
		return
	}

	if sub, err := claims.GetSubject(); err == nil {
		t.Subject = sub
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t.IssuedAt = iat.Time
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t.ExpiresAt = exp.Time
	}
}

// Valid reports whether the token can be presented. Expiry is not checked:
// a stale token is discovered when the server rejects it.
func (t *Token) Valid() bool {
	return t != nil && t.AccessToken != ""
}

// Info converts the token to its public description.
func (t *Token) Info(renewable bool) *zen.TokenInfo {
	return &zen.TokenInfo{
		Subject:   t.Subject,
		IssuedAt:  t.IssuedAt,
		ExpiresAt: t.ExpiresAt,
		Renewable: renewable,
	}
}

// TokenStore holds the current token of one store instance.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token, or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear drops the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}
