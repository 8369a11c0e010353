package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	zenhttp "github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
)

// Manager owns the session of one store instance.
type Manager interface {
	GetToken(ctx context.Context) (string, error)
	Invalidate()
	Renewable() bool
	// Current returns the token in use, or nil before the first GetToken.
	Current() *Token
}

// PasswordConfig configures credential exchange with the login endpoint.
type PasswordConfig struct {
	LoginURL   string
	Username   string
	Password   string
	HTTPClient *http.Client

	// Cache shares tokens between store instances using the same server and user.
	Cache zen.Cache
	// CacheTTL bounds a shared token without an expiry claim.
	CacheTTL time.Duration

	Logger zen.Logger
}

// PasswordTokenManager logs in lazily with username and password and keeps
// the token until it is invalidated.
type PasswordTokenManager struct {
	config   *PasswordConfig
	store    *TokenStore
	cacheKey string
}

// NewPasswordTokenManager creates a token manager exchanging credentials at config.LoginURL.
func NewPasswordTokenManager(config *PasswordConfig) *PasswordTokenManager {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	if config.CacheTTL <= 0 {
		config.CacheTTL = constants.DefaultTokenCacheTTL
	}

	return &PasswordTokenManager{
		config:   config,
		store:    NewTokenStore(),
		cacheKey: TokenCacheKey(config.LoginURL, config.Username),
	}
}

// TokenCacheKey derives the shared cache key of a server and user.
func TokenCacheKey(loginURL, username string) string {
	sum := sha256.Sum256([]byte(loginURL + "\x00" + username))

	return constants.TokenCacheKeyPrefix + hex.EncodeToString(sum[:])
}

// GetToken returns the cached token, a shared one, or logs in.
func (m *PasswordTokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	if token := m.fromCache(ctx); token.Valid() {
		m.store.Set(token)

		return token.AccessToken, nil
	}

	token, err := m.Login(ctx)
	if err != nil {
		return "", err
	}

	m.store.Set(token)
	m.toCache(ctx, token)

	return token.AccessToken, nil
}

// Invalidate drops the token here and in the shared cache.
func (m *PasswordTokenManager) Invalidate() {
	if m.store.Get() == nil {
		return
	}

	m.store.Clear()

	if m.config.Cache != nil {
		ctx, cancel := context.WithTimeout(context.Background(), constants.ShortHTTPTimeout)
		defer cancel()

		err := m.config.Cache.Delete(ctx, m.cacheKey)
		if err != nil {
			m.warn("Failed to evict shared token", err)
		}
	}
}

// Renewable is always true: a new login yields a fresh token.
func (m *PasswordTokenManager) Renewable() bool {
	return true
}

// Current returns the token in use.
func (m *PasswordTokenManager) Current() *Token {
	return m.store.Get()
}

// loginResponse accepts both the native and the OAuth2 field name.
type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login exchanges the configured credentials for a new token.
func (m *PasswordTokenManager) Login(ctx context.Context) (*Token, error) {
	form := url.Values{}
	form.Set("username", m.config.Username)
	form.Set("password", m.config.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.LoginURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating login request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.config.HTTPClient.Do(req)
	if err != nil {
		return nil, loginTransportError(err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading login response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		zerr := zenhttp.StatusError(resp.StatusCode, body)
		zerr.Code = zen.CodeAuthentication
		zerr.Method = http.MethodPost
		zerr.Path = constants.LoginPath

		return nil, zerr
	}

	var payload loginResponse

	err = json.Unmarshal(body, &payload)
	if err != nil {
		return nil, &zen.Error{Code: zen.CodeMalformedResponse, StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}

	accessToken := payload.Token
	if accessToken == "" {
		accessToken = payload.AccessToken
	}

	if accessToken == "" {
		return nil, &zen.Error{
			Code:       zen.CodeMalformedResponse,
			StatusCode: resp.StatusCode,
			Detail:     []string{"login response carries no token"},
		}
	}

	if m.config.Logger != nil {
		m.config.Logger.Debug("Logged in", map[string]interface{}{"username": m.config.Username})
	}

	return NewToken(accessToken), nil
}

func loginTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &zen.Error{Code: zen.CodeTimeout, Method: http.MethodPost, Path: constants.LoginPath, Err: err}
	}

	return fmt.Errorf("logging in: %w", err)
}

func (m *PasswordTokenManager) fromCache(ctx context.Context) *Token {
	if m.config.Cache == nil {
		return nil
	}

	entry, err := m.config.Cache.Get(ctx, m.cacheKey)
	if err != nil {
		return nil
	}

	var token Token

	err = json.Unmarshal(entry.Data, &token)
	if err != nil {
		m.warn("Discarding unreadable shared token", err)

		return nil
	}

	return &token
}

func (m *PasswordTokenManager) toCache(ctx context.Context, token *Token) {
	if m.config.Cache == nil {
		return
	}

	data, err := json.Marshal(token)
	if err != nil {
		return
	}

	expiresAt := token.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = time.Now().Add(m.config.CacheTTL)
	}

	err = m.config.Cache.Set(ctx, m.cacheKey, &zen.CacheEntry{Data: data, ExpiresAt: expiresAt})
	if err != nil {
		m.warn("Failed to share token", err)
	}
}

func (m *PasswordTokenManager) warn(msg string, err error) {
	if m.config.Logger != nil {
		m.config.Logger.Warn(msg, map[string]interface{}{"error": err.Error()})
	}
}

// StaticTokenManager presents a fixed token. It cannot renew it.
type StaticTokenManager struct {
	token *Token
}

// NewStaticTokenManager creates a token manager for a pre-issued token.
func NewStaticTokenManager(accessToken string) *StaticTokenManager {
	return &StaticTokenManager{token: NewToken(accessToken)}
}

// GetToken returns the fixed token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.token.AccessToken, nil
}

// Invalidate is a no-op.
func (m *StaticTokenManager) Invalidate() {}

// Renewable is false.
func (m *StaticTokenManager) Renewable() bool {
	return false
}

// Current returns the fixed token.
func (m *StaticTokenManager) Current() *Token {
	return m.token
}

// FallbackTokenManager presents a pre-issued token until the server rejects
// it, then switches to password login for good.
type FallbackTokenManager struct {
	primary  Manager
	fallback Manager
	switched atomic.Bool
}

// NewFallbackTokenManager creates a token manager trying primary first.
func NewFallbackTokenManager(primary, fallback Manager) *FallbackTokenManager {
	return &FallbackTokenManager{primary: primary, fallback: fallback}
}

func (m *FallbackTokenManager) active() Manager {
	if m.switched.Load() {
		return m.fallback
	}

	return m.primary
}

// GetToken returns the token of the active manager.
func (m *FallbackTokenManager) GetToken(ctx context.Context) (string, error) {
	return m.active().GetToken(ctx)
}

// Invalidate switches to the fallback on first call, then invalidates it.
func (m *FallbackTokenManager) Invalidate() {
	if m.switched.CompareAndSwap(false, true) {
		return
	}

	m.fallback.Invalidate()
}

// Renewable is true while either manager can produce a new token.
func (m *FallbackTokenManager) Renewable() bool {
	return !m.switched.Load() || m.fallback.Renewable()
}

// Current returns the token of the active manager.
func (m *FallbackTokenManager) Current() *Token {
	return m.active().Current()
}
