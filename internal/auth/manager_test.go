package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/zenml-client/internal/auth"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loginServer issues "token-N" for valid credentials and rejects others.
func loginServer(t *testing.T, logins *atomic.Int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		assert.NoError(t, r.ParseForm())

		if r.Form.Get("username") != "default" || r.Form.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":["AuthorizationException","Incorrect username or password"]}`))

			return
		}

		n := logins.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "token-" + string(rune('0'+n))})
	}))
}

func TestPasswordTokenManager_GetToken(t *testing.T) {
	t.Parallel()

	var logins atomic.Int32

	server := loginServer(t, &logins)
	defer server.Close()

	manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
		LoginURL: server.URL + "/login",
		Username: "default",
		Password: "secret",
	})

	assert.True(t, manager.Renewable())
	assert.Nil(t, manager.Current())

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)

	token, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-1", token, "token is cached until invalidated")
	assert.Equal(t, int32(1), logins.Load())

	manager.Invalidate()
	manager.Invalidate()
	assert.Nil(t, manager.Current())

	token, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
	assert.Equal(t, int32(2), logins.Load())
}

func TestPasswordTokenManager_Rejected(t *testing.T) {
	t.Parallel()

	var logins atomic.Int32

	server := loginServer(t, &logins)
	defer server.Close()

	manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
		LoginURL: server.URL + "/login",
		Username: "default",
		Password: "wrong",
	})

	_, err := manager.GetToken(context.Background())
	require.ErrorIs(t, err, zen.ErrAuthentication)
	assert.NotErrorIs(t, err, zen.ErrAuthorization)

	zerr, ok := zen.AsError(err)
	require.True(t, ok)
	assert.Equal(t, 401, zerr.StatusCode)
	assert.Equal(t, "/login", zerr.Path)
	assert.Contains(t, zerr.Message(), "Incorrect username or password")
}

func TestPasswordTokenManager_MalformedLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "welcome"},
		{name: "no token", body: `{"user":"default"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{LoginURL: server.URL + "/login"})

			_, err := manager.GetToken(context.Background())
			require.ErrorIs(t, err, zen.ErrMalformedResponse)
		})
	}
}

func TestPasswordTokenManager_AccessTokenField(t *testing.T) {
	t.Parallel()

	jwtToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString([]byte("k"))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": jwtToken, "token_type": "bearer"})
	}))
	defer server.Close()

	manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{LoginURL: server.URL + "/login"})

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, jwtToken, token)
	assert.Equal(t, "alice", manager.Current().Subject)
}

func TestPasswordTokenManager_LoginTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
		LoginURL:   server.URL + "/login",
		HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
	})

	_, err := manager.GetToken(context.Background())
	require.ErrorIs(t, err, zen.ErrTimeout)
}

func TestPasswordTokenManager_SharedCache(t *testing.T) {
	t.Parallel()

	var logins atomic.Int32

	server := loginServer(t, &logins)
	defer server.Close()

	cache := zen.NewMemoryCache(10)
	config := func() *auth.PasswordConfig {
		return &auth.PasswordConfig{
			LoginURL: server.URL + "/login",
			Username: "default",
			Password: "secret",
			Cache:    cache,
		}
	}

	first := auth.NewPasswordTokenManager(config())
	second := auth.NewPasswordTokenManager(config())
	ctx := context.Background()

	token, err := first.GetToken(ctx)
	require.NoError(t, err)

	shared, err := second.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, token, shared)
	assert.Equal(t, int32(1), logins.Load(), "second manager reuses the shared token")

	key := auth.TokenCacheKey(server.URL+"/login", "default")
	assert.True(t, cache.Has(ctx, key))

	second.Invalidate()
	assert.False(t, cache.Has(ctx, key), "invalidation evicts the shared token")

	renewed, err := second.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", renewed)
	assert.True(t, cache.Has(ctx, key))
}

func TestTokenCacheKey(t *testing.T) {
	t.Parallel()

	a := auth.TokenCacheKey("https://zen.example.com/login", "alice")
	b := auth.TokenCacheKey("https://zen.example.com/login", "bob")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, auth.TokenCacheKey("https://zen.example.com/login", "alice"))
	assert.Regexp(t, `^zen\.token\.[0-9a-f]{64}$`, a)
}

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	manager := auth.NewStaticTokenManager("static-token")

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)
	assert.False(t, manager.Renewable())

	manager.Invalidate()

	token, err = manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)
}

func TestFallbackTokenManager(t *testing.T) {
	t.Parallel()

	var logins atomic.Int32

	server := loginServer(t, &logins)
	defer server.Close()

	manager := auth.NewFallbackTokenManager(
		auth.NewStaticTokenManager("stale-token"),
		auth.NewPasswordTokenManager(&auth.PasswordConfig{
			LoginURL: server.URL + "/login",
			Username: "default",
			Password: "secret",
		}),
	)

	ctx := context.Background()

	token, err := manager.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "stale-token", token)
	assert.True(t, manager.Renewable())
	assert.Zero(t, logins.Load())

	manager.Invalidate()

	token, err = manager.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-1", token)
	assert.Equal(t, "token-1", manager.Current().AccessToken)

	manager.Invalidate()

	token, err = manager.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-2", token)
}
