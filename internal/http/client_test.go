package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	zenhttp "github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockTokenManager hands out "token-1", "token-2", ... one per login.
type MockTokenManager struct {
	mu            sync.Mutex
	current       string
	logins        int
	invalidations int
	renewable     bool
	err           error
}

func newMockTokenManager() *MockTokenManager {
	return &MockTokenManager{renewable: true}
}

func (m *MockTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}

	if m.current == "" {
		m.logins++
		m.current = "token-" + string(rune('0'+m.logins))
	}

	return m.current, nil
}

func (m *MockTokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.invalidations++
	m.current = ""
}

func (m *MockTokenManager) Renewable() bool {
	return m.renewable
}

func (m *MockTokenManager) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.logins, m.invalidations
}

// MockLogger for testing.
type MockLogger struct {
	mu   sync.Mutex
	logs []map[string]interface{}
}

func (l *MockLogger) add(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.logs = append(l.logs, map[string]interface{}{"level": level, "msg": msg, "fields": fields})
}

func (l *MockLogger) Debug(msg string, fields map[string]interface{}) { l.add("debug", msg, fields) }
func (l *MockLogger) Info(msg string, fields map[string]interface{})  { l.add("info", msg, fields) }
func (l *MockLogger) Warn(msg string, fields map[string]interface{})  { l.add("warn", msg, fields) }
func (l *MockLogger) Error(msg string, fields map[string]interface{}) { l.add("error", msg, fields) }

func (l *MockLogger) messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	msgs := make([]string, 0, len(l.logs))
	for _, entry := range l.logs {
		msgs = append(msgs, entry["msg"].(string))
	}

	return msgs
}

// statusSequence answers each request with the next status, repeating the last one.
func statusSequence(t *testing.T, hits *atomic.Int32, auth *[]string, mu *sync.Mutex, statuses ...int) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(hits.Add(1))

		mu.Lock()
		*auth = append(*auth, r.Header.Get("Authorization"))
		mu.Unlock()

		status := statuses[min(n, len(statuses))-1]
		w.WriteHeader(status)

		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"name":"default"}`))
		} else {
			_, _ = w.Write([]byte(`{"detail":["AuthorizationException","Token expired"]}`))
		}
	}))
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Do(t *testing.T) {
	t.Parallel()

	t.Run("successful request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/stacks/abc", r.URL.Path)
			assert.Equal(t, "GET", r.Method)
			assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))

			_ = json.NewEncoder(w).Encode(map[string]string{"id": "abc", "name": "default"})
		}))
		defer server.Close()

		client := zenhttp.NewClient(server.URL, newMockTokenManager())

		resp, err := client.Get(context.Background(), "/v1/stacks/abc", nil)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, 1, resp.Attempts)

		var result map[string]string

		require.NoError(t, json.Unmarshal(resp.Body, &result))
		assert.Equal(t, "default", result["name"])
	})

	t.Run("request with query parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "name=default", r.URL.RawQuery)
			assert.Empty(t, r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := zenhttp.NewClient(server.URL, nil)

		resp, err := client.Get(context.Background(), "/v1/stacks", url.Values{"name": []string{"default"}})
		require.NoError(t, err)
		assert.JSONEq(t, `[]`, string(resp.Body))
	})

	t.Run("request with body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "POST", r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(r.Body).Decode(&body)
			assert.Equal(t, "team-a", body["name"])

			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(body)
		}))
		defer server.Close()

		client := zenhttp.NewClient(server.URL, nil)

		resp, err := client.Post(context.Background(), "/v1/teams", map[string]string{"name": "team-a"})
		require.NoError(t, err)
		assert.Equal(t, 201, resp.StatusCode)
	})

	t.Run("no content decodes as null", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := zenhttp.NewClient(server.URL, nil)

		resp, err := client.Delete(context.Background(), "/v1/teams/abc", nil)
		require.NoError(t, err)
		assert.Equal(t, "null", string(resp.Body))
	})

	t.Run("empty ok body is malformed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := zenhttp.NewClient(server.URL, nil)

		_, err := client.Get(context.Background(), "/v1/stacks/abc", nil)
		require.ErrorIs(t, err, zen.ErrMalformedResponse)

		zerr, ok := zen.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "GET", zerr.Method)
		assert.Equal(t, "/v1/stacks/abc", zerr.Path)
	})

	t.Run("error carries request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":["KeyError","Unable to find stack with id abc"]}`))
		}))
		defer server.Close()

		client := zenhttp.NewClient(server.URL, nil)

		_, err := client.Get(context.Background(), "/v1/stacks/abc", nil)
		require.ErrorIs(t, err, zen.ErrNotFound)

		zerr, ok := zen.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "GET", zerr.Method)
		assert.Equal(t, "/v1/stacks/abc", zerr.Path)
		assert.Equal(t, []string{"KeyError", "Unable to find stack with id abc"}, zerr.Detail)
	})

	t.Run("custom headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "custom-value", r.Header.Get("X-Custom-Header"))
			assert.Equal(t, "zen-test/1.0", r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		client := zenhttp.NewClient(server.URL, nil, zenhttp.WithUserAgent("zen-test/1.0"))

		_, err := client.Do(context.Background(), &zenhttp.Request{
			Method:  "GET",
			Path:    "/v1/users",
			Headers: http.Header{"X-Custom-Header": []string{"custom-value"}},
		})
		require.NoError(t, err)
	})

	t.Run("with debug logging", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		logger := &MockLogger{}
		client := zenhttp.NewClient(server.URL, nil, zenhttp.WithLogger(logger), zenhttp.WithDebug(true))

		_, err := client.Get(context.Background(), "/info", nil)
		require.NoError(t, err)

		assert.Contains(t, logger.messages(), "HTTP Request")
		assert.Contains(t, logger.messages(), "HTTP Response")
	})

	t.Run("token acquisition failure", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
		}))
		defer server.Close()

		tokens := newMockTokenManager()
		tokens.err = &zen.Error{Code: zen.CodeAuthentication, StatusCode: 401}

		client := zenhttp.NewClient(server.URL, tokens)

		_, err := client.Get(context.Background(), "/v1/users", nil)
		require.ErrorIs(t, err, zen.ErrAuthentication)
		assert.Equal(t, int32(0), hits.Load())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_AuthRetry(t *testing.T) {
	t.Parallel()

	t.Run("401 then 401 stops after two attempts", func(t *testing.T) {
		t.Parallel()

		var (
			hits atomic.Int32
			auth []string
			mu   sync.Mutex
		)

		server := statusSequence(t, &hits, &auth, &mu, http.StatusUnauthorized, http.StatusUnauthorized)
		defer server.Close()

		tokens := newMockTokenManager()
		client := zenhttp.NewClient(server.URL, tokens)

		_, err := client.Get(context.Background(), "/v1/stacks", nil)
		require.ErrorIs(t, err, zen.ErrAuthorization)
		assert.Equal(t, int32(2), hits.Load())

		logins, invalidations := tokens.counts()
		assert.Equal(t, 2, logins)
		assert.Equal(t, 1, invalidations)
		assert.Equal(t, []string{"Bearer token-1", "Bearer token-2"}, auth)

		zerr, ok := zen.AsError(err)
		require.True(t, ok)
		assert.Equal(t, []string{"AuthorizationException", "Token expired"}, zerr.Detail)
	})

	t.Run("401 then 200 returns the second payload", func(t *testing.T) {
		t.Parallel()

		var (
			hits atomic.Int32
			auth []string
			mu   sync.Mutex
		)

		server := statusSequence(t, &hits, &auth, &mu, http.StatusUnauthorized, http.StatusOK)
		defer server.Close()

		tokens := newMockTokenManager()
		client := zenhttp.NewClient(server.URL, tokens)

		resp, err := client.Get(context.Background(), "/v1/stacks", nil)
		require.NoError(t, err)
		assert.Equal(t, int32(2), hits.Load())
		assert.Equal(t, 2, resp.Attempts)
		assert.JSONEq(t, `{"name":"default"}`, string(resp.Body))
		assert.Equal(t, "Bearer token-2", auth[1])
	})

	t.Run("post body is replayed on retry", func(t *testing.T) {
		t.Parallel()

		var (
			hits   atomic.Int32
			bodies []string
			mu     sync.Mutex
		)

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string

			_ = json.NewDecoder(r.Body).Decode(&body)

			mu.Lock()
			bodies = append(bodies, body["name"])
			mu.Unlock()

			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusUnauthorized)

				return
			}

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"name":"team-a"}`))
		}))
		defer server.Close()

		client := zenhttp.NewClient(server.URL, newMockTokenManager())

		_, err := client.Post(context.Background(), "/v1/teams", map[string]string{"name": "team-a"})
		require.NoError(t, err)
		assert.Equal(t, []string{"team-a", "team-a"}, bodies)
	})

	t.Run("static token is not retried", func(t *testing.T) {
		t.Parallel()

		var (
			hits atomic.Int32
			auth []string
			mu   sync.Mutex
		)

		server := statusSequence(t, &hits, &auth, &mu, http.StatusUnauthorized, http.StatusOK)
		defer server.Close()

		tokens := newMockTokenManager()
		tokens.renewable = false

		client := zenhttp.NewClient(server.URL, tokens)

		_, err := client.Get(context.Background(), "/v1/stacks", nil)
		require.ErrorIs(t, err, zen.ErrAuthorization)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("custom policy bounds attempts", func(t *testing.T) {
		t.Parallel()

		var (
			hits atomic.Int32
			auth []string
			mu   sync.Mutex
		)

		server := statusSequence(t, &hits, &auth, &mu, http.StatusUnauthorized)
		defer server.Close()

		client := zenhttp.NewClient(server.URL, newMockTokenManager(),
			zenhttp.WithRetryPolicy(zen.RetryPolicy{MaxAttempts: 3, WaitMin: time.Millisecond, WaitMax: 5 * time.Millisecond}))

		_, err := client.Get(context.Background(), "/v1/stacks", nil)
		require.ErrorIs(t, err, zen.ErrAuthorization)
		assert.Equal(t, int32(3), hits.Load())
	})

	t.Run("login failure during renewal surfaces", func(t *testing.T) {
		t.Parallel()

		var (
			hits atomic.Int32
			auth []string
			mu   sync.Mutex
		)

		server := statusSequence(t, &hits, &auth, &mu, http.StatusUnauthorized, http.StatusOK)
		defer server.Close()

		tokens := &failingRenewal{MockTokenManager: newMockTokenManager()}
		client := zenhttp.NewClient(server.URL, tokens)

		_, err := client.Get(context.Background(), "/v1/stacks", nil)
		require.ErrorIs(t, err, zen.ErrAuthentication)
		assert.Equal(t, int32(1), hits.Load())
	})
}

// failingRenewal succeeds once, then rejects every later login.
type failingRenewal struct {
	*MockTokenManager
}

func (f *failingRenewal) GetToken(ctx context.Context) (string, error) {
	logins, _ := f.counts()
	if logins > 0 {
		f.mu.Lock()
		current := f.current
		f.mu.Unlock()

		if current == "" {
			return "", &zen.Error{Code: zen.CodeAuthentication, StatusCode: 403}
		}
	}

	return f.MockTokenManager.GetToken(ctx)
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_NoRetry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		expected *zen.Error
	}{
		{name: "not found", status: 404, body: `{"detail":["KeyError","missing"]}`, expected: zen.ErrNotFound},
		{name: "conflict", status: 409, body: `{"detail":["EntityExistsError","dup"]}`, expected: zen.ErrEntityExists},
		{name: "validation", status: 422, body: `{"detail":[{"loc":["body","name"],"msg":"field required"}]}`, expected: zen.ErrValidation},
		{name: "server fault", status: 500, body: `Internal Server Error`, expected: zen.ErrServerFault},
		{name: "unexpected", status: 503, body: `unavailable`, expected: zen.ErrUnexpectedStatus},
		{name: "forbidden", status: 403, body: `{"detail":"not allowed"}`, expected: zen.ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var hits atomic.Int32

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			tokens := newMockTokenManager()
			client := zenhttp.NewClient(server.URL, tokens)

			_, err := client.Get(context.Background(), "/v1/things", nil)
			require.ErrorIs(t, err, tt.expected)
			assert.Equal(t, int32(1), hits.Load())

			_, invalidations := tokens.counts()
			assert.Zero(t, invalidations)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	release := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	t.Run("transport timeout", func(t *testing.T) {
		client := zenhttp.NewClient(server.URL, newMockTokenManager(), zenhttp.WithTimeout(50*time.Millisecond))

		_, err := client.Get(context.Background(), "/v1/stacks", nil)
		require.ErrorIs(t, err, zen.ErrTimeout)
		assert.True(t, zen.IsTimeout(err))
	})

	t.Run("context deadline", func(t *testing.T) {
		client := zenhttp.NewClient(server.URL, newMockTokenManager())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.Get(ctx, "/v1/stacks", nil)
		require.ErrorIs(t, err, zen.ErrTimeout)
	})

	assert.Equal(t, int32(2), hits.Load(), "timeouts are never retried")
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := server.URL
	server.Close()

	client := zenhttp.NewClient(baseURL, nil)

	_, err := client.Get(context.Background(), "/v1/stacks", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "executing request GET /v1/stacks")

	_, isStoreErr := zen.AsError(err)
	assert.False(t, isStoreErr)
}

func TestClient_MalformedSuccess(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer server.Close()

	client := zenhttp.NewClient(server.URL, nil)

	_, err := client.Get(context.Background(), "/v1/stacks", nil)
	require.ErrorIs(t, err, zen.ErrMalformedResponse)
}

func TestClient_Interceptors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)

			return
		}

		assert.Equal(t, "abc", r.Header.Get("X-Trace"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	collector := zen.NewMetricsCollector()
	chain := zen.NewInterceptorChain().
		WithMetrics(collector).
		AddRequestInterceptor(zen.HeaderInterceptor(map[string]string{"X-Trace": "abc"}))

	client := zenhttp.NewClient(server.URL, newMockTokenManager(), zenhttp.WithInterceptors(chain))

	_, err := client.Get(context.Background(), "/v1/users", nil)
	require.NoError(t, err)

	metrics := collector.GetMetrics("GET /v1/users")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(1), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalRetries)

	t.Run("rejection stops the request", func(t *testing.T) {
		rejecting := zen.NewInterceptorChain().AddRequestInterceptor(func(ctx context.Context, req *zen.Request) error {
			return errors.New("blocked")
		})

		client := zenhttp.NewClient(server.URL, nil, zenhttp.WithInterceptors(rejecting))
		before := hits.Load()

		_, err := client.Get(context.Background(), "/v1/users", nil)
		require.ErrorIs(t, err, zen.ErrInterceptorRejected)
		assert.Equal(t, before, hits.Load())
	})
}
