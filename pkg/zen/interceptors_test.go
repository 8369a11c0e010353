package zen_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *recordingLogger) record(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, level+":"+msg)
}

func (l *recordingLogger) Debug(msg string, _ map[string]interface{}) { l.record("debug", msg) }
func (l *recordingLogger) Info(msg string, _ map[string]interface{})  { l.record("info", msg) }
func (l *recordingLogger) Warn(msg string, _ map[string]interface{})  { l.record("warn", msg) }
func (l *recordingLogger) Error(msg string, _ map[string]interface{}) { l.record("error", msg) }

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	chain := zen.NewInterceptorChain()
	ctx := context.Background()

	var order []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *zen.Request) error {
		order = append(order, "first")

		return nil
	}).AddRequestInterceptor(func(ctx context.Context, req *zen.Request) error {
		order = append(order, "second")

		return nil
	}).AddResponseInterceptor(func(ctx context.Context, req *zen.Request, resp *zen.Response) error {
		order = append(order, "response")

		return nil
	})

	req := &zen.Request{Method: "GET", Path: "/v1/stacks"}

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &zen.Response{StatusCode: 200}))

	assert.Equal(t, []string{"first", "second", "response"}, order)
}

func TestInterceptorChain_Rejection(t *testing.T) {
	t.Parallel()

	chain := zen.NewInterceptorChain()
	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *zen.Request) error {
		return errors.New("read-only mode")
	}).AddRequestInterceptor(func(ctx context.Context, req *zen.Request) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &zen.Request{Method: "DELETE"})
	require.ErrorIs(t, err, zen.ErrInterceptorRejected)
	assert.Contains(t, err.Error(), "read-only mode")
	assert.False(t, called)
}

func TestHeaderInterceptor(t *testing.T) {
	t.Parallel()

	interceptor := zen.HeaderInterceptor(map[string]string{
		"X-Custom-Header": "custom-value",
		"X-Request-ID":    "123456",
	})

	req := &zen.Request{Method: "GET", Path: "/test"}

	require.NoError(t, interceptor(context.Background(), req))
	assert.Equal(t, "custom-value", req.Headers.Get("X-Custom-Header"))
	assert.Equal(t, "123456", req.Headers.Get("X-Request-ID"))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	chain := zen.NewInterceptorChain().WithLogging(logger)
	ctx := context.Background()
	req := &zen.Request{Method: "GET", Path: "/v1/users"}

	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &zen.Response{StatusCode: 200, Attempts: 1}))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &zen.Response{
		StatusCode: 404,
		Attempts:   1,
		Error:      &zen.Error{Code: zen.CodeNotFound},
	}))

	assert.Equal(t, []string{
		"debug:Store Request",
		"debug:Store Response",
		"error:Store Response Error",
	}, logger.entries)
}

func TestMetricsCollector(t *testing.T) {
	t.Parallel()

	collector := zen.NewMetricsCollector()
	chain := zen.NewInterceptorChain().WithMetrics(collector)
	ctx := context.Background()

	var notified []string

	collector.SetOnChange(func(endpoint string, metrics zen.Metrics) {
		notified = append(notified, endpoint)
	})

	run := func(resp *zen.Response) {
		req := &zen.Request{Method: "GET", Path: "/v1/stacks"}
		require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
		time.Sleep(time.Millisecond)
		require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, resp))
	}

	run(&zen.Response{StatusCode: 200, Attempts: 1})
	run(&zen.Response{StatusCode: 200, Attempts: 2})
	run(&zen.Response{StatusCode: 409, Attempts: 1, Error: &zen.Error{Code: zen.CodeStackExists}})

	metrics := collector.GetMetrics("GET /v1/stacks")
	require.NotNil(t, metrics)
	assert.Equal(t, int64(3), metrics.TotalRequests)
	assert.Equal(t, int64(1), metrics.TotalErrors)
	assert.Equal(t, int64(1), metrics.TotalRetries)
	assert.Equal(t, int64(1), metrics.ErrorsByCode[zen.CodeStackExists])
	assert.Positive(t, metrics.AverageLatency)
	assert.Len(t, notified, 3)
	assert.Equal(t, []string{"GET /v1/stacks"}, collector.Endpoints())
	assert.Nil(t, collector.GetMetrics("GET /v1/users"))
}

func TestMetricsCollector_Concurrent(t *testing.T) {
	t.Parallel()

	collector := zen.NewMetricsCollector()
	chain := zen.NewInterceptorChain().WithMetrics(collector)
	ctx := context.Background()

	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			req := &zen.Request{Method: "POST", Path: "/v1/teams"}
			_ = chain.ExecuteRequestInterceptors(ctx, req)
			_ = chain.ExecuteResponseInterceptors(ctx, req, &zen.Response{StatusCode: 201, Attempts: 1})
		}()
	}

	wg.Wait()

	assert.Equal(t, int64(20), collector.GetMetrics("POST /v1/teams").TotalRequests)
}
