package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/hashicorp/go-retryablehttp"
)

// TokenManager supplies the bearer token of every request.
type TokenManager interface {
	// GetToken returns the current token, acquiring one if needed. An empty
	// token sends the request unauthenticated.
	GetToken(ctx context.Context) (string, error)
	// Invalidate drops the current token.
	Invalidate()
	// Renewable reports whether a token obtained after Invalidate can differ
	// from the rejected one.
	Renewable() bool
}

// Request is a store call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers http.Header
}

// Response is a successful store response. Body is valid JSON.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Attempts   int
}

// Client dispatches requests to the store: it attaches the session token,
// re-issues a request once the session is renewed after a 401, and maps
// every response through Translate.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager TokenManager
	logger       zen.Logger
	debug        bool
	userAgent    string
	interceptors *zen.InterceptorChain
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger zen.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryPolicy bounds the attempts of a request failing with 401.
func WithRetryPolicy(policy zen.RetryPolicy) Option {
	return func(c *Client) {
		if policy.MaxAttempts < 1 {
			policy = zen.DefaultRetryPolicy()
		}

		c.httpClient.RetryMax = policy.MaxAttempts - 1
		c.httpClient.RetryWaitMin = policy.WaitMin
		c.httpClient.RetryWaitMax = policy.WaitMax
	}
}

// WithTimeout bounds each transport call.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient.HTTPClient = httpClient
		}
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *zen.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

type attemptsKey struct{}

// NewClient creates a dispatcher for baseURL. tokenManager may be nil for
// unauthenticated access.
func NewClient(baseURL string, tokenManager TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{Timeout: constants.DefaultHTTPTimeout}
	retryClient.Logger = nil
	retryClient.RetryMax = constants.DefaultAuthAttempts - 1
	retryClient.RetryWaitMin = 0
	retryClient.RetryWaitMax = 0
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{
		baseURL:      baseURL,
		httpClient:   retryClient,
		tokenManager: tokenManager,
		userAgent:    "zen-go-client/1.0",
	}

	for _, opt := range opts {
		opt(c)
	}

	retryClient.CheckRetry = c.checkRetry
	retryClient.PrepareRetry = c.prepareRetry
	retryClient.RequestLogHook = countAttempt

	if c.debug && c.logger != nil {
		retryClient.Logger = &leveledLogger{logger: c.logger}
	}

	return c
}

// checkRetry re-issues only 401 responses, and only when the session can be renewed.
func (c *Client) checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil || resp == nil {
		return false, nil
	}

	if resp.StatusCode != http.StatusUnauthorized || c.tokenManager == nil {
		return false, nil
	}

	return c.tokenManager.Renewable(), nil
}

// prepareRetry renews the session before a request is re-issued.
func (c *Client) prepareRetry(req *http.Request) error {
	c.tokenManager.Invalidate()

	if c.logger != nil {
		c.logger.Info("Session rejected, renewing token", map[string]interface{}{
			"method": req.Method,
			"path":   req.URL.Path,
		})
	}

	return c.authorize(req.Context(), req.Header)
}

func (c *Client) authorize(ctx context.Context, header http.Header) error {
	if c.tokenManager == nil {
		return nil
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return err
	}

	if token == "" {
		header.Del("Authorization")

		return nil
	}

	header.Set("Authorization", "Bearer "+token)

	return nil
}

func countAttempt(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if counter, ok := req.Context().Value(attemptsKey{}).(*atomic.Int32); ok {
		counter.Store(int32(attempt + 1)) //nolint:gosec // attempts are bounded by the retry policy
	}
}

// Do dispatches req and returns its decoded response or a *zen.Error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	var body []byte

	if req.Body != nil {
		var err error

		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	intercepted := &zen.Request{
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query,
		Headers: req.Headers.Clone(),
		Body:    body,
	}

	if c.interceptors != nil {
		err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, err
		}
	}

	resp, attempts, err := c.send(ctx, intercepted)

	if c.interceptors != nil {
		view := &zen.Response{Attempts: attempts, Error: err}
		if resp != nil {
			view.StatusCode = resp.StatusCode
			view.Headers = resp.Headers
			view.Body = resp.Body
		} else if zerr, ok := zen.AsError(err); ok {
			view.StatusCode = zerr.StatusCode
		}

		interceptErr := c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, view)
		if err == nil && interceptErr != nil {
			return nil, interceptErr
		}
	}

	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, req *zen.Request) (*Response, int, error) {
	counter := &atomic.Int32{}
	ctx = context.WithValue(ctx, attemptsKey{}, counter)

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var body interface{}
	if req.Body != nil {
		body = req.Body
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, fullURL, body)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	err = c.authorize(ctx, httpReq.Header)
	if err != nil {
		return nil, 0, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    fullURL,
			"body":   string(req.Body),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	attempts := int(counter.Load())

	if err != nil {
		if httpResp != nil {
			_ = httpResp.Body.Close()
		}

		return nil, attempts, c.transportError(req, err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, attempts, c.transportError(req, fmt.Errorf("reading response body: %w", err))
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   httpResp.StatusCode,
			"attempts": attempts,
			"body":     string(respBody),
		})
	}

	decoded, err := Translate(httpResp.StatusCode, respBody)
	if err != nil {
		var zerr *zen.Error
		if errors.As(err, &zerr) {
			zerr.Method = req.Method
			zerr.Path = req.Path
		}

		return nil, attempts, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       decoded,
		Attempts:   attempts,
	}, attempts, nil
}

// transportError maps a failed transport call. Timeouts get their own code;
// session errors raised while renewing a token pass through.
func (c *Client) transportError(req *zen.Request, err error) error {
	if zerr, ok := zen.AsError(err); ok {
		return zerr
	}

	if isTimeout(err) {
		return &zen.Error{Code: zen.CodeTimeout, Method: req.Method, Path: req.Path, Err: err}
	}

	return fmt.Errorf("executing request %s %s: %w", req.Method, req.Path, err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// Get performs a GET request and returns the decoded body.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Query: query})
}

// BaseURL returns the server address requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

