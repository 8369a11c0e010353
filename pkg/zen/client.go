package zen

import (
	"context"
	"time"
)

// StackClients provides access to stack configuration resources.
type StackClients interface {
	Stacks() StacksClient
	Components() ComponentsClient
	Flavors() FlavorsClient
}

// AccessClients provides access to user management resources.
type AccessClients interface {
	Users() UsersClient
	Teams() TeamsClient
	Roles() RolesClient
}

// WorkspaceClients provides access to project scoped resources.
type WorkspaceClients interface {
	Projects() ProjectsClient
	Repositories() RepositoriesClient
}

// ExecutionClients provides access to pipelines and their executions.
type ExecutionClients interface {
	Pipelines() PipelinesClient
	Runs() RunsClient
	Steps() StepsClient
	Artifacts() ArtifactsClient
}

// SessionClient exposes the authenticated session of a store.
type SessionClient interface {
	// Invalidate drops the cached bearer token. The next call logs in again.
	Invalidate()
	// TokenInfo returns the claims of the current token, logging in if needed.
	TokenInfo(ctx context.Context) (*TokenInfo, error)
}

// InfoClient provides access to server information.
type InfoClient interface {
	GetServerInfo(ctx context.Context) (*ServerInfo, error)
}

// Store is the metadata store: CRUD over every control-plane entity kind.
// The REST implementation lives in internal/client and is built by
// pkg/zenclient.New; other backends implement the same contract.
type Store interface {
	StackClients
	AccessClients
	WorkspaceClients
	ExecutionClients
	SessionClient
	InfoClient
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// RetryPolicy bounds how a request is re-issued after an authorization
// failure. Only 401 responses are retried, and only when the session can be
// renewed; timeouts, conflicts, validation and server errors never are.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts including the first one.
	MaxAttempts int
	// WaitMin and WaitMax bound the backoff between attempts.
	WaitMin time.Duration
	WaitMax time.Duration
}

// DefaultRetryPolicy re-issues a request exactly once, immediately.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 2}
}

// Config represents the configuration of a REST store.
//
// # Authentication
//
//  1. Username/Password: exchanged at the login endpoint for a bearer token,
//     which is cached until a 401 invalidates it.
//  2. AccessToken: used directly. When combined with Username/Password the
//     token is tried first and the password is used once it is rejected.
//  3. No credentials: requests are sent without authentication.
type Config struct {
	// URL is the server address, http:// or https://. A trailing slash is stripped.
	URL string

	Username    string
	Password    string
	AccessToken string

	// APIVersion is the path prefix of resource endpoints, "/v1" when empty.
	APIVersion string

	// HTTPTimeout bounds each transport call. A timeout surfaces as ErrTimeout
	// and is never retried.
	HTTPTimeout time.Duration

	// Retry is the auth-failure retry policy. Zero value means DefaultRetryPolicy.
	Retry RetryPolicy

	// Debug logs every request and response when a Logger is set.
	Debug  bool
	Logger Logger

	UserAgent string

	// TokenCache optionally shares bearer tokens between store instances.
	TokenCache Cache

	// VerifyOnConnect makes construction fail fast by listing users.
	VerifyOnConnect bool

	// ServerVersionConstraint is a semver constraint the server version must satisfy.
	ServerVersionConstraint string

	// Interceptors run around every dispatched request.
	Interceptors *InterceptorChain
}
