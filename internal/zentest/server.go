// Package zentest provides an in-process fake of the store's REST API for tests.
//
// The fake keeps its state in an in-memory database, issues JWT bearer tokens
// at /login and answers errors in the server's detail-list format, so that
// clients can be exercised end to end without a real server.
package zentest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Default credentials accepted by the fake.
const (
	DefaultUsername = "default"
	DefaultPassword = "zenml"
	DefaultVersion  = "0.21.1"
)

var signingKey = []byte("zentest")

// Server is a running fake.
type Server struct {
	*httptest.Server

	ID       uuid.UUID
	Username string
	Password string
	Version  string
	TokenTTL time.Duration

	echo  *echo.Echo
	store *store

	mu         sync.Mutex
	tokens     map[string]bool
	issued     int
	rejectNext int
	hits       map[string]int
}

// Option configures a Server.
type Option func(*Server)

// WithCredentials sets the accepted username and password.
func WithCredentials(username, password string) Option {
	return func(s *Server) {
		s.Username = username
		s.Password = password
	}
}

// WithVersion sets the version reported at /info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.Version = version
	}
}

// WithTokenTTL sets the expiry claim of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.TokenTTL = ttl
	}
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		ID:       uuid.New(),
		Username: DefaultUsername,
		Password: DefaultPassword,
		Version:  DefaultVersion,
		TokenTTL: time.Hour,
		store:    newStore(),
		tokens:   make(map[string]bool),
		hits:     make(map[string]int),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.echo = s.routes()
	s.Server = httptest.NewServer(s.echo)
	t.Cleanup(s.Close)

	return s
}

// Login issues a token outside of the HTTP API, as if the user had logged in.
func (s *Server) Login() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.issue()
}

func (s *Server) issue() string {
	s.issued++
	now := time.Now()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": s.Username,
		"jti": fmt.Sprintf("token-%d", s.issued),
		"iat": now.Unix(),
		"exp": now.Add(s.TokenTTL).Unix(),
	}).SignedString(signingKey)
	if err != nil {
		panic(fmt.Sprintf("zentest: signing token: %v", err))
	}

	s.tokens[token] = true

	return token
}

// ExpireTokens revokes every issued token.
func (s *Server) ExpireTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = make(map[string]bool)
}

// RejectNext answers the next n authenticated requests with 401 whatever token they carry.
func (s *Server) RejectNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rejectNext = n
}

// Logins returns how many tokens were issued at /login.
func (s *Server) Logins() int {
	return s.Hits(http.MethodPost, constants.LoginPath)
}

// Hits returns how many requests reached the route registered as method and path,
// e.g. Hits("GET", "/v1/stacks/:id").
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hits[method+" "+path]
}

func (s *Server) authorized(header string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rejectNext > 0 {
		s.rejectNext--

		return false
	}

	token, ok := strings.CutPrefix(header, "Bearer ")

	return ok && s.tokens[token]
}

func (s *Server) countHits(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		s.hits[c.Request().Method+" "+c.Path()]++
		s.mu.Unlock()

		return next(c)
	}
}

func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.authorized(c.Request().Header.Get(echo.HeaderAuthorization)) {
			return detail(c, http.StatusUnauthorized, "AuthorizationException", "Authentication error: invalid or expired token")
		}

		return next(c)
	}
}

func (s *Server) login(c echo.Context) error {
	if c.FormValue("username") != s.Username || c.FormValue("password") != s.Password {
		return detail(c, http.StatusUnauthorized, "AuthorizationException", "Incorrect username or password")
	}

	s.mu.Lock()
	token := s.issue()
	s.mu.Unlock()

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

func (s *Server) info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"id":              s.ID.String(),
		"version":         s.Version,
		"deployment_type": "local",
		"database_type":   "sqlite",
	})
}

// detail answers with the server's error body format.
func detail(c echo.Context, status int, parts ...string) error {
	return c.JSON(status, map[string][]string{"detail": parts})
}

func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = detail(c, httpErr.Code, "HTTPException", fmt.Sprint(httpErr.Message))

		return
	}

	_ = detail(c, http.StatusInternalServerError, "RuntimeError", err.Error())
}
