package zen

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is the machine-readable kind of a store error.
type ErrorCode string

const (
	// CodeAuthentication means the credential exchange with the login endpoint was rejected.
	CodeAuthentication ErrorCode = "AUTHENTICATION_FAILED"

	// CodeAuthorization means the session is expired or invalid (HTTP 401).
	CodeAuthorization ErrorCode = "UNAUTHORIZED"

	// CodeNotFound is the generic 404.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeDoesNotExist is a 404 the server explicitly attributes to a missing entity.
	CodeDoesNotExist ErrorCode = "DOES_NOT_EXIST"

	// CodeConflict is the generic 409.
	CodeConflict ErrorCode = "CONFLICT"

	// CodeEntityExists means a uniqueness constraint was violated.
	CodeEntityExists ErrorCode = "ENTITY_EXISTS"

	// CodeStackExists means a stack with the same name already exists in scope.
	CodeStackExists ErrorCode = "STACK_EXISTS"

	// CodeComponentExists means a stack component with the same name already exists in scope.
	CodeComponentExists ErrorCode = "COMPONENT_EXISTS"

	// CodeValidation is a 422.
	CodeValidation ErrorCode = "VALIDATION_FAILED"

	// CodeServerFault is a 500.
	CodeServerFault ErrorCode = "SERVER_FAULT"

	// CodeMalformedResponse means a success response could not be parsed.
	CodeMalformedResponse ErrorCode = "MALFORMED_RESPONSE"

	// CodeUnexpectedStatus covers every status without a dedicated rule.
	CodeUnexpectedStatus ErrorCode = "UNEXPECTED_STATUS"

	// CodeTimeout means the transport call exceeded its deadline.
	CodeTimeout ErrorCode = "TIMEOUT"
)

// parentCodes links an error kind to the broader family it belongs to.
var parentCodes = map[ErrorCode]ErrorCode{
	CodeDoesNotExist:    CodeNotFound,
	CodeStackExists:     CodeEntityExists,
	CodeComponentExists: CodeEntityExists,
	CodeEntityExists:    CodeConflict,
}

var codeTitles = map[ErrorCode]string{
	CodeAuthentication:    "authentication failed",
	CodeAuthorization:     "unauthorized",
	CodeNotFound:          "not found",
	CodeDoesNotExist:      "does not exist",
	CodeConflict:          "conflict",
	CodeEntityExists:      "entity exists",
	CodeStackExists:       "stack exists",
	CodeComponentExists:   "stack component exists",
	CodeValidation:        "validation failed",
	CodeServerFault:       "server error",
	CodeMalformedResponse: "malformed response",
	CodeUnexpectedStatus:  "unexpected status",
	CodeTimeout:           "request timed out",
}

// Title returns a short human readable name for the code.
func (c ErrorCode) Title() string {
	if title, ok := codeTitles[c]; ok {
		return title
	}

	return strings.ToLower(strings.ReplaceAll(string(c), "_", " "))
}

// Known reports whether c is one of the codes defined by this package.
func (c ErrorCode) Known() bool {
	_, ok := codeTitles[c]

	return ok
}

// Is reports whether c equals target or belongs to the target's family.
func (c ErrorCode) Is(target ErrorCode) bool {
	for code := c; code != ""; code = parentCodes[code] {
		if code == target {
			return true
		}
	}

	return false
}

// Error is the typed error returned by every store operation.
type Error struct {
	Code       ErrorCode `json:"code"                  yaml:"code"`
	StatusCode int       `json:"status_code,omitempty" yaml:"status_code,omitempty"`
	Detail     []string  `json:"detail,omitempty"      yaml:"detail,omitempty"`
	Body       string    `json:"body,omitempty"        yaml:"body,omitempty"`
	Method     string    `json:"method,omitempty"      yaml:"method,omitempty"`
	Path       string    `json:"path,omitempty"        yaml:"path,omitempty"`
	Err        error     `json:"-"                     yaml:"-"`
}

// Message returns the server's stated reason: the detail list joined with ": ",
// or the raw body when no detail list was sent.
func (e *Error) Message() string {
	if len(e.Detail) > 0 {
		return strings.Join(e.Detail, ": ")
	}

	if e.Body != "" {
		return strings.TrimSpace(e.Body)
	}

	if e.Err != nil {
		return e.Err.Error()
	}

	return ""
}

// Error implements the error interface.
func (e *Error) Error() string {
	var builder strings.Builder

	builder.WriteString(e.Code.Title())

	if e.StatusCode != 0 {
		fmt.Fprintf(&builder, " (%d)", e.StatusCode)
	}

	if e.Method != "" {
		fmt.Fprintf(&builder, " %s %s", e.Method, e.Path)
	}

	if msg := e.Message(); msg != "" {
		builder.WriteString(": ")
		builder.WriteString(msg)
	}

	return builder.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches sentinel errors by code, honoring error families.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Code.Is(t.Code)
}

// Sentinel errors for errors.Is.
var (
	ErrAuthentication    = &Error{Code: CodeAuthentication}
	ErrAuthorization     = &Error{Code: CodeAuthorization}
	ErrNotFound          = &Error{Code: CodeNotFound}
	ErrDoesNotExist      = &Error{Code: CodeDoesNotExist}
	ErrConflict          = &Error{Code: CodeConflict}
	ErrEntityExists      = &Error{Code: CodeEntityExists}
	ErrStackExists       = &Error{Code: CodeStackExists}
	ErrComponentExists   = &Error{Code: CodeComponentExists}
	ErrValidation        = &Error{Code: CodeValidation}
	ErrServerFault       = &Error{Code: CodeServerFault}
	ErrMalformedResponse = &Error{Code: CodeMalformedResponse}
	ErrUnexpectedStatus  = &Error{Code: CodeUnexpectedStatus}
	ErrTimeout           = &Error{Code: CodeTimeout}
)

// Static errors for err113 compliance.
var (
	ErrConfigRequired      = errors.New("config is required")
	ErrURLRequired         = errors.New("server URL is required")
	ErrInvalidURL          = errors.New("invalid URL for REST store")
	ErrNoCredentials       = errors.New("no credentials configured")
	ErrIncompatibleServer  = errors.New("server version is not compatible")
	ErrAmbiguousFlavor     = errors.New("more than one flavor matches")
	ErrAmbiguousName       = errors.New("more than one entity matches")
	ErrInvalidSubject      = errors.New("role assignment needs exactly one of user or team")
	ErrNotImplemented      = errors.New("not implemented")
	ErrCacheKeyNotFound    = errors.New("key not found")
	ErrCacheEntryExpired   = errors.New("entry expired")
	ErrCacheDisabled       = errors.New("cache disabled")
	ErrNATSConfigRequired  = errors.New("NATS configuration required for NATS cache")
	ErrUnsupportedCache    = errors.New("unsupported cache type")
	ErrKeyNotFoundInChain  = errors.New("key not found in any cache")
	ErrInterceptorRejected = errors.New("request rejected by interceptor")
)

// AsError extracts the *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var zerr *Error
	if errors.As(err, &zerr) {
		return zerr, true
	}

	return nil, false
}

// IsNotFound reports whether err is a NotFound or DoesNotExist error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err belongs to the 409 family.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsAlreadyExists reports whether err is a uniqueness violation.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrEntityExists)
}

// IsUnauthorized reports whether err is an authorization or authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrAuthorization) || errors.Is(err, ErrAuthentication)
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}
