package constants

import "errors"

// Configuration errors.
var (
	ErrNoServerConfigured  = errors.New("no server configured, use 'zen login' or set ZEN_URL")
	ErrNotLoggedIn         = errors.New("no credentials or token configured, use 'zen login'")
	ErrServerNotConfigured = errors.New("server is not the configured one")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)

// Validation errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format, use table, json or yaml")
	ErrInvalidUUID         = errors.New("invalid id, expected a UUID")
	ErrInvalidKeyValue     = errors.New("invalid key=value pair")
	ErrInvalidComponentRef = errors.New("invalid component reference, expected type=id")
	ErrInvalidSubjectKind  = errors.New("--user or --team is required, not both")
	ErrFlavorTypeRequired  = errors.New("--type is required to look up a flavor by name")
)

// Operation errors.
var (
	ErrNameOrIDRequired = errors.New("a name or id argument is required")
	ErrNotRenewable     = errors.New("session token cannot be renewed without a password, set ZEN_PASSWORD or use 'zen login'")
	ErrNotFound         = errors.New("not found")
	ErrAmbiguous        = errors.New("ambiguous name")
)
