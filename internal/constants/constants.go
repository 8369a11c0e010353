package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for store requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for the login exchange and server probes.
	ShortHTTPTimeout = 10 * time.Second
)

// Session defaults.
const (
	// DefaultAuthAttempts is the number of attempts of a request that keeps failing with 401.
	DefaultAuthAttempts = 2

	// DefaultTokenCacheTTL bounds how long a shared token without an expiry claim is kept.
	DefaultTokenCacheTTL = 30 * time.Minute

	// TokenCacheKeyPrefix namespaces token entries in a shared cache.
	TokenCacheKeyPrefix = "zen.token."
)

// API paths.
const (
	// DefaultAPIVersion prefixes every resource path.
	DefaultAPIVersion = "/v1"

	// LoginPath is the credential exchange endpoint, outside the versioned prefix.
	LoginPath = "/login"

	// InfoPath serves server information.
	InfoPath = "/info"
)

// Resource collections under the versioned prefix.
const (
	PathStacks          = "/stacks"
	PathComponents      = "/components"
	PathComponentTypes  = "/component-types"
	PathFlavors         = "/flavors"
	PathProjects        = "/projects"
	PathUsers           = "/users"
	PathTeams           = "/teams"
	PathRoles           = "/roles"
	PathRoleAssignments = "/role_assignments"
	PathRepositories    = "/repositories"
	PathPipelines       = "/pipelines"
	PathRuns            = "/runs"
	PathSteps           = "/steps"
	PathArtifacts       = "/artifacts"
)

// Sub-resource path segments.
const (
	SegmentDefaultStack  = "/default-stack"
	SegmentInviteToken   = "/invite_token"
	SegmentGraph         = "/graph"
	SegmentRuntimeConfig = "/runtime-configuration"
	SegmentSideEffects   = "/component-side-effects"
	SegmentConfiguration = "/configuration"
	SegmentInputs        = "/inputs"
	SegmentOutputs       = "/outputs"
	SegmentStatus        = "/status"
)

// Cache defaults.
const (
	// DefaultCacheSize is the default number of entries of a memory cache.
	DefaultCacheSize = 1000
)

// Display constants.
const (
	// NotAvailable marks an empty table cell.
	NotAvailable = "N/A"

	// MaskedSecret replaces secrets in output.
	MaskedSecret = "***"

	// TokenPreviewLength is how much of a token is shown before masking.
	TokenPreviewLength = 12
)

// Format constants.
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatTable = "table"
)

// Confirmation constants.
const (
	// ConfirmationYes is the accepted answer of delete prompts.
	ConfirmationYes = "yes"
)
