package zen

import (
	"time"

	"github.com/google/uuid"
)

// Resource holds the server-assigned fields shared by every entity.
type Resource struct {
	ID      uuid.UUID `json:"id,omitzero"      yaml:"id"`
	Created time.Time `json:"created,omitzero" yaml:"created"`
	Updated time.Time `json:"updated,omitzero" yaml:"updated"`
}

// Scope is the ownership of a project-scoped entity.
type Scope struct {
	Project uuid.UUID `json:"project" yaml:"project"`
	User    uuid.UUID `json:"user"    yaml:"user"`
}

// ComponentType is the kind of capability a stack component provides.
type ComponentType string

// Stack component types.
const (
	ComponentTypeOrchestrator      ComponentType = "orchestrator"
	ComponentTypeArtifactStore     ComponentType = "artifact_store"
	ComponentTypeContainerRegistry ComponentType = "container_registry"
	ComponentTypeSecretsManager    ComponentType = "secrets_manager"
	ComponentTypeStepOperator      ComponentType = "step_operator"
	ComponentTypeFeatureStore      ComponentType = "feature_store"
	ComponentTypeExperimentTracker ComponentType = "experiment_tracker"
	ComponentTypeModelDeployer     ComponentType = "model_deployer"
	ComponentTypeAlerter           ComponentType = "alerter"
	ComponentTypeAnnotator         ComponentType = "annotator"
	ComponentTypeDataValidator     ComponentType = "data_validator"
)

// ComponentTypes lists every known component type.
func ComponentTypes() []ComponentType {
	return []ComponentType{
		ComponentTypeOrchestrator,
		ComponentTypeArtifactStore,
		ComponentTypeContainerRegistry,
		ComponentTypeSecretsManager,
		ComponentTypeStepOperator,
		ComponentTypeFeatureStore,
		ComponentTypeExperimentTracker,
		ComponentTypeModelDeployer,
		ComponentTypeAlerter,
		ComponentTypeAnnotator,
		ComponentTypeDataValidator,
	}
}

// ExecutionStatus is the state of a pipeline run or step run.
type ExecutionStatus string

// Execution statuses.
const (
	StatusFailed    ExecutionStatus = "failed"
	StatusCompleted ExecutionStatus = "completed"
	StatusRunning   ExecutionStatus = "running"
	StatusCached    ExecutionStatus = "cached"
)

// Finished reports whether the status is terminal.
func (s ExecutionStatus) Finished() bool {
	return s == StatusFailed || s == StatusCompleted || s == StatusCached
}

// SubjectKind tells whether a role assignment targets a user or a team.
type SubjectKind string

// Role assignment subject kinds.
const (
	SubjectUser SubjectKind = "user"
	SubjectTeam SubjectKind = "team"
)

// ServerInfo describes the server the store talks to.
type ServerInfo struct {
	ID             uuid.UUID `json:"id"                        yaml:"id"`
	Version        string    `json:"version"                   yaml:"version"`
	DeploymentType string    `json:"deployment_type,omitempty" yaml:"deployment_type,omitempty"`
	DatabaseType   string    `json:"database_type,omitempty"   yaml:"database_type,omitempty"`
}

// TokenInfo is what can be read from the current bearer token without verifying it.
type TokenInfo struct {
	Subject   string    `json:"subject,omitempty"    yaml:"subject,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitzero"   yaml:"issued_at,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitzero"  yaml:"expires_at,omitempty"`
	Renewable bool      `json:"renewable"            yaml:"renewable"`
}

// Expired reports whether the token carries an expiry that has passed.
func (t *TokenInfo) Expired() bool {
	return !t.ExpiresAt.IsZero() && time.Now().After(t.ExpiresAt)
}
