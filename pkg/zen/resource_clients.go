package zen

import (
	"context"

	"github.com/google/uuid"
)

// StacksClient manages stacks and the per-project default stack.
type StacksClient interface {
	List(ctx context.Context, filter *StackFilter) ([]Stack, error)
	Get(ctx context.Context, id uuid.UUID) (*Stack, error)
	Create(ctx context.Context, stack *Stack) (*Stack, error)
	Update(ctx context.Context, id uuid.UUID, stack *Stack) (*Stack, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetDefault(ctx context.Context, project uuid.UUID) (*Stack, error)
	SetDefault(ctx context.Context, project, stack uuid.UUID) (*Stack, error)
}

// ComponentsClient manages stack components.
type ComponentsClient interface {
	List(ctx context.Context, filter *ComponentFilter) ([]Component, error)
	Get(ctx context.Context, id uuid.UUID) (*Component, error)
	Create(ctx context.Context, component *Component) (*Component, error)
	Update(ctx context.Context, id uuid.UUID, component *Component) (*Component, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListTypes(ctx context.Context) ([]ComponentType, error)
}

// FlavorsClient manages component flavors.
type FlavorsClient interface {
	List(ctx context.Context, filter *FlavorFilter) ([]Flavor, error)
	Get(ctx context.Context, id uuid.UUID) (*Flavor, error)
	Create(ctx context.Context, flavor *Flavor) (*Flavor, error)
	Update(ctx context.Context, id uuid.UUID, flavor *Flavor) (*Flavor, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Register(ctx context.Context, registration *FlavorRegistration) (*Flavor, error)
	ListByType(ctx context.Context, componentType ComponentType) ([]Flavor, error)
	GetByNameAndType(ctx context.Context, name string, componentType ComponentType) (*Flavor, error)
}

// ProjectsClient manages projects.
type ProjectsClient interface {
	List(ctx context.Context, filter *NameFilter) ([]Project, error)
	Get(ctx context.Context, id uuid.UUID) (*Project, error)
	Create(ctx context.Context, project *Project) (*Project, error)
	Update(ctx context.Context, id uuid.UUID, project *Project) (*Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UsersClient manages users and their invitations.
type UsersClient interface {
	List(ctx context.Context, filter *NameFilter) ([]User, error)
	Get(ctx context.Context, id uuid.UUID) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, id uuid.UUID, user *User) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	IssueInviteToken(ctx context.Context, id uuid.UUID) (string, error)
	InvalidateInviteToken(ctx context.Context, id uuid.UUID) error
	ListTeams(ctx context.Context, id uuid.UUID) ([]Team, error)
}

// TeamsClient manages teams and their membership.
type TeamsClient interface {
	List(ctx context.Context, filter *NameFilter) ([]Team, error)
	Get(ctx context.Context, id uuid.UUID) (*Team, error)
	Create(ctx context.Context, team *Team) (*Team, error)
	Update(ctx context.Context, id uuid.UUID, team *Team) (*Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddUser(ctx context.Context, team, user uuid.UUID) error
	RemoveUser(ctx context.Context, team, user uuid.UUID) error
	ListUsers(ctx context.Context, team uuid.UUID) ([]User, error)
	ListForUser(ctx context.Context, user uuid.UUID) ([]Team, error)
}

// RolesClient manages roles and role assignments.
type RolesClient interface {
	List(ctx context.Context, filter *NameFilter) ([]Role, error)
	Get(ctx context.Context, id uuid.UUID) (*Role, error)
	Create(ctx context.Context, role *Role) (*Role, error)
	Update(ctx context.Context, id uuid.UUID, role *Role) (*Role, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Assign(ctx context.Context, grant RoleGrant) (*RoleAssignment, error)
	Revoke(ctx context.Context, grant RoleGrant) error
	ListAssignments(ctx context.Context, filter *RoleAssignmentFilter) ([]RoleAssignment, error)
}

// RepositoriesClient manages code repositories connected to projects.
type RepositoriesClient interface {
	List(ctx context.Context, project uuid.UUID, filter *RepositoryFilter) ([]Repository, error)
	Get(ctx context.Context, id uuid.UUID) (*Repository, error)
	Create(ctx context.Context, repository *Repository) (*Repository, error)
	Update(ctx context.Context, id uuid.UUID, repository *Repository) (*Repository, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PipelinesClient manages pipelines.
type PipelinesClient interface {
	List(ctx context.Context, filter *PipelineFilter) ([]Pipeline, error)
	Get(ctx context.Context, id uuid.UUID) (*Pipeline, error)
	Create(ctx context.Context, pipeline *Pipeline) (*Pipeline, error)
	Update(ctx context.Context, id uuid.UUID, pipeline *Pipeline) (*Pipeline, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetInProject(ctx context.Context, project uuid.UUID, name string) (*Pipeline, error)
	GetConfiguration(ctx context.Context, id uuid.UUID) (map[string]interface{}, error)
}

// RunsClient manages pipeline runs.
type RunsClient interface {
	List(ctx context.Context, filter *RunFilter) ([]PipelineRun, error)
	Get(ctx context.Context, id uuid.UUID) (*PipelineRun, error)
	Create(ctx context.Context, run *PipelineRun) (*PipelineRun, error)
	Update(ctx context.Context, id uuid.UUID, run *PipelineRun) (*PipelineRun, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetInProject(ctx context.Context, project uuid.UUID, name string) (*PipelineRun, error)
	GetDAG(ctx context.Context, id uuid.UUID) (RunDAG, error)
	GetRuntimeConfiguration(ctx context.Context, id uuid.UUID) (map[string]interface{}, error)
	GetComponentSideEffects(ctx context.Context, id uuid.UUID, filter *SideEffectsFilter) (SideEffects, error)
	ListSteps(ctx context.Context, id uuid.UUID) ([]StepRun, error)
}

// StepsClient reads and manages step runs.
type StepsClient interface {
	List(ctx context.Context, run uuid.UUID) ([]StepRun, error)
	Get(ctx context.Context, id uuid.UUID) (*StepRun, error)
	Create(ctx context.Context, step *StepRun) (*StepRun, error)
	Update(ctx context.Context, id uuid.UUID, step *StepRun) (*StepRun, error)
	Delete(ctx context.Context, id uuid.UUID) error
	GetArtifacts(ctx context.Context, id uuid.UUID) (*StepArtifacts, error)
	GetStatus(ctx context.Context, id uuid.UUID) (ExecutionStatus, error)
}

// ArtifactsClient manages artifacts.
type ArtifactsClient interface {
	List(ctx context.Context, filter *ArtifactFilter) ([]Artifact, error)
	Get(ctx context.Context, id uuid.UUID) (*Artifact, error)
	Create(ctx context.Context, artifact *Artifact) (*Artifact, error)
	Update(ctx context.Context, id uuid.UUID, artifact *Artifact) (*Artifact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
