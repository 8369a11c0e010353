package zen

import (
	"github.com/google/uuid"
)

// Stack is a named collection of components used together to run pipelines.
type Stack struct {
	Resource    `yaml:",inline"`
	Scope       `yaml:",inline"`
	Name        string                        `json:"name"                  yaml:"name"`
	Description string                        `json:"description,omitempty" yaml:"description,omitempty"`
	Components  map[ComponentType][]uuid.UUID `json:"components"            yaml:"components"`
	IsShared    bool                          `json:"is_shared"             yaml:"is_shared"`
}

// Component is a single configured capability belonging to one or more stacks.
type Component struct {
	Resource      `yaml:",inline"`
	Scope         `yaml:",inline"`
	Name          string                 `json:"name"                    yaml:"name"`
	Type          ComponentType          `json:"type"                    yaml:"type"`
	Flavor        string                 `json:"flavor"                  yaml:"flavor"`
	Configuration map[string]interface{} `json:"configuration,omitempty" yaml:"configuration,omitempty"`
	IsShared      bool                   `json:"is_shared"               yaml:"is_shared"`
}

// Flavor is a typed template describing how to build a component from a source implementation.
type Flavor struct {
	Resource     `yaml:",inline"`
	Scope        `yaml:",inline"`
	Name         string        `json:"name"                  yaml:"name"`
	Type         ComponentType `json:"type"                  yaml:"type"`
	Source       string        `json:"source"                yaml:"source"`
	ConfigSchema string        `json:"config_schema"         yaml:"config_schema"`
	Integration  string        `json:"integration,omitempty" yaml:"integration,omitempty"`
}

// FlavorRegistration is the input of FlavorsClient.Register.
type FlavorRegistration struct {
	Scope        `yaml:",inline"`
	Source       string        `json:"source"                  yaml:"source"`
	Name         string        `json:"name"                    yaml:"name"`
	Type         ComponentType `json:"type"                    yaml:"type"`
	ConfigSchema string        `json:"config_schema,omitempty" yaml:"config_schema,omitempty"`
	Integration  string        `json:"integration,omitempty"   yaml:"integration,omitempty"`
}

// Project is the top-level scoping unit.
type Project struct {
	Resource    `yaml:",inline"`
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// User is an account on the server.
type User struct {
	Resource `yaml:",inline"`
	Name     string `json:"name"                yaml:"name"`
	FullName string `json:"full_name,omitempty" yaml:"full_name,omitempty"`
	Email    string `json:"email,omitempty"     yaml:"email,omitempty"`
	Active   bool   `json:"active"              yaml:"active"`
	Password string `json:"password,omitempty"  yaml:"-"`
}

// Team groups users.
type Team struct {
	Resource `yaml:",inline"`
	Name     string `json:"name" yaml:"name"`
}

// Role is a named set of permissions.
type Role struct {
	Resource    `yaml:",inline"`
	Name        string   `json:"name"                  yaml:"name"`
	Permissions []string `json:"permissions,omitempty" yaml:"permissions,omitempty"`
}

// RoleAssignment grants a role to a user or a team, optionally within one project.
type RoleAssignment struct {
	Resource `yaml:",inline"`
	Role     uuid.UUID  `json:"role_id"              yaml:"role_id"`
	User     *uuid.UUID `json:"user_id,omitempty"    yaml:"user_id,omitempty"`
	Team     *uuid.UUID `json:"team_id,omitempty"    yaml:"team_id,omitempty"`
	Project  *uuid.UUID `json:"project_id,omitempty" yaml:"project_id,omitempty"`
}

// SubjectKind returns whether the assignment targets a user or a team.
func (a *RoleAssignment) SubjectKind() SubjectKind {
	if a.Team != nil {
		return SubjectTeam
	}

	return SubjectUser
}

// SubjectID returns the id of the user or team holding the role.
func (a *RoleAssignment) SubjectID() uuid.UUID {
	switch {
	case a.Team != nil:
		return *a.Team
	case a.User != nil:
		return *a.User
	default:
		return uuid.Nil
	}
}

// RoleGrant identifies a role assignment for Assign and Revoke.
type RoleGrant struct {
	Role    uuid.UUID
	Subject uuid.UUID
	Kind    SubjectKind
	// Project scopes the grant; nil means global.
	Project *uuid.UUID
}

// Assignment converts the grant to its wire form.
func (g RoleGrant) Assignment() (*RoleAssignment, error) {
	assignment := &RoleAssignment{Role: g.Role, Project: g.Project}

	subject := g.Subject

	switch g.Kind {
	case SubjectUser:
		assignment.User = &subject
	case SubjectTeam:
		assignment.Team = &subject
	default:
		return nil, ErrInvalidSubject
	}

	return assignment, nil
}

// Repository is a code repository connected to a project.
type Repository struct {
	Resource   `yaml:",inline"`
	Scope      `yaml:",inline"`
	Name       string            `json:"name"                 yaml:"name"`
	Connection map[string]string `json:"connection,omitempty" yaml:"connection,omitempty"`
}

// Pipeline is a named workflow definition.
type Pipeline struct {
	Resource      `yaml:",inline"`
	Scope         `yaml:",inline"`
	Name          string                 `json:"name"                yaml:"name"`
	Docstring     string                 `json:"docstring,omitempty" yaml:"docstring,omitempty"`
	Configuration map[string]interface{} `json:"configuration"       yaml:"configuration"`
}

// PipelineRun is one execution of a pipeline. Unlisted runs have no pipeline.
type PipelineRun struct {
	Resource             `yaml:",inline"`
	Scope                `yaml:",inline"`
	Name                 string                 `json:"name"                            yaml:"name"`
	Status               ExecutionStatus        `json:"status"                          yaml:"status"`
	StackID              uuid.UUID              `json:"stack_id"                        yaml:"stack_id"`
	PipelineID           *uuid.UUID             `json:"pipeline_id"                     yaml:"pipeline_id"`
	RuntimeConfiguration map[string]interface{} `json:"runtime_configuration,omitempty" yaml:"runtime_configuration,omitempty"`
	ZenMLVersion         string                 `json:"zenml_version,omitempty"         yaml:"zenml_version,omitempty"`
	GitSHA               string                 `json:"git_sha,omitempty"               yaml:"git_sha,omitempty"`
}

// Unlisted reports whether the run was executed outside of a registered pipeline.
func (r *PipelineRun) Unlisted() bool {
	return r.PipelineID == nil
}

// StepRun is the execution of one step within a run.
type StepRun struct {
	Resource       `yaml:",inline"`
	Name           string            `json:"name"                      yaml:"name"`
	PipelineRunID  uuid.UUID         `json:"pipeline_run_id"           yaml:"pipeline_run_id"`
	EntrypointName string            `json:"entrypoint_name,omitempty" yaml:"entrypoint_name,omitempty"`
	Status         ExecutionStatus   `json:"status"                    yaml:"status"`
	ParentStepIDs  []uuid.UUID       `json:"parent_step_ids,omitempty" yaml:"parent_step_ids,omitempty"`
	Parameters     map[string]string `json:"parameters,omitempty"      yaml:"parameters,omitempty"`
	Docstring      string            `json:"docstring,omitempty"       yaml:"docstring,omitempty"`
}

// Artifact is a named value produced or consumed by a step run.
type Artifact struct {
	Resource       `yaml:",inline"`
	Name           string    `json:"name"                   yaml:"name"`
	URI            string    `json:"uri"                    yaml:"uri"`
	Type           string    `json:"type,omitempty"         yaml:"type,omitempty"`
	DataType       string    `json:"data_type,omitempty"    yaml:"data_type,omitempty"`
	Materializer   string    `json:"materializer,omitempty" yaml:"materializer,omitempty"`
	ProducerStepID uuid.UUID `json:"producer_step_id"       yaml:"producer_step_id"`
	IsCached       bool      `json:"is_cached"              yaml:"is_cached"`
}

// StepArtifacts holds a step's inputs and outputs keyed by artifact name.
type StepArtifacts struct {
	Inputs  map[string]Artifact `json:"inputs"  yaml:"inputs"`
	Outputs map[string]Artifact `json:"outputs" yaml:"outputs"`
}

// RunDAG is the opaque graph description of a pipeline run.
type RunDAG map[string]interface{}

// SideEffects maps component ids to what they reported for a run.
type SideEffects map[string]interface{}
