package zen

import (
	"net/url"
	"strconv"

	"github.com/google/uuid"
)

// Filter narrows a list call. Every set field is an exact-match constraint and
// constraints combine with AND; unset fields are unconstrained.
type Filter interface {
	ToValues() url.Values
}

type filterValues url.Values

func (v filterValues) str(key, value string) filterValues {
	if value != "" {
		url.Values(v).Set(key, value)
	}

	return v
}

func (v filterValues) id(key string, value *uuid.UUID) filterValues {
	if value != nil {
		url.Values(v).Set(key, value.String())
	}

	return v
}

func (v filterValues) flag(key string, value *bool) filterValues {
	if value != nil {
		url.Values(v).Set(key, strconv.FormatBool(*value))
	}

	return v
}

// Ptr returns a pointer to v, for optional filter fields.
func Ptr[T any](v T) *T {
	return &v
}

// StackFilter filters stacks.
type StackFilter struct {
	Project  *uuid.UUID
	User     *uuid.UUID
	Name     string
	IsShared *bool
}

// ToValues implements Filter.
func (f *StackFilter) ToValues() url.Values {
	return url.Values(filterValues{}.
		id("project", f.Project).
		id("user", f.User).
		str("name", f.Name).
		flag("is_shared", f.IsShared))
}

// ComponentFilter filters stack components.
type ComponentFilter struct {
	Project  *uuid.UUID
	User     *uuid.UUID
	Type     ComponentType
	Name     string
	Flavor   string
	IsShared *bool
}

// ToValues implements Filter.
func (f *ComponentFilter) ToValues() url.Values {
	return url.Values(filterValues{}.
		id("project", f.Project).
		id("user", f.User).
		str("type", string(f.Type)).
		str("name", f.Name).
		str("flavor", f.Flavor).
		flag("is_shared", f.IsShared))
}

// FlavorFilter filters flavors.
type FlavorFilter struct {
	Project *uuid.UUID
	User    *uuid.UUID
	Type    ComponentType
	Name    string
}

// ToValues implements Filter.
func (f *FlavorFilter) ToValues() url.Values {
	return url.Values(filterValues{}.
		id("project", f.Project).
		id("user", f.User).
		str("type", string(f.Type)).
		str("name", f.Name))
}

// NameFilter filters globally scoped entities (projects, users, teams, roles) by name.
type NameFilter struct {
	Name string
}

// ToValues implements Filter.
func (f *NameFilter) ToValues() url.Values {
	return url.Values(filterValues{}.str("name", f.Name))
}

// RoleAssignmentFilter filters role assignments.
type RoleAssignmentFilter struct {
	Project *uuid.UUID
	Team    *uuid.UUID
	User    *uuid.UUID
	Role    *uuid.UUID
}

// ToValues implements Filter.
func (f *RoleAssignmentFilter) ToValues() url.Values {
	return url.Values(filterValues{}.
		id("project_id", f.Project).
		id("team_id", f.Team).
		id("user_id", f.User).
		id("role_id", f.Role))
}

// RepositoryFilter filters repositories of a project.
type RepositoryFilter struct {
	User *uuid.UUID
	Name string
}

// ToValues implements Filter.
func (f *RepositoryFilter) ToValues() url.Values {
	return url.Values(filterValues{}.
		id("user", f.User).
		str("name", f.Name))
}

// PipelineFilter filters pipelines.
type PipelineFilter struct {
	Project *uuid.UUID
	User    *uuid.UUID
	Name    string
}

// ToValues implements Filter.
func (f *PipelineFilter) ToValues() url.Values {
	return url.Values(filterValues{}.
		id("project", f.Project).
		id("user", f.User).
		str("name", f.Name))
}

// RunFilter filters pipeline runs.
type RunFilter struct {
	Project  *uuid.UUID
	User     *uuid.UUID
	Stack    *uuid.UUID
	Pipeline *uuid.UUID
	Name     string
	Status   ExecutionStatus
	// Unlisted restricts the result to runs without (true) or with (false) a pipeline.
	Unlisted *bool
}

// ToValues implements Filter.
func (f *RunFilter) ToValues() url.Values {
	return url.Values(filterValues{}.
		id("project", f.Project).
		id("user", f.User).
		id("stack_id", f.Stack).
		id("pipeline_id", f.Pipeline).
		str("name", f.Name).
		str("status", string(f.Status)).
		flag("unlisted", f.Unlisted))
}

// ArtifactFilter filters artifacts.
type ArtifactFilter struct {
	Name         string
	URI          string
	ProducerStep *uuid.UUID
}

// ToValues implements Filter.
func (f *ArtifactFilter) ToValues() url.Values {
	return url.Values(filterValues{}.
		str("name", f.Name).
		str("uri", f.URI).
		id("producer_step_id", f.ProducerStep))
}

// SideEffectsFilter narrows component side effects of a run.
type SideEffectsFilter struct {
	Component     *uuid.UUID
	ComponentType ComponentType
}

// ToValues implements Filter.
func (f *SideEffectsFilter) ToValues() url.Values {
	return url.Values(filterValues{}.
		id("component_id", f.Component).
		str("component_type", string(f.ComponentType)))
}
