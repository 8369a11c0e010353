package client

import (
	"context"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
)

// RolesClient implements the zen.RolesClient interface.
type RolesClient struct {
	resource[zen.Role]

	assignments resource[zen.RoleAssignment]
}

// NewRolesClient creates a new RolesClient.
func NewRolesClient(httpClient *http.Client, apiVersion string) *RolesClient {
	return &RolesClient{
		resource:    newResource[zen.Role](httpClient, apiVersion+constants.PathRoles, "role", "roles"),
		assignments: newResource[zen.RoleAssignment](httpClient, apiVersion+constants.PathRoleAssignments, "role assignment", "role assignments"),
	}
}

// List lists roles.
func (c *RolesClient) List(ctx context.Context, filter *zen.NameFilter) ([]zen.Role, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves a role.
func (c *RolesClient) Get(ctx context.Context, id uuid.UUID) (*zen.Role, error) {
	return c.get(ctx, id)
}

// Create creates a role.
func (c *RolesClient) Create(ctx context.Context, role *zen.Role) (*zen.Role, error) {
	return c.create(ctx, role)
}

// Update replaces a role.
func (c *RolesClient) Update(ctx context.Context, id uuid.UUID, role *zen.Role) (*zen.Role, error) {
	return c.update(ctx, id, role)
}

// Delete deletes a role.
func (c *RolesClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}

// Assign grants a role to a user or a team, globally or within one project.
func (c *RolesClient) Assign(ctx context.Context, grant zen.RoleGrant) (*zen.RoleAssignment, error) {
	assignment, err := grant.Assignment()
	if err != nil {
		return nil, fmt.Errorf("assigning role: %w", err)
	}

	return c.assignments.create(ctx, assignment)
}

// Revoke removes the assignment described by grant.
func (c *RolesClient) Revoke(ctx context.Context, grant zen.RoleGrant) error {
	assignment, err := grant.Assignment()
	if err != nil {
		return fmt.Errorf("revoking role: %w", err)
	}

	filter := &zen.RoleAssignmentFilter{
		Project: assignment.Project,
		Team:    assignment.Team,
		User:    assignment.User,
		Role:    &assignment.Role,
	}

	_, err = c.httpClient.Delete(ctx, c.assignments.path, filter.ToValues())
	if err != nil {
		return fmt.Errorf("revoking role: %w", err)
	}

	return nil
}

// ListAssignments lists role assignments matching filter.
func (c *RolesClient) ListAssignments(ctx context.Context, filter *zen.RoleAssignmentFilter) ([]zen.RoleAssignment, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.assignments.list(ctx, c.assignments.path, query)
}
