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

// TeamsClient implements the zen.TeamsClient interface.
type TeamsClient struct {
	resource[zen.Team]

	usersPath string
}

// NewTeamsClient creates a new TeamsClient.
func NewTeamsClient(httpClient *http.Client, apiVersion string) *TeamsClient {
	return &TeamsClient{
		resource:  newResource[zen.Team](httpClient, apiVersion+constants.PathTeams, "team", "teams"),
		usersPath: apiVersion + constants.PathUsers,
	}
}

// List lists teams.
func (c *TeamsClient) List(ctx context.Context, filter *zen.NameFilter) ([]zen.Team, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves a team.
func (c *TeamsClient) Get(ctx context.Context, id uuid.UUID) (*zen.Team, error) {
	return c.get(ctx, id)
}

// Create creates a team.
func (c *TeamsClient) Create(ctx context.Context, team *zen.Team) (*zen.Team, error) {
	return c.create(ctx, team)
}

// Update replaces a team.
func (c *TeamsClient) Update(ctx context.Context, id uuid.UUID, team *zen.Team) (*zen.Team, error) {
	return c.update(ctx, id, team)
}

// Delete deletes a team.
func (c *TeamsClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}

func (c *TeamsClient) memberPath(team, user uuid.UUID) string {
	return fmt.Sprintf("%s%s/%s", c.itemPath(team), constants.PathUsers, user)
}

// AddUser makes user a member of team.
func (c *TeamsClient) AddUser(ctx context.Context, team, user uuid.UUID) error {
	_, err := c.httpClient.Put(ctx, c.memberPath(team, user), nil)
	if err != nil {
		return fmt.Errorf("adding user to team: %w", err)
	}

	return nil
}

// RemoveUser removes user from team.
func (c *TeamsClient) RemoveUser(ctx context.Context, team, user uuid.UUID) error {
	_, err := c.httpClient.Delete(ctx, c.memberPath(team, user), nil)
	if err != nil {
		return fmt.Errorf("removing user from team: %w", err)
	}

	return nil
}

// ListUsers lists the members of a team.
func (c *TeamsClient) ListUsers(ctx context.Context, team uuid.UUID) ([]zen.User, error) {
	resp, err := c.httpClient.Get(ctx, c.itemPath(team)+constants.PathUsers, nil)
	if err != nil {
		return nil, fmt.Errorf("listing users of team: %w", err)
	}

	return decodeList[zen.User](resp, "users")
}

// ListForUser lists the teams user belongs to.
func (c *TeamsClient) ListForUser(ctx context.Context, user uuid.UUID) ([]zen.Team, error) {
	path := fmt.Sprintf("%s/%s%s", c.usersPath, user, constants.PathTeams)

	return c.list(ctx, path, nil)
}
