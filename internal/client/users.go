package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
)

// UsersClient implements the zen.UsersClient interface.
type UsersClient struct {
	resource[zen.User]
}

// NewUsersClient creates a new UsersClient.
func NewUsersClient(httpClient *http.Client, apiVersion string) *UsersClient {
	return &UsersClient{
		resource: newResource[zen.User](httpClient, apiVersion+constants.PathUsers, "user", "users"),
	}
}

// List lists users.
func (c *UsersClient) List(ctx context.Context, filter *zen.NameFilter) ([]zen.User, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves a user.
func (c *UsersClient) Get(ctx context.Context, id uuid.UUID) (*zen.User, error) {
	return c.get(ctx, id)
}

// Create creates a user.
func (c *UsersClient) Create(ctx context.Context, user *zen.User) (*zen.User, error) {
	return c.create(ctx, user)
}

// Update replaces a user.
func (c *UsersClient) Update(ctx context.Context, id uuid.UUID, user *zen.User) (*zen.User, error) {
	return c.update(ctx, id, user)
}

// Delete deletes a user.
func (c *UsersClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}

// IssueInviteToken creates an invitation token the user activates the account with.
func (c *UsersClient) IssueInviteToken(ctx context.Context, id uuid.UUID) (string, error) {
	resp, err := c.httpClient.Put(ctx, c.itemPath(id)+constants.SegmentInviteToken, nil)
	if err != nil {
		return "", fmt.Errorf("issuing invite token: %w", err)
	}

	var token string

	err = json.Unmarshal(resp.Body, &token)
	if err != nil {
		return "", malformed(resp, "invite token", err)
	}

	return token, nil
}

// InvalidateInviteToken revokes the pending invitation of a user.
func (c *UsersClient) InvalidateInviteToken(ctx context.Context, id uuid.UUID) error {
	_, err := c.httpClient.Delete(ctx, c.itemPath(id)+constants.SegmentInviteToken, nil)
	if err != nil {
		return fmt.Errorf("invalidating invite token: %w", err)
	}

	return nil
}

// ListTeams lists the teams a user belongs to.
func (c *UsersClient) ListTeams(ctx context.Context, id uuid.UUID) ([]zen.Team, error) {
	resp, err := c.httpClient.Get(ctx, c.itemPath(id)+constants.PathTeams, nil)
	if err != nil {
		return nil, fmt.Errorf("listing teams of user: %w", err)
	}

	return decodeList[zen.Team](resp, "teams")
}
