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

// StacksClient implements the zen.StacksClient interface.
type StacksClient struct {
	resource[zen.Stack]

	projectsPath string
}

// NewStacksClient creates a new StacksClient.
func NewStacksClient(httpClient *http.Client, apiVersion string) *StacksClient {
	return &StacksClient{
		resource:     newResource[zen.Stack](httpClient, apiVersion+constants.PathStacks, "stack", "stacks"),
		projectsPath: apiVersion + constants.PathProjects,
	}
}

// List lists stacks matching filter.
func (c *StacksClient) List(ctx context.Context, filter *zen.StackFilter) ([]zen.Stack, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves a stack.
func (c *StacksClient) Get(ctx context.Context, id uuid.UUID) (*zen.Stack, error) {
	return c.get(ctx, id)
}

// Create registers a stack. A stack with the same name in the same project
// fails with zen.ErrStackExists.
func (c *StacksClient) Create(ctx context.Context, stack *zen.Stack) (*zen.Stack, error) {
	return c.create(ctx, stack)
}

// Update replaces a stack.
func (c *StacksClient) Update(ctx context.Context, id uuid.UUID, stack *zen.Stack) (*zen.Stack, error) {
	return c.update(ctx, id, stack)
}

// Delete deletes a stack.
func (c *StacksClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}

// GetDefault returns the default stack of a project.
func (c *StacksClient) GetDefault(ctx context.Context, project uuid.UUID) (*zen.Stack, error) {
	path := fmt.Sprintf("%s/%s%s", c.projectsPath, project, constants.SegmentDefaultStack)

	resp, err := c.httpClient.Get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("getting default stack: %w", err)
	}

	return decode[zen.Stack](resp, "stack")
}

// SetDefault makes stack the default stack of project.
func (c *StacksClient) SetDefault(ctx context.Context, project, stack uuid.UUID) (*zen.Stack, error) {
	path := fmt.Sprintf("%s/%s%s/%s", c.projectsPath, project, constants.SegmentDefaultStack, stack)

	resp, err := c.httpClient.Put(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("setting default stack: %w", err)
	}

	return decode[zen.Stack](resp, "stack")
}
