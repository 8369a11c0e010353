package client

import (
	"context"
	"net/url"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
)

// ProjectsClient implements the zen.ProjectsClient interface.
type ProjectsClient struct {
	resource[zen.Project]
}

// NewProjectsClient creates a new ProjectsClient.
func NewProjectsClient(httpClient *http.Client, apiVersion string) *ProjectsClient {
	return &ProjectsClient{
		resource: newResource[zen.Project](httpClient, apiVersion+constants.PathProjects, "project", "projects"),
	}
}

// List lists projects.
func (c *ProjectsClient) List(ctx context.Context, filter *zen.NameFilter) ([]zen.Project, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves a project.
func (c *ProjectsClient) Get(ctx context.Context, id uuid.UUID) (*zen.Project, error) {
	return c.get(ctx, id)
}

// Create creates a project.
func (c *ProjectsClient) Create(ctx context.Context, project *zen.Project) (*zen.Project, error) {
	return c.create(ctx, project)
}

// Update replaces a project.
func (c *ProjectsClient) Update(ctx context.Context, id uuid.UUID, project *zen.Project) (*zen.Project, error) {
	return c.update(ctx, id, project)
}

// Delete deletes a project.
func (c *ProjectsClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}
