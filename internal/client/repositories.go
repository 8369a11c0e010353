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

// RepositoriesClient implements the zen.RepositoriesClient interface.
type RepositoriesClient struct {
	resource[zen.Repository]

	projectsPath string
}

// NewRepositoriesClient creates a new RepositoriesClient.
func NewRepositoriesClient(httpClient *http.Client, apiVersion string) *RepositoriesClient {
	return &RepositoriesClient{
		resource:     newResource[zen.Repository](httpClient, apiVersion+constants.PathRepositories, "repository", "repositories"),
		projectsPath: apiVersion + constants.PathProjects,
	}
}

func (c *RepositoriesClient) projectPath(project uuid.UUID) string {
	return fmt.Sprintf("%s/%s%s", c.projectsPath, project, constants.PathRepositories)
}

// List lists the repositories connected to project.
func (c *RepositoriesClient) List(ctx context.Context, project uuid.UUID, filter *zen.RepositoryFilter) ([]zen.Repository, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.projectPath(project), query)
}

// Get retrieves a repository.
func (c *RepositoriesClient) Get(ctx context.Context, id uuid.UUID) (*zen.Repository, error) {
	return c.get(ctx, id)
}

// Create connects a repository to the project set in its scope.
func (c *RepositoriesClient) Create(ctx context.Context, repository *zen.Repository) (*zen.Repository, error) {
	return c.post(ctx, c.projectPath(repository.Project), repository)
}

// Update replaces a repository.
func (c *RepositoriesClient) Update(ctx context.Context, id uuid.UUID, repository *zen.Repository) (*zen.Repository, error) {
	return c.update(ctx, id, repository)
}

// Delete deletes a repository.
func (c *RepositoriesClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}
