package client

import (
	"context"
	"net/url"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
)

// ArtifactsClient implements the zen.ArtifactsClient interface.
type ArtifactsClient struct {
	resource[zen.Artifact]
}

// NewArtifactsClient creates a new ArtifactsClient.
func NewArtifactsClient(httpClient *http.Client, apiVersion string) *ArtifactsClient {
	return &ArtifactsClient{
		resource: newResource[zen.Artifact](httpClient, apiVersion+constants.PathArtifacts, "artifact", "artifacts"),
	}
}

// List lists artifacts matching filter.
func (c *ArtifactsClient) List(ctx context.Context, filter *zen.ArtifactFilter) ([]zen.Artifact, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves an artifact.
func (c *ArtifactsClient) Get(ctx context.Context, id uuid.UUID) (*zen.Artifact, error) {
	return c.get(ctx, id)
}

// Create records an artifact.
func (c *ArtifactsClient) Create(ctx context.Context, artifact *zen.Artifact) (*zen.Artifact, error) {
	return c.create(ctx, artifact)
}

// Update replaces an artifact.
func (c *ArtifactsClient) Update(ctx context.Context, id uuid.UUID, artifact *zen.Artifact) (*zen.Artifact, error) {
	return c.update(ctx, id, artifact)
}

// Delete deletes an artifact.
func (c *ArtifactsClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}
