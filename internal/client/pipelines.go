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

// PipelinesClient implements the zen.PipelinesClient interface.
type PipelinesClient struct {
	resource[zen.Pipeline]
}

// NewPipelinesClient creates a new PipelinesClient.
func NewPipelinesClient(httpClient *http.Client, apiVersion string) *PipelinesClient {
	return &PipelinesClient{
		resource: newResource[zen.Pipeline](httpClient, apiVersion+constants.PathPipelines, "pipeline", "pipelines"),
	}
}

// List lists pipelines matching filter.
func (c *PipelinesClient) List(ctx context.Context, filter *zen.PipelineFilter) ([]zen.Pipeline, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves a pipeline.
func (c *PipelinesClient) Get(ctx context.Context, id uuid.UUID) (*zen.Pipeline, error) {
	return c.get(ctx, id)
}

// Create creates a pipeline.
func (c *PipelinesClient) Create(ctx context.Context, pipeline *zen.Pipeline) (*zen.Pipeline, error) {
	return c.create(ctx, pipeline)
}

// Update replaces a pipeline.
func (c *PipelinesClient) Update(ctx context.Context, id uuid.UUID, pipeline *zen.Pipeline) (*zen.Pipeline, error) {
	return c.update(ctx, id, pipeline)
}

// Delete deletes a pipeline.
func (c *PipelinesClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}

// GetInProject returns the pipeline called name in project.
func (c *PipelinesClient) GetInProject(ctx context.Context, project uuid.UUID, name string) (*zen.Pipeline, error) {
	filter := &zen.PipelineFilter{Project: &project, Name: name}

	return c.getOne(ctx, filter.ToValues(), zen.ErrAmbiguousName)
}

// GetConfiguration returns the configuration a pipeline was registered with.
func (c *PipelinesClient) GetConfiguration(ctx context.Context, id uuid.UUID) (map[string]interface{}, error) {
	resp, err := c.httpClient.Get(ctx, c.itemPath(id)+constants.SegmentConfiguration, nil)
	if err != nil {
		return nil, fmt.Errorf("getting pipeline configuration: %w", err)
	}

	configuration, err := decode[map[string]interface{}](resp, "pipeline configuration")
	if err != nil {
		return nil, err
	}

	return *configuration, nil
}
