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

// RunsClient implements the zen.RunsClient interface.
type RunsClient struct {
	resource[zen.PipelineRun]
}

// NewRunsClient creates a new RunsClient.
func NewRunsClient(httpClient *http.Client, apiVersion string) *RunsClient {
	return &RunsClient{
		resource: newResource[zen.PipelineRun](httpClient, apiVersion+constants.PathRuns, "pipeline run", "pipeline runs"),
	}
}

// List lists pipeline runs matching filter.
func (c *RunsClient) List(ctx context.Context, filter *zen.RunFilter) ([]zen.PipelineRun, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves a pipeline run.
func (c *RunsClient) Get(ctx context.Context, id uuid.UUID) (*zen.PipelineRun, error) {
	return c.get(ctx, id)
}

// Create records a pipeline run.
func (c *RunsClient) Create(ctx context.Context, run *zen.PipelineRun) (*zen.PipelineRun, error) {
	return c.create(ctx, run)
}

// Update replaces a pipeline run.
func (c *RunsClient) Update(ctx context.Context, id uuid.UUID, run *zen.PipelineRun) (*zen.PipelineRun, error) {
	return c.update(ctx, id, run)
}

// Delete deletes a pipeline run.
func (c *RunsClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}

// GetInProject returns the run called name in project.
func (c *RunsClient) GetInProject(ctx context.Context, project uuid.UUID, name string) (*zen.PipelineRun, error) {
	filter := &zen.RunFilter{Project: &project, Name: name}

	return c.getOne(ctx, filter.ToValues(), zen.ErrAmbiguousName)
}

// GetDAG returns the graph of a run's steps.
func (c *RunsClient) GetDAG(ctx context.Context, id uuid.UUID) (zen.RunDAG, error) {
	resp, err := c.httpClient.Get(ctx, c.itemPath(id)+constants.SegmentGraph, nil)
	if err != nil {
		return nil, fmt.Errorf("getting run graph: %w", err)
	}

	dag, err := decode[zen.RunDAG](resp, "run graph")
	if err != nil {
		return nil, err
	}

	return *dag, nil
}

// GetRuntimeConfiguration returns the configuration a run was executed with.
func (c *RunsClient) GetRuntimeConfiguration(ctx context.Context, id uuid.UUID) (map[string]interface{}, error) {
	resp, err := c.httpClient.Get(ctx, c.itemPath(id)+constants.SegmentRuntimeConfig, nil)
	if err != nil {
		return nil, fmt.Errorf("getting runtime configuration: %w", err)
	}

	configuration, err := decode[map[string]interface{}](resp, "runtime configuration")
	if err != nil {
		return nil, err
	}

	return *configuration, nil
}

// GetComponentSideEffects returns what stack components reported for a run,
// optionally narrowed to one component or component type.
func (c *RunsClient) GetComponentSideEffects(ctx context.Context, id uuid.UUID, filter *zen.SideEffectsFilter) (zen.SideEffects, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	resp, err := c.httpClient.Get(ctx, c.itemPath(id)+constants.SegmentSideEffects, query)
	if err != nil {
		return nil, fmt.Errorf("getting component side effects: %w", err)
	}

	effects, err := decode[zen.SideEffects](resp, "component side effects")
	if err != nil {
		return nil, err
	}

	return *effects, nil
}

// ListSteps lists the step runs of a run.
func (c *RunsClient) ListSteps(ctx context.Context, id uuid.UUID) ([]zen.StepRun, error) {
	resp, err := c.httpClient.Get(ctx, c.itemPath(id)+constants.PathSteps, nil)
	if err != nil {
		return nil, fmt.Errorf("listing steps of run: %w", err)
	}

	return decodeList[zen.StepRun](resp, "step runs")
}
