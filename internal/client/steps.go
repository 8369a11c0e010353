package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
)

// StepsClient implements the zen.StepsClient interface.
type StepsClient struct {
	resource[zen.StepRun]

	runsPath string
}

// NewStepsClient creates a new StepsClient.
func NewStepsClient(httpClient *http.Client, apiVersion string) *StepsClient {
	return &StepsClient{
		resource: newResource[zen.StepRun](httpClient, apiVersion+constants.PathSteps, "step run", "step runs"),
		runsPath: apiVersion + constants.PathRuns,
	}
}

// List lists the step runs of a pipeline run.
func (c *StepsClient) List(ctx context.Context, run uuid.UUID) ([]zen.StepRun, error) {
	return c.list(ctx, fmt.Sprintf("%s/%s%s", c.runsPath, run, constants.PathSteps), nil)
}

// Get retrieves a step run.
func (c *StepsClient) Get(ctx context.Context, id uuid.UUID) (*zen.StepRun, error) {
	return c.get(ctx, id)
}

// Create records a step run.
func (c *StepsClient) Create(ctx context.Context, step *zen.StepRun) (*zen.StepRun, error) {
	return c.create(ctx, step)
}

// Update replaces a step run.
func (c *StepsClient) Update(ctx context.Context, id uuid.UUID, step *zen.StepRun) (*zen.StepRun, error) {
	return c.update(ctx, id, step)
}

// Delete deletes a step run.
func (c *StepsClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}

// GetArtifacts returns the artifacts a step consumed and produced.
func (c *StepsClient) GetArtifacts(ctx context.Context, id uuid.UUID) (*zen.StepArtifacts, error) {
	inputs, err := c.artifacts(ctx, id, constants.SegmentInputs, "inputs")
	if err != nil {
		return nil, err
	}

	outputs, err := c.artifacts(ctx, id, constants.SegmentOutputs, "outputs")
	if err != nil {
		return nil, err
	}

	return &zen.StepArtifacts{Inputs: inputs, Outputs: outputs}, nil
}

func (c *StepsClient) artifacts(ctx context.Context, id uuid.UUID, segment, what string) (map[string]zen.Artifact, error) {
	resp, err := c.httpClient.Get(ctx, c.itemPath(id)+segment, nil)
	if err != nil {
		return nil, fmt.Errorf("getting step %s: %w", what, err)
	}

	artifacts, err := decode[map[string]zen.Artifact](resp, "step "+what)
	if err != nil {
		return nil, err
	}

	if *artifacts == nil {
		return map[string]zen.Artifact{}, nil
	}

	return *artifacts, nil
}

// GetStatus returns the execution status of a step run.
func (c *StepsClient) GetStatus(ctx context.Context, id uuid.UUID) (zen.ExecutionStatus, error) {
	resp, err := c.httpClient.Get(ctx, c.itemPath(id)+constants.SegmentStatus, nil)
	if err != nil {
		return "", fmt.Errorf("getting step status: %w", err)
	}

	var status zen.ExecutionStatus

	err = json.Unmarshal(resp.Body, &status)
	if err != nil {
		return "", malformed(resp, "step status", err)
	}

	return status, nil
}
