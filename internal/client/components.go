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

// ComponentsClient implements the zen.ComponentsClient interface.
type ComponentsClient struct {
	resource[zen.Component]

	typesPath string
}

// NewComponentsClient creates a new ComponentsClient.
func NewComponentsClient(httpClient *http.Client, apiVersion string) *ComponentsClient {
	return &ComponentsClient{
		resource:  newResource[zen.Component](httpClient, apiVersion+constants.PathComponents, "stack component", "stack components"),
		typesPath: apiVersion + constants.PathComponentTypes,
	}
}

// List lists stack components matching filter.
func (c *ComponentsClient) List(ctx context.Context, filter *zen.ComponentFilter) ([]zen.Component, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves a stack component.
func (c *ComponentsClient) Get(ctx context.Context, id uuid.UUID) (*zen.Component, error) {
	return c.get(ctx, id)
}

// Create registers a stack component. A component with the same name and
// type in the same project fails with zen.ErrComponentExists.
func (c *ComponentsClient) Create(ctx context.Context, component *zen.Component) (*zen.Component, error) {
	return c.create(ctx, component)
}

// Update replaces a stack component.
func (c *ComponentsClient) Update(ctx context.Context, id uuid.UUID, component *zen.Component) (*zen.Component, error) {
	return c.update(ctx, id, component)
}

// Delete deletes a stack component.
func (c *ComponentsClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}

// ListTypes lists the component types the server knows.
func (c *ComponentsClient) ListTypes(ctx context.Context) ([]zen.ComponentType, error) {
	resp, err := c.httpClient.Get(ctx, c.typesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("listing component types: %w", err)
	}

	return decodeList[zen.ComponentType](resp, "component types")
}
