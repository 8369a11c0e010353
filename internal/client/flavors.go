package client

import (
	"context"
	"net/url"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
)

// FlavorsClient implements the zen.FlavorsClient interface.
type FlavorsClient struct {
	resource[zen.Flavor]
}

// NewFlavorsClient creates a new FlavorsClient.
func NewFlavorsClient(httpClient *http.Client, apiVersion string) *FlavorsClient {
	return &FlavorsClient{
		resource: newResource[zen.Flavor](httpClient, apiVersion+constants.PathFlavors, "flavor", "flavors"),
	}
}

// List lists flavors matching filter.
func (c *FlavorsClient) List(ctx context.Context, filter *zen.FlavorFilter) ([]zen.Flavor, error) {
	var query url.Values
	if filter != nil {
		query = filter.ToValues()
	}

	return c.list(ctx, c.path, query)
}

// Get retrieves a flavor.
func (c *FlavorsClient) Get(ctx context.Context, id uuid.UUID) (*zen.Flavor, error) {
	return c.get(ctx, id)
}

// Create creates a flavor.
func (c *FlavorsClient) Create(ctx context.Context, flavor *zen.Flavor) (*zen.Flavor, error) {
	return c.create(ctx, flavor)
}

// Update replaces a flavor.
func (c *FlavorsClient) Update(ctx context.Context, id uuid.UUID, flavor *zen.Flavor) (*zen.Flavor, error) {
	return c.update(ctx, id, flavor)
}

// Delete deletes a flavor.
func (c *FlavorsClient) Delete(ctx context.Context, id uuid.UUID) error {
	return c.delete(ctx, id)
}

// Register creates a flavor from the source implementation it is built from.
func (c *FlavorsClient) Register(ctx context.Context, registration *zen.FlavorRegistration) (*zen.Flavor, error) {
	return c.create(ctx, registration)
}

// ListByType lists the flavors of one component type.
func (c *FlavorsClient) ListByType(ctx context.Context, componentType zen.ComponentType) ([]zen.Flavor, error) {
	return c.List(ctx, &zen.FlavorFilter{Type: componentType})
}

// GetByNameAndType returns the single flavor with the given name and type. No
// match is a zen.ErrNotFound, several matches are zen.ErrAmbiguousFlavor.
func (c *FlavorsClient) GetByNameAndType(ctx context.Context, name string, componentType zen.ComponentType) (*zen.Flavor, error) {
	filter := &zen.FlavorFilter{Name: name, Type: componentType}

	return c.getOne(ctx, filter.ToValues(), zen.ErrAmbiguousFlavor)
}
