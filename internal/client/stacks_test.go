package client_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestStacksClient(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		_, store := newStore(t)
		ctx := context.Background()
		project := createProject(t, store, "default")

		component, err := store.Components().Create(ctx, &zen.Component{
			Scope:  zen.Scope{Project: project.ID},
			Name:   "local",
			Type:   zen.ComponentTypeOrchestrator,
			Flavor: "local",
		})
		require.NoError(t, err)

		created, err := store.Stacks().Create(ctx, &zen.Stack{
			Scope: zen.Scope{Project: project.ID},
			Name:  "default",
			Components: map[zen.ComponentType][]uuid.UUID{
				zen.ComponentTypeOrchestrator: {component.ID},
			},
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.False(t, created.Created.IsZero())

		fetched, err := store.Stacks().Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, fetched)
		assert.Equal(t, []uuid.UUID{component.ID}, fetched.Components[zen.ComponentTypeOrchestrator])

		fetched.Description = "laptop"

		updated, err := store.Stacks().Update(ctx, created.ID, fetched)
		require.NoError(t, err)
		assert.Equal(t, "laptop", updated.Description)
		assert.Equal(t, created.ID, updated.ID)

		require.NoError(t, store.Stacks().Delete(ctx, created.ID))

		err = store.Stacks().Delete(ctx, created.ID)
		require.ErrorIs(t, err, zen.ErrNotFound)
		assert.NotErrorIs(t, err, zen.ErrDoesNotExist)

		_, err = store.Stacks().Get(ctx, created.ID)
		require.ErrorIs(t, err, zen.ErrNotFound)
		assert.True(t, zen.IsNotFound(err))
	})

	t.Run("duplicate name is a stack conflict", func(t *testing.T) {
		t.Parallel()

		_, store := newStore(t)
		ctx := context.Background()
		project := createProject(t, store, "default")

		createStack(t, store, project.ID, "default")

		_, err := store.Stacks().Create(ctx, &zen.Stack{Scope: zen.Scope{Project: project.ID}, Name: "default"})
		require.ErrorIs(t, err, zen.ErrStackExists)
		assert.ErrorIs(t, err, zen.ErrEntityExists)
		assert.ErrorIs(t, err, zen.ErrConflict)
		assert.NotErrorIs(t, err, zen.ErrComponentExists)

		zerr, ok := zen.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "StackExistsError", zerr.Detail[0])

		other := createProject(t, store, "other")
		createStack(t, store, other.ID, "default")
	})

	t.Run("filters", func(t *testing.T) {
		t.Parallel()

		_, store := newStore(t)
		ctx := context.Background()
		first := createProject(t, store, "first")
		second := createProject(t, store, "second")

		createStack(t, store, first.ID, "a")
		createStack(t, store, first.ID, "b")
		createStack(t, store, second.ID, "a")

		shared, err := store.Stacks().Create(ctx, &zen.Stack{Scope: zen.Scope{Project: second.ID}, Name: "shared", IsShared: true})
		require.NoError(t, err)

		all, err := store.Stacks().List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 4)

		inFirst, err := store.Stacks().List(ctx, &zen.StackFilter{Project: &first.ID})
		require.NoError(t, err)
		assert.Len(t, inFirst, 2)

		named, err := store.Stacks().List(ctx, &zen.StackFilter{Project: &second.ID, Name: "a"})
		require.NoError(t, err)
		require.Len(t, named, 1)
		assert.Equal(t, second.ID, named[0].Project)

		onlyShared, err := store.Stacks().List(ctx, &zen.StackFilter{IsShared: zen.Ptr(true)})
		require.NoError(t, err)
		require.Len(t, onlyShared, 1)
		assert.Equal(t, shared.ID, onlyShared[0].ID)

		none, err := store.Stacks().List(ctx, &zen.StackFilter{Name: "missing"})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("default stack", func(t *testing.T) {
		t.Parallel()

		_, store := newStore(t)
		ctx := context.Background()
		project := createProject(t, store, "default")

		_, err := store.Stacks().GetDefault(ctx, project.ID)
		require.ErrorIs(t, err, zen.ErrDoesNotExist)
		assert.ErrorIs(t, err, zen.ErrNotFound)

		stack := createStack(t, store, project.ID, "default")

		set, err := store.Stacks().SetDefault(ctx, project.ID, stack.ID)
		require.NoError(t, err)
		assert.Equal(t, stack.ID, set.ID)

		current, err := store.Stacks().GetDefault(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, stack.ID, current.ID)

		_, err = store.Stacks().SetDefault(ctx, project.ID, uuid.New())
		require.ErrorIs(t, err, zen.ErrNotFound)
	})
}

func TestComponentsClient(t *testing.T) {
	t.Parallel()

	_, store := newStore(t)
	ctx := context.Background()
	project := createProject(t, store, "default")

	component := &zen.Component{
		Scope:         zen.Scope{Project: project.ID},
		Name:          "s3",
		Type:          zen.ComponentTypeArtifactStore,
		Flavor:        "s3",
		Configuration: map[string]interface{}{"path": "s3://bucket"},
	}

	created, err := store.Components().Create(ctx, component)
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket", created.Configuration["path"])

	_, err = store.Components().Create(ctx, component)
	require.ErrorIs(t, err, zen.ErrComponentExists)
	assert.NotErrorIs(t, err, zen.ErrStackExists)
	assert.True(t, zen.IsAlreadyExists(err))

	component.Type = zen.ComponentTypeOrchestrator

	_, err = store.Components().Create(ctx, component)
	require.NoError(t, err, "names are unique per type")

	stores, err := store.Components().List(ctx, &zen.ComponentFilter{Type: zen.ComponentTypeArtifactStore})
	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, created.ID, stores[0].ID)

	types, err := store.Components().ListTypes(ctx)
	require.NoError(t, err)
	assert.Contains(t, types, zen.ComponentTypeOrchestrator)
	assert.Contains(t, types, zen.ComponentTypeArtifactStore)
}

func TestFlavorsClient(t *testing.T) {
	t.Parallel()

	_, store := newStore(t)
	ctx := context.Background()
	first := createProject(t, store, "first")
	second := createProject(t, store, "second")

	registered, err := store.Flavors().Register(ctx, &zen.FlavorRegistration{
		Scope:  zen.Scope{Project: first.ID},
		Source: "zenml.integrations.aws.S3ArtifactStoreFlavor",
		Name:   "s3",
		Type:   zen.ComponentTypeArtifactStore,
	})
	require.NoError(t, err)
	assert.Equal(t, "zenml.integrations.aws.S3ArtifactStoreFlavor", registered.Source)

	found, err := store.Flavors().GetByNameAndType(ctx, "s3", zen.ComponentTypeArtifactStore)
	require.NoError(t, err)
	assert.Equal(t, registered.ID, found.ID)

	_, err = store.Flavors().GetByNameAndType(ctx, "s3", zen.ComponentTypeOrchestrator)
	require.ErrorIs(t, err, zen.ErrNotFound)

	_, err = store.Flavors().Create(ctx, &zen.Flavor{Scope: zen.Scope{Project: second.ID}, Name: "s3", Type: zen.ComponentTypeArtifactStore})
	require.NoError(t, err)

	_, err = store.Flavors().GetByNameAndType(ctx, "s3", zen.ComponentTypeArtifactStore)
	require.ErrorIs(t, err, zen.ErrAmbiguousFlavor)
	assert.False(t, errors.Is(err, zen.ErrNotFound))

	byType, err := store.Flavors().ListByType(ctx, zen.ComponentTypeArtifactStore)
	require.NoError(t, err)
	assert.Len(t, byType, 2)
}
