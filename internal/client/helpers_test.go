package client_test

import (
	"context"
	"testing"

	"github.com/fivetwenty-io/zenml-client/internal/client"
	"github.com/fivetwenty-io/zenml-client/internal/zentest"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// newStore starts a fake server and a store logged in with its default account.
func newStore(t *testing.T, opts ...zentest.Option) (*zentest.Server, *client.Client) {
	t.Helper()

	server := zentest.New(t, opts...)

	store, err := client.New(&zen.Config{
		URL:      server.URL,
		Username: zentest.DefaultUsername,
		Password: zentest.DefaultPassword,
	})
	require.NoError(t, err)

	return server, store
}

func createProject(t *testing.T, store zen.Store, name string) *zen.Project {
	t.Helper()

	project, err := store.Projects().Create(context.Background(), &zen.Project{Name: name})
	require.NoError(t, err)

	return project
}

func createUser(t *testing.T, store zen.Store, name string) *zen.User {
	t.Helper()

	user, err := store.Users().Create(context.Background(), &zen.User{Name: name, Active: true})
	require.NoError(t, err)

	return user
}

func createStack(t *testing.T, store zen.Store, project uuid.UUID, name string) *zen.Stack {
	t.Helper()

	stack, err := store.Stacks().Create(context.Background(), &zen.Stack{
		Scope:      zen.Scope{Project: project},
		Name:       name,
		Components: map[zen.ComponentType][]uuid.UUID{},
	})
	require.NoError(t, err)

	return stack
}
