package commands_test

import (
	"testing"

	"github.com/fivetwenty-io/zenml-client/cmd/zen/commands"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		cmd         *cobra.Command
		use         string
		subcommands []string
	}{
		{
			name:        "stacks",
			cmd:         commands.NewStacksCommand(),
			use:         "stacks",
			subcommands: []string{"list", "get", "create", "delete", "default", "set-default"},
		},
		{
			name:        "components",
			cmd:         commands.NewComponentsCommand(),
			use:         "components",
			subcommands: []string{"list", "get", "create", "delete", "types"},
		},
		{
			name:        "flavors",
			cmd:         commands.NewFlavorsCommand(),
			use:         "flavors",
			subcommands: []string{"list", "get", "register", "delete"},
		},
		{
			name:        "projects",
			cmd:         commands.NewProjectsCommand(),
			use:         "projects",
			subcommands: []string{"list", "get", "create", "delete", "repositories"},
		},
		{
			name:        "users",
			cmd:         commands.NewUsersCommand(),
			use:         "users",
			subcommands: []string{"list", "get", "create", "delete", "invite", "revoke-invite", "teams"},
		},
		{
			name:        "teams",
			cmd:         commands.NewTeamsCommand(),
			use:         "teams",
			subcommands: []string{"list", "create", "delete", "members", "add-user", "remove-user"},
		},
		{
			name:        "roles",
			cmd:         commands.NewRolesCommand(),
			use:         "roles",
			subcommands: []string{"list", "create", "delete", "assign", "revoke", "assignments"},
		},
		{
			name:        "pipelines",
			cmd:         commands.NewPipelinesCommand(),
			use:         "pipelines",
			subcommands: []string{"list", "get", "config", "delete"},
		},
		{
			name:        "runs",
			cmd:         commands.NewRunsCommand(),
			use:         "runs",
			subcommands: []string{"list", "get", "steps", "graph", "config", "side-effects", "delete"},
		},
		{
			name:        "steps",
			cmd:         commands.NewStepsCommand(),
			use:         "steps",
			subcommands: []string{"get", "status", "artifacts"},
		},
		{
			name:        "artifacts",
			cmd:         commands.NewArtifactsCommand(),
			use:         "artifacts",
			subcommands: []string{"list", "get", "delete"},
		},
		{
			name:        "token",
			cmd:         commands.NewTokenCommand(),
			use:         "token",
			subcommands: []string{"status", "renew"},
		},
		{
			name:        "config",
			cmd:         commands.NewConfigCommand(),
			use:         "config",
			subcommands: []string{"show", "set", "unset"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short)
			assert.Len(t, tt.cmd.Commands(), len(tt.subcommands))

			for _, name := range tt.subcommands {
				sub := findSubcommand(tt.cmd, name)
				require.NotNil(t, sub, name)
				assert.NotEmpty(t, sub.Short, name)
			}
		})
	}
}

func TestDeleteCommandsHaveForceFlag(t *testing.T) {
	t.Parallel()

	for _, group := range []*cobra.Command{
		commands.NewStacksCommand(),
		commands.NewComponentsCommand(),
		commands.NewProjectsCommand(),
		commands.NewUsersCommand(),
		commands.NewRunsCommand(),
		commands.NewArtifactsCommand(),
	} {
		deleteCmd := findSubcommand(group, "delete")
		require.NotNil(t, deleteCmd, group.Name())

		force := deleteCmd.Flags().Lookup("force")
		require.NotNil(t, force, group.Name())
		assert.Equal(t, "f", force.Shorthand)
		assert.NotNil(t, deleteCmd.Args)
	}
}

func TestLoginCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)

	for _, flag := range []string{"url", "username", "password"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}

	assert.Equal(t, "u", cmd.Flags().Lookup("username").Shorthand)
	assert.Equal(t, "p", cmd.Flags().Lookup("password").Shorthand)
}
