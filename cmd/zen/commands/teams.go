package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewTeamsCommand creates the teams command group.
func NewTeamsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "teams",
		Aliases: []string{"team"},
		Short:   "Manage teams",
		Long:    "List, create, and delete teams and manage their members",
	}

	cmd.AddCommand(newTeamsListCommand())
	cmd.AddCommand(newTeamsCreateCommand())
	cmd.AddCommand(newTeamsDeleteCommand())
	cmd.AddCommand(newTeamsMembersCommand())
	cmd.AddCommand(newTeamsMembershipCommand("add-user", "Add a user to a team", true))
	cmd.AddCommand(newTeamsMembershipCommand("remove-user", "Remove a user from a team", false))

	return cmd
}

func newTeamsListCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List teams",
		Long:  "List all teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			teams, err := store.Teams().List(cmd.Context(), &zen.NameFilter{Name: name})
			if err != nil {
				return fmt.Errorf("failed to list teams: %w", err)
			}

			return renderTeams(cmd, teams)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by name")

	return cmd
}

func newTeamsCreateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create NAME",
		Short: "Create a team",
		Long:  "Create a new team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			team, err := store.Teams().Create(cmd.Context(), &zen.Team{Name: args[0]})
			if err != nil {
				return fmt.Errorf("failed to create team: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully created team '%s' (%s)\n", team.Name, team.ID)

			return nil
		},
	}
}

func newTeamsDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete TEAM_NAME_OR_ID",
		Short:      "Delete a team",
		Long:       "Delete a team; its members are kept",
		EntityType: "team",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			team, err := resolveTeam(ctx, store, arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			return team.ID, team.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Teams().Delete(ctx, id)
		},
	})
}

func newTeamsMembersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "members TEAM_NAME_OR_ID",
		Short: "List team members",
		Long:  "List the users that are members of a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			team, err := resolveTeam(ctx, store, args[0])
			if err != nil {
				return err
			}

			users, err := store.Teams().ListUsers(ctx, team.ID)
			if err != nil {
				return fmt.Errorf("failed to list team members: %w", err)
			}

			return renderUsers(cmd, users)
		},
	}
}

func newTeamsMembershipCommand(use, short string, add bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " TEAM_NAME_OR_ID USER_NAME_OR_ID",
		Short: short,
		Long:  short,
		Args:  cobra.ExactArgs(2), //nolint:mnd // team and user
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			team, err := resolveTeam(ctx, store, args[0])
			if err != nil {
				return err
			}

			user, err := resolveUser(ctx, store, args[1])
			if err != nil {
				return err
			}

			if add {
				err = store.Teams().AddUser(ctx, team.ID, user.ID)
			} else {
				err = store.Teams().RemoveUser(ctx, team.ID, user.ID)
			}

			if err != nil {
				return fmt.Errorf("failed to update team membership: %w", err)
			}

			if add {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Added user '%s' to team '%s'\n", user.Name, team.Name)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed user '%s' from team '%s'\n", user.Name, team.Name)
			}

			return nil
		},
	}
}

func renderTeams(cmd *cobra.Command, teams []zen.Team) error {
	return renderList(cmd.OutOrStdout(), teams, "teams", []string{"Name", "ID", "Created"},
		func(team zen.Team) []string {
			return []string{team.Name, team.ID.String(), formatDate(team.Created)}
		})
}
