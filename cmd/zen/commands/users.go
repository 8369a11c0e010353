package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage users",
		Long:    "List, create, delete, and invite users",
	}

	cmd.AddCommand(newUsersListCommand())
	cmd.AddCommand(newUsersGetCommand())
	cmd.AddCommand(newUsersCreateCommand())
	cmd.AddCommand(newUsersDeleteCommand())
	cmd.AddCommand(newUsersInviteCommand())
	cmd.AddCommand(newUsersRevokeInviteCommand())
	cmd.AddCommand(newUsersTeamsCommand())

	return cmd
}

func newUsersListCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Long:  "List all users",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			users, err := store.Users().List(cmd.Context(), &zen.NameFilter{Name: name})
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			return renderUsers(cmd, users)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by name")

	return cmd
}

func newUsersGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get USER_NAME_OR_ID",
		Short: "Get user details",
		Long:  "Display detailed information about a specific user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			user, err := resolveUser(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), user, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Name", user.Name)
				_ = table.Append("ID", user.ID.String())
				_ = table.Append("Full Name", formatValue(user.FullName))
				_ = table.Append("Email", formatValue(user.Email))
				_ = table.Append("Active", strconv.FormatBool(user.Active))
				_ = table.Append("Created", formatTime(user.Created))
			})
		},
	}
}

func newUsersCreateCommand() *cobra.Command {
	var (
		fullName string
		email    string
		invite   bool
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a user",
		Long:  "Create a user account, optionally issuing an invitation token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			user, err := store.Users().Create(ctx, &zen.User{Name: args[0], FullName: fullName, Email: email, Active: !invite})
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully created user '%s' (%s)\n", user.Name, user.ID)

			if !invite {
				return nil
			}

			return issueInvite(cmd, store, user)
		},
	}

	cmd.Flags().StringVar(&fullName, "full-name", "", "full name of the user")
	cmd.Flags().StringVar(&email, "email", "", "email address of the user")
	cmd.Flags().BoolVar(&invite, "invite", false, "create the user inactive and issue an invitation token")

	return cmd
}

func newUsersDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete USER_NAME_OR_ID",
		Short:      "Delete a user",
		Long:       "Delete a user account",
		EntityType: "user",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			user, err := resolveUser(ctx, store, arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			return user.ID, user.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Users().Delete(ctx, id)
		},
	})
}

func newUsersInviteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invite USER_NAME_OR_ID",
		Short: "Issue an invitation token",
		Long:  "Issue a new invitation token for a user, replacing any previous one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			user, err := resolveUser(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			return issueInvite(cmd, store, user)
		},
	}
}

func newUsersRevokeInviteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-invite USER_NAME_OR_ID",
		Short: "Invalidate an invitation token",
		Long:  "Invalidate the pending invitation token of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			user, err := resolveUser(ctx, store, args[0])
			if err != nil {
				return err
			}

			err = store.Users().InvalidateInviteToken(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to invalidate invitation: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Invitation of user '%s' invalidated\n", user.Name)

			return nil
		},
	}
}

func newUsersTeamsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "teams USER_NAME_OR_ID",
		Short: "List the teams of a user",
		Long:  "List the teams a user is a member of",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			user, err := resolveUser(ctx, store, args[0])
			if err != nil {
				return err
			}

			teams, err := store.Users().ListTeams(ctx, user.ID)
			if err != nil {
				return fmt.Errorf("failed to list teams: %w", err)
			}

			return renderTeams(cmd, teams)
		},
	}
}

func issueInvite(cmd *cobra.Command, store zen.Store, user *zen.User) error {
	token, err := store.Users().IssueInviteToken(cmd.Context(), user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue invitation: %w", err)
	}

	return render(cmd.OutOrStdout(), map[string]string{"user": user.Name, "invite_token": token},
		func(table *tablewriter.Table) {
			table.Header("User", "Invitation Token")
			_ = table.Append(user.Name, token)
		})
}

func renderUsers(cmd *cobra.Command, users []zen.User) error {
	return renderList(cmd.OutOrStdout(), users, "users",
		[]string{"Name", "ID", "Full Name", "Email", "Active"},
		func(user zen.User) []string {
			return []string{user.Name, user.ID.String(), formatValue(user.FullName), formatValue(user.Email), strconv.FormatBool(user.Active)}
		})
}
