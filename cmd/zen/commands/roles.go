package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewRolesCommand creates the roles command group.
func NewRolesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "roles",
		Aliases: []string{"role"},
		Short:   "Manage roles",
		Long:    "List, create, and delete roles and assign them to users and teams",
	}

	cmd.AddCommand(newRolesListCommand())
	cmd.AddCommand(newRolesCreateCommand())
	cmd.AddCommand(newRolesDeleteCommand())
	cmd.AddCommand(newRolesGrantCommand("assign", "Assign a role", true))
	cmd.AddCommand(newRolesGrantCommand("revoke", "Revoke a role", false))
	cmd.AddCommand(newRolesAssignmentsCommand())

	return cmd
}

func newRolesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List roles",
		Long:  "List all roles and their permissions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			roles, err := store.Roles().List(cmd.Context(), nil)
			if err != nil {
				return fmt.Errorf("failed to list roles: %w", err)
			}

			return renderList(cmd.OutOrStdout(), roles, "roles", []string{"Name", "ID", "Permissions"},
				func(role zen.Role) []string {
					return []string{role.Name, role.ID.String(), formatValue(strings.Join(role.Permissions, ", "))}
				})
		},
	}
}

func newRolesCreateCommand() *cobra.Command {
	var permissions []string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a role",
		Long:  "Create a role with a set of permissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			role, err := store.Roles().Create(cmd.Context(), &zen.Role{Name: args[0], Permissions: permissions})
			if err != nil {
				return fmt.Errorf("failed to create role: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully created role '%s' (%s)\n", role.Name, role.ID)

			return nil
		},
	}

	cmd.Flags().StringSliceVar(&permissions, "permission", nil, "permission granted by the role (repeatable)")

	return cmd
}

func newRolesDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete ROLE_NAME_OR_ID",
		Short:      "Delete a role",
		Long:       "Delete a role",
		EntityType: "role",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			role, err := resolveRole(ctx, store, arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			return role.ID, role.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Roles().Delete(ctx, id)
		},
	})
}

func newRolesGrantCommand(use, short string, assign bool) *cobra.Command {
	var (
		user string
		team string
	)

	cmd := &cobra.Command{
		Use:   use + " ROLE_NAME_OR_ID",
		Short: short,
		Long:  short + " of a user or team, globally or within --project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (user == "") == (team == "") {
				return constants.ErrInvalidSubjectKind
			}

			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			grant, subject, err := buildRoleGrant(ctx, cmd, store, args[0], user, team)
			if err != nil {
				return err
			}

			if assign {
				_, err = store.Roles().Assign(ctx, grant)
			} else {
				err = store.Roles().Revoke(ctx, grant)
			}

			if err != nil {
				return fmt.Errorf("failed to %s role: %w", use, err)
			}

			if assign {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Assigned role '%s' to %s '%s'\n", args[0], grant.Kind, subject)
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Revoked role '%s' from %s '%s'\n", args[0], grant.Kind, subject)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user name or id")
	cmd.Flags().StringVar(&team, "team", "", "team name or id")
	cmd.Flags().String("project", "", "project name or id scoping the role")

	return cmd
}

func buildRoleGrant(ctx context.Context, cmd *cobra.Command, store zen.Store, roleArg, user, team string) (zen.RoleGrant, string, error) {
	role, err := resolveRole(ctx, store, roleArg)
	if err != nil {
		return zen.RoleGrant{}, "", err
	}

	grant := zen.RoleGrant{Role: role.ID}

	var subject string

	if user != "" {
		found, err := resolveUser(ctx, store, user)
		if err != nil {
			return zen.RoleGrant{}, "", err
		}

		grant.Kind, grant.Subject, subject = zen.SubjectUser, found.ID, found.Name
	} else {
		found, err := resolveTeam(ctx, store, team)
		if err != nil {
			return zen.RoleGrant{}, "", err
		}

		grant.Kind, grant.Subject, subject = zen.SubjectTeam, found.ID, found.Name
	}

	if flag := cmd.Flags().Lookup("project"); flag != nil && flag.Changed {
		grant.Project, err = optionalProjectID(ctx, cmd, store)
		if err != nil {
			return zen.RoleGrant{}, "", err
		}
	}

	return grant, subject, nil
}

func newRolesAssignmentsCommand() *cobra.Command {
	var (
		user string
		team string
	)

	cmd := &cobra.Command{
		Use:   "assignments",
		Short: "List role assignments",
		Long:  "List role assignments, optionally filtered by project, user or team",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			filter := &zen.RoleAssignmentFilter{}

			filter.Project, err = optionalProjectID(ctx, cmd, store)
			if err != nil {
				return err
			}

			if user != "" {
				found, err := resolveUser(ctx, store, user)
				if err != nil {
					return err
				}

				filter.User = &found.ID
			}

			if team != "" {
				found, err := resolveTeam(ctx, store, team)
				if err != nil {
					return err
				}

				filter.Team = &found.ID
			}

			assignments, err := store.Roles().ListAssignments(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list role assignments: %w", err)
			}

			return renderList(cmd.OutOrStdout(), assignments, "role assignments",
				[]string{"ID", "Role", "Subject", "Kind", "Project"},
				func(assignment zen.RoleAssignment) []string {
					subject := assignment.SubjectID()

					return []string{
						assignment.ID.String(), assignment.Role.String(), subject.String(),
						string(assignment.SubjectKind()), formatID(assignment.Project),
					}
				})
		},
	}

	cmd.Flags().String("project", "", "project name or id")
	cmd.Flags().StringVar(&user, "user", "", "user name or id")
	cmd.Flags().StringVar(&team, "team", "", "team name or id")

	return cmd
}
