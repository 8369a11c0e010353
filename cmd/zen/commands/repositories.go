package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRepositoriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "repositories",
		Aliases: []string{"repos", "repo"},
		Short:   "Manage code repositories",
		Long:    "List, connect, and delete the code repositories of a project",
	}

	cmd.PersistentFlags().String("project", "", "project name or id")

	cmd.AddCommand(newRepositoriesListCommand())
	cmd.AddCommand(newRepositoriesCreateCommand())
	cmd.AddCommand(newRepositoriesDeleteCommand())

	return cmd
}

func newRepositoriesListCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List repositories",
		Long:  "List the code repositories connected to a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			project, err := resolveProject(ctx, store, projectFlag(cmd))
			if err != nil {
				return err
			}

			repositories, err := store.Repositories().List(ctx, project.ID, &zen.RepositoryFilter{Name: name})
			if err != nil {
				return fmt.Errorf("failed to list repositories: %w", err)
			}

			return renderList(cmd.OutOrStdout(), repositories, "repositories",
				[]string{"Name", "ID", "Connection", "Created"},
				func(repository zen.Repository) []string {
					return []string{repository.Name, repository.ID.String(), formatMap(repository.Connection), formatDate(repository.Created)}
				})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by name")

	return cmd
}

func newRepositoriesCreateCommand() *cobra.Command {
	var connection []string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Connect a repository",
		Long:  "Connect a code repository to a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := parseKeyValues(connection)
			if err != nil {
				return err
			}

			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			scope, err := currentScope(ctx, cmd, store)
			if err != nil {
				return err
			}

			repository, err := store.Repositories().Create(ctx, &zen.Repository{Scope: scope, Name: args[0], Connection: settings})
			if err != nil {
				return fmt.Errorf("failed to create repository: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully connected repository '%s' (%s)\n", repository.Name, repository.ID)

			return nil
		},
	}

	cmd.Flags().StringArrayVar(&connection, "connection", nil, "connection setting as KEY=VALUE (repeatable)")

	return cmd
}

func newRepositoriesDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete REPOSITORY_ID",
		Short:      "Delete a repository",
		Long:       "Disconnect a code repository",
		EntityType: "repository",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			id, err := parseID(arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			repository, err := store.Repositories().Get(ctx, id)
			if err != nil {
				return uuid.Nil, "", fmt.Errorf("failed to get repository: %w", err)
			}

			return repository.ID, repository.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Repositories().Delete(ctx, id)
		},
	})
}
