package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewProjectsCommand creates the projects command group.
func NewProjectsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "Manage projects",
		Long:    "List, create, and delete projects and their code repositories",
	}

	cmd.AddCommand(newProjectsListCommand())
	cmd.AddCommand(newProjectsGetCommand())
	cmd.AddCommand(newProjectsCreateCommand())
	cmd.AddCommand(newProjectsDeleteCommand())
	cmd.AddCommand(newRepositoriesCommand())

	return cmd
}

func newProjectsListCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Long:  "List all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			projects, err := store.Projects().List(cmd.Context(), &zen.NameFilter{Name: name})
			if err != nil {
				return fmt.Errorf("failed to list projects: %w", err)
			}

			return renderList(cmd.OutOrStdout(), projects, "projects",
				[]string{"Name", "ID", "Description", "Created"},
				func(project zen.Project) []string {
					return []string{project.Name, project.ID.String(), formatValue(project.Description), formatDate(project.Created)}
				})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by name")

	return cmd
}

func newProjectsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get PROJECT_NAME_OR_ID",
		Short: "Get project details",
		Long:  "Display detailed information about a specific project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			project, err := resolveProject(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			return outputProject(cmd, project)
		},
	}
}

func newProjectsCreateCommand() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a project",
		Long:  "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			project, err := store.Projects().Create(cmd.Context(), &zen.Project{Name: args[0], Description: description})
			if err != nil {
				return fmt.Errorf("failed to create project: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Successfully created project '%s'\n", project.Name)

			return outputProject(cmd, project)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "project description")

	return cmd
}

func newProjectsDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete PROJECT_NAME_OR_ID",
		Short:      "Delete a project",
		Long:       "Delete a project",
		EntityType: "project",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			project, err := resolveProject(ctx, store, arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			return project.ID, project.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Projects().Delete(ctx, id)
		},
	})
}

func outputProject(cmd *cobra.Command, project *zen.Project) error {
	return render(cmd.OutOrStdout(), project, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("Name", project.Name)
		_ = table.Append("ID", project.ID.String())
		_ = table.Append("Description", formatValue(project.Description))
		_ = table.Append("Created", formatTime(project.Created))
		_ = table.Append("Updated", formatTime(project.Updated))
	})
}
