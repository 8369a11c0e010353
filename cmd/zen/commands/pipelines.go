package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewPipelinesCommand creates the pipelines command group.
func NewPipelinesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pipelines",
		Aliases: []string{"pipeline"},
		Short:   "Inspect pipelines",
		Long:    "List, inspect, and delete registered pipelines",
	}

	cmd.AddCommand(newPipelinesListCommand())
	cmd.AddCommand(newPipelinesGetCommand())
	cmd.AddCommand(newPipelinesConfigCommand())
	cmd.AddCommand(newPipelinesDeleteCommand())

	return cmd
}

func newPipelinesListCommand() *cobra.Command {
	var (
		name string
		user string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pipelines",
		Long:  "List pipelines, optionally filtered by project, user or name",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			filter := &zen.PipelineFilter{Name: name}

			filter.Project, err = optionalProjectID(ctx, cmd, store)
			if err != nil {
				return err
			}

			filter.User, err = parseOptionalID(user)
			if err != nil {
				return err
			}

			pipelines, err := store.Pipelines().List(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list pipelines: %w", err)
			}

			return renderList(cmd.OutOrStdout(), pipelines, "pipelines",
				[]string{"Name", "ID", "Project", "Created"},
				func(pipeline zen.Pipeline) []string {
					return []string{pipeline.Name, pipeline.ID.String(), pipeline.Project.String(), formatDate(pipeline.Created)}
				})
		},
	}

	cmd.Flags().String("project", "", "project name or id")
	cmd.Flags().StringVar(&name, "name", "", "filter by name")
	cmd.Flags().StringVar(&user, "user", "", "filter by owner id")

	return cmd
}

func newPipelinesGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get PIPELINE_NAME_OR_ID",
		Short: "Get pipeline details",
		Long:  "Display a pipeline by id, or by name within --project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			pipeline, err := findPipeline(cmd.Context(), cmd, store, args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), pipeline, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Name", pipeline.Name)
				_ = table.Append("ID", pipeline.ID.String())
				_ = table.Append("Project", pipeline.Project.String())
				_ = table.Append("User", formatID(&pipeline.User))
				_ = table.Append("Docstring", formatValue(pipeline.Docstring))
				_ = table.Append("Created", formatTime(pipeline.Created))
			})
		},
	}

	cmd.Flags().String("project", "", "project name or id")

	return cmd
}

func newPipelinesConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config PIPELINE_NAME_OR_ID",
		Short: "Show pipeline configuration",
		Long:  "Display the configuration document of a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			pipeline, err := findPipeline(ctx, cmd, store, args[0])
			if err != nil {
				return err
			}

			configuration, err := store.Pipelines().GetConfiguration(ctx, pipeline.ID)
			if err != nil {
				return fmt.Errorf("failed to get pipeline configuration: %w", err)
			}

			return renderDocument(cmd.OutOrStdout(), configuration)
		},
	}

	cmd.Flags().String("project", "", "project name or id")

	return cmd
}

func newPipelinesDeleteCommand() *cobra.Command {
	cmd := createDeleteCommand(DeleteConfig{
		Use:        "delete PIPELINE_NAME_OR_ID",
		Short:      "Delete a pipeline",
		Long:       "Delete a pipeline; its runs become unlisted",
		EntityType: "pipeline",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			pipeline, err := resolvePipeline(ctx, store, arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			return pipeline.ID, pipeline.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Pipelines().Delete(ctx, id)
		},
	})

	return cmd
}

// findPipeline looks a pipeline up by id, or by name within the selected project.
func findPipeline(ctx context.Context, cmd *cobra.Command, store zen.Store, arg string) (*zen.Pipeline, error) {
	if _, err := uuid.Parse(arg); err == nil || projectFlag(cmd) == "" {
		return resolvePipeline(ctx, store, arg)
	}

	project, err := resolveProject(ctx, store, projectFlag(cmd))
	if err != nil {
		return nil, err
	}

	pipeline, err := store.Pipelines().GetInProject(ctx, project.ID, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to find pipeline: %w", err)
	}

	return pipeline, nil
}
