package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewRunsCommand creates the runs command group.
func NewRunsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "runs",
		Aliases: []string{"run"},
		Short:   "Inspect pipeline runs",
		Long:    "List and inspect pipeline runs, their steps, graph and configuration",
	}

	cmd.AddCommand(newRunsListCommand())
	cmd.AddCommand(newRunsGetCommand())
	cmd.AddCommand(newRunsStepsCommand())
	cmd.AddCommand(newRunsGraphCommand())
	cmd.AddCommand(newRunsConfigCommand())
	cmd.AddCommand(newRunsSideEffectsCommand())
	cmd.AddCommand(newRunsDeleteCommand())

	return cmd
}

func newRunsListCommand() *cobra.Command {
	var (
		name     string
		stack    string
		pipeline string
		user     string
		status   string
		unlisted bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pipeline runs",
		Long:  "List pipeline runs, optionally filtered by project, stack, pipeline, user or status",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			filter := &zen.RunFilter{Name: name, Status: zen.ExecutionStatus(status)}

			filter.Project, err = optionalProjectID(ctx, cmd, store)
			if err != nil {
				return err
			}

			filter.User, err = parseOptionalID(user)
			if err != nil {
				return err
			}

			if stack != "" {
				found, err := resolveStack(ctx, store, stack)
				if err != nil {
					return err
				}

				filter.Stack = &found.ID
			}

			if pipeline != "" {
				found, err := resolvePipeline(ctx, store, pipeline)
				if err != nil {
					return err
				}

				filter.Pipeline = &found.ID
			}

			if cmd.Flags().Changed("unlisted") {
				filter.Unlisted = &unlisted
			}

			runs, err := store.Runs().List(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			return renderList(cmd.OutOrStdout(), runs, "runs",
				[]string{"Name", "ID", "Status", "Pipeline", "Stack", "Created"},
				func(run zen.PipelineRun) []string {
					return []string{
						run.Name, run.ID.String(), string(run.Status), formatID(run.PipelineID),
						run.StackID.String(), formatDate(run.Created),
					}
				})
		},
	}

	cmd.Flags().String("project", "", "project name or id")
	cmd.Flags().StringVar(&name, "name", "", "filter by name")
	cmd.Flags().StringVar(&stack, "stack", "", "filter by stack name or id")
	cmd.Flags().StringVar(&pipeline, "pipeline", "", "filter by pipeline name or id")
	cmd.Flags().StringVar(&user, "user", "", "filter by owner id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (running, completed, failed, cached)")
	cmd.Flags().BoolVar(&unlisted, "unlisted", false, "only runs without a pipeline")

	return cmd
}

func newRunsGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get RUN_NAME_OR_ID",
		Short: "Get run details",
		Long:  "Display a pipeline run by id, or by name within --project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			run, err := findRun(cmd.Context(), cmd, store, args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), run, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Name", run.Name)
				_ = table.Append("ID", run.ID.String())
				_ = table.Append("Status", string(run.Status))
				_ = table.Append("Pipeline", formatID(run.PipelineID))
				_ = table.Append("Stack", run.StackID.String())
				_ = table.Append("Project", run.Project.String())
				_ = table.Append("Version", formatValue(run.ZenMLVersion))
				_ = table.Append("Git SHA", formatValue(run.GitSHA))
				_ = table.Append("Created", formatTime(run.Created))
			})
		},
	}

	cmd.Flags().String("project", "", "project name or id")

	return cmd
}

func newRunsStepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "steps RUN_NAME_OR_ID",
		Short: "List the steps of a run",
		Long:  "List the step runs of a pipeline run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			run, err := resolveRun(ctx, store, args[0])
			if err != nil {
				return err
			}

			steps, err := store.Runs().ListSteps(ctx, run.ID)
			if err != nil {
				return fmt.Errorf("failed to list steps: %w", err)
			}

			return renderSteps(cmd, steps)
		},
	}
}

func newRunsGraphCommand() *cobra.Command {
	return newRunDocumentCommand("graph", "Show the run graph", "Display the graph of the steps of a pipeline run",
		func(ctx context.Context, store zen.Store, id uuid.UUID) (map[string]interface{}, error) {
			return store.Runs().GetDAG(ctx, id)
		})
}

func newRunsConfigCommand() *cobra.Command {
	return newRunDocumentCommand("config", "Show the runtime configuration", "Display the runtime configuration of a pipeline run",
		func(ctx context.Context, store zen.Store, id uuid.UUID) (map[string]interface{}, error) {
			return store.Runs().GetRuntimeConfiguration(ctx, id)
		})
}

func newRunsSideEffectsCommand() *cobra.Command {
	var (
		component     string
		componentType string
	)

	cmd := newRunDocumentCommand("side-effects", "Show component side effects", "Display what stack components reported for a pipeline run",
		func(ctx context.Context, store zen.Store, id uuid.UUID) (map[string]interface{}, error) {
			filter := &zen.SideEffectsFilter{ComponentType: zen.ComponentType(componentType)}

			var err error

			filter.Component, err = parseOptionalID(component)
			if err != nil {
				return nil, err
			}

			return store.Runs().GetComponentSideEffects(ctx, id, filter)
		})

	cmd.Flags().StringVar(&component, "component", "", "only the side effects of this component id")
	cmd.Flags().StringVarP(&componentType, "type", "t", "", "only the side effects of this component type")

	return cmd
}

func newRunsDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete RUN_NAME_OR_ID",
		Short:      "Delete a run",
		Long:       "Delete a pipeline run",
		EntityType: "run",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			run, err := resolveRun(ctx, store, arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			return run.ID, run.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Runs().Delete(ctx, id)
		},
	})
}

func newRunDocumentCommand(use, short, long string,
	fetch func(ctx context.Context, store zen.Store, id uuid.UUID) (map[string]interface{}, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " RUN_NAME_OR_ID",
		Short: short,
		Long:  long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			run, err := resolveRun(ctx, store, args[0])
			if err != nil {
				return err
			}

			document, err := fetch(ctx, store, run.ID)
			if err != nil {
				return fmt.Errorf("failed to get %s of run '%s': %w", use, run.Name, err)
			}

			return renderDocument(cmd.OutOrStdout(), document)
		},
	}
}

// findRun looks a run up by id, or by name within the selected project.
func findRun(ctx context.Context, cmd *cobra.Command, store zen.Store, arg string) (*zen.PipelineRun, error) {
	if _, err := uuid.Parse(arg); err == nil || projectFlag(cmd) == "" {
		return resolveRun(ctx, store, arg)
	}

	project, err := resolveProject(ctx, store, projectFlag(cmd))
	if err != nil {
		return nil, err
	}

	run, err := store.Runs().GetInProject(ctx, project.ID, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}

	return run, nil
}
