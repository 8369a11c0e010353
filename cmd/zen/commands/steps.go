package commands

import (
	"fmt"
	"strings"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewStepsCommand creates the steps command group.
func NewStepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "steps",
		Aliases: []string{"step"},
		Short:   "Inspect step runs",
		Long:    "Inspect step runs, their status and the artifacts they consumed and produced",
	}

	cmd.AddCommand(newStepsGetCommand())
	cmd.AddCommand(newStepsStatusCommand())
	cmd.AddCommand(newStepsArtifactsCommand())

	return cmd
}

func newStepsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get STEP_ID",
		Short: "Get step details",
		Long:  "Display detailed information about a step run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := CreateStore()
			if err != nil {
				return err
			}

			step, err := store.Steps().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get step: %w", err)
			}

			return render(cmd.OutOrStdout(), step, func(table *tablewriter.Table) {
				parents := make([]string, 0, len(step.ParentStepIDs))
				for _, parent := range step.ParentStepIDs {
					parents = append(parents, parent.String())
				}

				table.Header("Property", "Value")
				_ = table.Append("Name", step.Name)
				_ = table.Append("ID", step.ID.String())
				_ = table.Append("Run", step.PipelineRunID.String())
				_ = table.Append("Entrypoint", formatValue(step.EntrypointName))
				_ = table.Append("Status", string(step.Status))
				_ = table.Append("Parents", formatValue(strings.Join(parents, "\n")))
				_ = table.Append("Parameters", formatMap(step.Parameters))
				_ = table.Append("Created", formatTime(step.Created))
			})
		},
	}
}

func newStepsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status STEP_ID",
		Short: "Show step status",
		Long:  "Display the execution status of a step run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := CreateStore()
			if err != nil {
				return err
			}

			status, err := store.Steps().GetStatus(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get step status: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), status)

			return nil
		},
	}
}

func newStepsArtifactsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts STEP_ID",
		Short: "List step artifacts",
		Long:  "List the input and output artifacts of a step run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := CreateStore()
			if err != nil {
				return err
			}

			artifacts, err := store.Steps().GetArtifacts(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get step artifacts: %w", err)
			}

			return render(cmd.OutOrStdout(), artifacts, func(table *tablewriter.Table) {
				table.Header("Direction", "Name", "Artifact", "URI")

				for _, name := range sortedKeys(artifacts.Inputs) {
					artifact := artifacts.Inputs[name]
					_ = table.Append("input", name, artifact.ID.String(), artifact.URI)
				}

				for _, name := range sortedKeys(artifacts.Outputs) {
					artifact := artifacts.Outputs[name]
					_ = table.Append("output", name, artifact.ID.String(), artifact.URI)
				}
			})
		},
	}
}

func renderSteps(cmd *cobra.Command, steps []zen.StepRun) error {
	return renderList(cmd.OutOrStdout(), steps, "steps", []string{"Name", "ID", "Status", "Entrypoint"},
		func(step zen.StepRun) []string {
			return []string{step.Name, step.ID.String(), string(step.Status), formatValue(step.EntrypointName)}
		})
}
