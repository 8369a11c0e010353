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

// NewArtifactsCommand creates the artifacts command group.
func NewArtifactsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "artifacts",
		Aliases: []string{"artifact"},
		Short:   "Inspect artifacts",
		Long:    "List, inspect, and delete artifacts produced by step runs",
	}

	cmd.AddCommand(newArtifactsListCommand())
	cmd.AddCommand(newArtifactsGetCommand())
	cmd.AddCommand(newArtifactsDeleteCommand())

	return cmd
}

func newArtifactsListCommand() *cobra.Command {
	var (
		name string
		uri  string
		step string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List artifacts",
		Long:  "List artifacts, optionally filtered by name, URI or producing step",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := &zen.ArtifactFilter{Name: name, URI: uri}

			var err error

			filter.ProducerStep, err = parseOptionalID(step)
			if err != nil {
				return err
			}

			store, err := CreateStore()
			if err != nil {
				return err
			}

			artifacts, err := store.Artifacts().List(cmd.Context(), filter)
			if err != nil {
				return fmt.Errorf("failed to list artifacts: %w", err)
			}

			return renderList(cmd.OutOrStdout(), artifacts, "artifacts",
				[]string{"Name", "ID", "Type", "URI", "Cached"},
				func(artifact zen.Artifact) []string {
					return []string{artifact.Name, artifact.ID.String(), formatValue(artifact.Type), artifact.URI, strconv.FormatBool(artifact.IsCached)}
				})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "filter by name")
	cmd.Flags().StringVar(&uri, "uri", "", "filter by URI")
	cmd.Flags().StringVar(&step, "producer-step", "", "filter by producing step id")

	return cmd
}

func newArtifactsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get ARTIFACT_ID",
		Short: "Get artifact details",
		Long:  "Display detailed information about an artifact",
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

			artifact, err := store.Artifacts().Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("failed to get artifact: %w", err)
			}

			return render(cmd.OutOrStdout(), artifact, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("Name", artifact.Name)
				_ = table.Append("ID", artifact.ID.String())
				_ = table.Append("URI", artifact.URI)
				_ = table.Append("Type", formatValue(artifact.Type))
				_ = table.Append("Data Type", formatValue(artifact.DataType))
				_ = table.Append("Materializer", formatValue(artifact.Materializer))
				_ = table.Append("Producer Step", formatID(&artifact.ProducerStepID))
				_ = table.Append("Cached", strconv.FormatBool(artifact.IsCached))
			})
		},
	}
}

func newArtifactsDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete ARTIFACT_ID",
		Short:      "Delete an artifact",
		Long:       "Delete an artifact record; the stored data is not touched",
		EntityType: "artifact",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			id, err := parseID(arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			artifact, err := store.Artifacts().Get(ctx, id)
			if err != nil {
				return uuid.Nil, "", fmt.Errorf("failed to get artifact: %w", err)
			}

			return artifact.ID, artifact.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Artifacts().Delete(ctx, id)
		},
	})
}
