package commands

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewFlavorsCommand creates the flavors command group.
func NewFlavorsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "flavors",
		Aliases: []string{"flavor"},
		Short:   "Manage component flavors",
		Long:    "List, register, and delete stack component flavors",
	}

	cmd.AddCommand(newFlavorsListCommand())
	cmd.AddCommand(newFlavorsGetCommand())
	cmd.AddCommand(newFlavorsRegisterCommand())
	cmd.AddCommand(newFlavorsDeleteCommand())

	return cmd
}

func newFlavorsListCommand() *cobra.Command {
	var componentType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List flavors",
		Long:  "List component flavors, optionally of one component type",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			var flavors []zen.Flavor
			if componentType != "" {
				flavors, err = store.Flavors().ListByType(ctx, zen.ComponentType(componentType))
			} else {
				flavors, err = store.Flavors().List(ctx, nil)
			}

			if err != nil {
				return fmt.Errorf("failed to list flavors: %w", err)
			}

			return renderList(cmd.OutOrStdout(), flavors, "flavors",
				[]string{"Name", "Type", "ID", "Integration", "Source"},
				func(flavor zen.Flavor) []string {
					return []string{flavor.Name, string(flavor.Type), flavor.ID.String(), formatValue(flavor.Integration), flavor.Source}
				})
		},
	}

	cmd.Flags().StringVarP(&componentType, "type", "t", "", "filter by component type")

	return cmd
}

func newFlavorsGetCommand() *cobra.Command {
	var componentType string

	cmd := &cobra.Command{
		Use:   "get FLAVOR_NAME_OR_ID",
		Short: "Get flavor details",
		Long:  "Display a flavor by id, or by name and component type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			flavor, err := findFlavor(cmd.Context(), store, args[0], componentType)
			if err != nil {
				return err
			}

			return outputFlavor(cmd, flavor)
		},
	}

	cmd.Flags().StringVarP(&componentType, "type", "t", "", "component type, required for lookup by name")

	return cmd
}

func newFlavorsRegisterCommand() *cobra.Command {
	var (
		componentType string
		source        string
		configSchema  string
		integration   string
	)

	cmd := &cobra.Command{
		Use:   "register NAME",
		Short: "Register a flavor",
		Long:  "Register a component flavor implemented by a source class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			scope, err := currentScope(ctx, cmd, store)
			if err != nil {
				return err
			}

			flavor, err := store.Flavors().Register(ctx, &zen.FlavorRegistration{
				Scope:        scope,
				Name:         args[0],
				Type:         zen.ComponentType(componentType),
				Source:       source,
				ConfigSchema: configSchema,
				Integration:  integration,
			})
			if err != nil {
				return fmt.Errorf("failed to register flavor: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Successfully registered %s flavor '%s'\n", flavor.Type, flavor.Name)

			return outputFlavor(cmd, flavor)
		},
	}

	cmd.Flags().String("project", "", "project name or id")
	cmd.Flags().StringVarP(&componentType, "type", "t", "", "component type (required)")
	cmd.Flags().StringVar(&source, "source", "", "source class of the flavor (required)")
	cmd.Flags().StringVar(&configSchema, "config-schema", "", "JSON schema of the flavor configuration")
	cmd.Flags().StringVar(&integration, "integration", "", "integration providing the flavor")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func newFlavorsDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete FLAVOR_ID",
		Short:      "Delete a flavor",
		Long:       "Delete a component flavor",
		EntityType: "flavor",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			flavor, err := findFlavor(ctx, store, arg, "")
			if err != nil {
				return uuid.Nil, "", err
			}

			return flavor.ID, flavor.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Flavors().Delete(ctx, id)
		},
	})
}

// findFlavor gets a flavor by id, or by name and type.
func findFlavor(ctx context.Context, store zen.Store, arg, componentType string) (*zen.Flavor, error) {
	if id, err := uuid.Parse(arg); err == nil {
		flavor, err := store.Flavors().Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get flavor: %w", err)
		}

		return flavor, nil
	}

	if componentType == "" {
		return nil, fmt.Errorf("flavor '%s': %w", arg, constants.ErrFlavorTypeRequired)
	}

	flavor, err := store.Flavors().GetByNameAndType(ctx, arg, zen.ComponentType(componentType))
	if err != nil {
		return nil, fmt.Errorf("failed to find flavor: %w", err)
	}

	return flavor, nil
}

func outputFlavor(cmd *cobra.Command, flavor *zen.Flavor) error {
	return render(cmd.OutOrStdout(), flavor, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("Name", flavor.Name)
		_ = table.Append("ID", flavor.ID.String())
		_ = table.Append("Type", string(flavor.Type))
		_ = table.Append("Source", flavor.Source)
		_ = table.Append("Integration", formatValue(flavor.Integration))
		_ = table.Append("Config Schema", formatValue(flavor.ConfigSchema))
		_ = table.Append("Created", formatTime(flavor.Created))
	})
}
