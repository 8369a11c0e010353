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

// NewComponentsCommand creates the components command group.
func NewComponentsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "components",
		Aliases: []string{"component"},
		Short:   "Manage stack components",
		Long:    "List, create, and delete stack components",
	}

	cmd.AddCommand(newComponentsListCommand())
	cmd.AddCommand(newComponentsGetCommand())
	cmd.AddCommand(newComponentsCreateCommand())
	cmd.AddCommand(newComponentsDeleteCommand())
	cmd.AddCommand(newComponentsTypesCommand())

	return cmd
}

func newComponentsListCommand() *cobra.Command {
	var (
		componentType string
		flavor        string
		name          string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stack components",
		Long:  "List stack components, optionally filtered by project, type, flavor or name",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			filter := &zen.ComponentFilter{
				Type:   zen.ComponentType(componentType),
				Flavor: flavor,
				Name:   name,
			}

			filter.Project, err = optionalProjectID(ctx, cmd, store)
			if err != nil {
				return err
			}

			components, err := store.Components().List(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list components: %w", err)
			}

			return renderList(cmd.OutOrStdout(), components, "components",
				[]string{"Name", "ID", "Type", "Flavor", "Shared", "Created"},
				func(component zen.Component) []string {
					return []string{
						component.Name, component.ID.String(), string(component.Type), component.Flavor,
						strconv.FormatBool(component.IsShared), formatDate(component.Created),
					}
				})
		},
	}

	cmd.Flags().String("project", "", "project name or id")
	cmd.Flags().StringVarP(&componentType, "type", "t", "", "filter by component type")
	cmd.Flags().StringVar(&flavor, "flavor", "", "filter by flavor")
	cmd.Flags().StringVar(&name, "name", "", "filter by name")

	return cmd
}

func newComponentsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get COMPONENT_NAME_OR_ID",
		Short: "Get component details",
		Long:  "Display detailed information about a specific stack component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			component, err := resolveComponent(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			return outputComponent(cmd, component)
		},
	}
}

func newComponentsCreateCommand() *cobra.Command {
	var (
		componentType string
		flavor        string
		settings      []string
		shared        bool
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a stack component",
		Long:  "Register a new stack component of a given type and flavor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configuration, err := parseKeyValues(settings)
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

			component, err := store.Components().Create(ctx, &zen.Component{
				Scope:         scope,
				Name:          args[0],
				Type:          zen.ComponentType(componentType),
				Flavor:        flavor,
				Configuration: toInterfaceMap(configuration),
				IsShared:      shared,
			})
			if err != nil {
				return fmt.Errorf("failed to create component: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Successfully created %s '%s'\n", component.Type, component.Name)

			return outputComponent(cmd, component)
		},
	}

	cmd.Flags().String("project", "", "project name or id")
	cmd.Flags().StringVarP(&componentType, "type", "t", "", "component type (required)")
	cmd.Flags().StringVar(&flavor, "flavor", "", "component flavor (required)")
	cmd.Flags().StringArrayVar(&settings, "config", nil, "configuration as KEY=VALUE (repeatable)")
	cmd.Flags().BoolVar(&shared, "shared", false, "share the component with other users")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("flavor")

	return cmd
}

func newComponentsDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete COMPONENT_NAME_OR_ID",
		Short:      "Delete a stack component",
		Long:       "Delete a stack component",
		EntityType: "component",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			component, err := resolveComponent(ctx, store, arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			return component.ID, component.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Components().Delete(ctx, id)
		},
	})
}

func newComponentsTypesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List component types",
		Long:  "List the component types the server supports",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			types, err := store.Components().ListTypes(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list component types: %w", err)
			}

			return renderList(cmd.OutOrStdout(), types, "component types", []string{"Type"},
				func(componentType zen.ComponentType) []string {
					return []string{string(componentType)}
				})
		},
	}
}

func outputComponent(cmd *cobra.Command, component *zen.Component) error {
	return render(cmd.OutOrStdout(), component, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("Name", component.Name)
		_ = table.Append("ID", component.ID.String())
		_ = table.Append("Type", string(component.Type))
		_ = table.Append("Flavor", component.Flavor)
		_ = table.Append("Project", component.Project.String())
		_ = table.Append("Shared", strconv.FormatBool(component.IsShared))

		for _, key := range sortedKeys(component.Configuration) {
			_ = table.Append("Config "+key, formatAny(component.Configuration[key]))
		}

		_ = table.Append("Created", formatTime(component.Created))
	})
}
