package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewStacksCommand creates the stacks command group.
func NewStacksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stacks",
		Aliases: []string{"stack"},
		Short:   "Manage stacks",
		Long:    "List, create, and delete stacks and choose the default stack of a project",
	}

	cmd.AddCommand(newStacksListCommand())
	cmd.AddCommand(newStacksGetCommand())
	cmd.AddCommand(newStacksCreateCommand())
	cmd.AddCommand(newStacksDeleteCommand())
	cmd.AddCommand(newStacksGetDefaultCommand())
	cmd.AddCommand(newStacksSetDefaultCommand())

	return cmd
}

func newStacksListCommand() *cobra.Command {
	var (
		name   string
		user   string
		shared string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stacks",
		Long:  "List stacks, optionally filtered by project, user, name or sharing",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			filter := &zen.StackFilter{Name: name}

			filter.Project, err = optionalProjectID(ctx, cmd, store)
			if err != nil {
				return err
			}

			filter.User, err = parseOptionalID(user)
			if err != nil {
				return err
			}

			if shared != "" {
				isShared, err := strconv.ParseBool(shared)
				if err != nil {
					return fmt.Errorf("invalid --shared value %q: %w", shared, err)
				}

				filter.IsShared = &isShared
			}

			stacks, err := store.Stacks().List(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list stacks: %w", err)
			}

			return renderList(cmd.OutOrStdout(), stacks, "stacks",
				[]string{"Name", "ID", "Project", "Shared", "Components", "Created"},
				func(stack zen.Stack) []string {
					return []string{
						stack.Name, stack.ID.String(), stack.Project.String(),
						strconv.FormatBool(stack.IsShared), formatComponentRefs(stack.Components),
						formatDate(stack.Created),
					}
				})
		},
	}

	cmd.Flags().String("project", "", "project name or id")
	cmd.Flags().StringVar(&name, "name", "", "filter by name")
	cmd.Flags().StringVar(&user, "user", "", "filter by owner id")
	cmd.Flags().StringVar(&shared, "shared", "", "filter by sharing (true or false)")

	return cmd
}

func newStacksGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get STACK_NAME_OR_ID",
		Short: "Get stack details",
		Long:  "Display detailed information about a specific stack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			stack, err := resolveStack(cmd.Context(), store, args[0])
			if err != nil {
				return err
			}

			return outputStack(cmd, stack)
		},
	}
}

func newStacksCreateCommand() *cobra.Command {
	var (
		description string
		components  []string
		shared      bool
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a stack",
		Long:  "Register a new stack from existing components, given as TYPE=COMPONENT_ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseComponentRefs(components)
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

			stack, err := store.Stacks().Create(ctx, &zen.Stack{
				Scope:       scope,
				Name:        args[0],
				Description: description,
				Components:  refs,
				IsShared:    shared,
			})
			if err != nil {
				return fmt.Errorf("failed to create stack: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Successfully created stack '%s'\n", stack.Name)

			return outputStack(cmd, stack)
		},
	}

	cmd.Flags().String("project", "", "project name or id")
	cmd.Flags().StringVar(&description, "description", "", "stack description")
	cmd.Flags().StringArrayVarP(&components, "component", "c", nil, "component as TYPE=ID (repeatable)")
	cmd.Flags().BoolVar(&shared, "shared", false, "share the stack with other users")

	return cmd
}

func newStacksDeleteCommand() *cobra.Command {
	return createDeleteCommand(DeleteConfig{
		Use:        "delete STACK_NAME_OR_ID",
		Short:      "Delete a stack",
		Long:       "Delete a stack; its components are kept",
		EntityType: "stack",
		Resolve: func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error) {
			stack, err := resolveStack(ctx, store, arg)
			if err != nil {
				return uuid.Nil, "", err
			}

			return stack.ID, stack.Name, nil
		},
		Delete: func(ctx context.Context, store zen.Store, id uuid.UUID) error {
			return store.Stacks().Delete(ctx, id)
		},
	})
}

func newStacksGetDefaultCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "default",
		Short: "Show the default stack",
		Long:  "Display the default stack of a project",
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

			stack, err := store.Stacks().GetDefault(ctx, project.ID)
			if err != nil {
				return fmt.Errorf("failed to get default stack of project '%s': %w", project.Name, err)
			}

			return outputStack(cmd, stack)
		},
	}

	cmd.Flags().String("project", "", "project name or id")

	return cmd
}

func newStacksSetDefaultCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-default STACK_NAME_OR_ID",
		Short: "Set the default stack",
		Long:  "Make a stack the default stack of a project",
		Args:  cobra.ExactArgs(1),
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

			stack, err := resolveStack(ctx, store, args[0])
			if err != nil {
				return err
			}

			_, err = store.Stacks().SetDefault(ctx, project.ID, stack.ID)
			if err != nil {
				return fmt.Errorf("failed to set default stack: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Stack '%s' is now the default stack of project '%s'\n", stack.Name, project.Name)

			return nil
		},
	}

	cmd.Flags().String("project", "", "project name or id")

	return cmd
}

func outputStack(cmd *cobra.Command, stack *zen.Stack) error {
	return render(cmd.OutOrStdout(), stack, func(table *tablewriter.Table) {
		table.Header("Property", "Value")
		_ = table.Append("Name", stack.Name)
		_ = table.Append("ID", stack.ID.String())
		_ = table.Append("Project", stack.Project.String())
		_ = table.Append("User", formatID(&stack.User))
		_ = table.Append("Description", formatValue(stack.Description))
		_ = table.Append("Shared", strconv.FormatBool(stack.IsShared))
		_ = table.Append("Components", formatComponentRefs(stack.Components))
		_ = table.Append("Created", formatTime(stack.Created))
		_ = table.Append("Updated", formatTime(stack.Updated))
	})
}

func formatComponentRefs(refs map[zen.ComponentType][]uuid.UUID) string {
	parts := make([]string, 0, len(refs))

	for componentType, ids := range refs {
		for _, id := range ids {
			parts = append(parts, string(componentType)+"="+id.String())
		}
	}

	if len(parts) == 0 {
		return formatValue("")
	}

	sort.Strings(parts)

	return strings.Join(parts, "\n")
}
