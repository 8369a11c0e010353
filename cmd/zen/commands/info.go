package commands

import (
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Display server information",
		Long:  "Display the id, version and deployment of the configured server",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			info, err := store.GetServerInfo(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to get server info: %w", err)
			}

			return render(cmd.OutOrStdout(), info, func(table *tablewriter.Table) {
				table.Header("Property", "Value")
				_ = table.Append("ID", info.ID.String())
				_ = table.Append("Version", info.Version)
				_ = table.Append("Deployment", formatValue(info.DeploymentType))
				_ = table.Append("Database", formatValue(info.DatabaseType))
			})
		},
	}
}
