package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewTokenCommand creates the token command group.
func NewTokenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the session token",
		Long:  "Inspect and renew the session token used for requests",
	}

	cmd.AddCommand(newTokenStatusCommand())
	cmd.AddCommand(newTokenRenewCommand())

	return cmd
}

func newTokenStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show token status and expiration",
		Long:  "Display the subject and expiration of the current session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			info, err := store.TokenInfo(cmd.Context())
			if errors.Is(err, zen.ErrNoCredentials) {
				return constants.ErrNotLoggedIn
			}

			if err != nil {
				return fmt.Errorf("failed to get token info: %w", err)
			}

			return outputTokenInfo(cmd, info)
		},
	}
}

func newTokenRenewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "renew",
		Short: "Renew the session token",
		Long:  "Drop the current session token and log in again with the configured password",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			current, err := store.TokenInfo(ctx)
			if err != nil {
				return fmt.Errorf("failed to get token info: %w", err)
			}

			if !current.Renewable {
				return constants.ErrNotRenewable
			}

			store.Invalidate()

			info, err := store.TokenInfo(ctx)
			if err != nil {
				return fmt.Errorf("failed to renew token: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Token renewed")

			return outputTokenInfo(cmd, info)
		},
	}
}

func outputTokenInfo(cmd *cobra.Command, info *zen.TokenInfo) error {
	return render(cmd.OutOrStdout(), info, func(table *tablewriter.Table) {
		status := "valid"
		if info.Expired() {
			status = "expired"
		}

		table.Header("Property", "Value")
		_ = table.Append("Subject", formatValue(info.Subject))
		_ = table.Append("Status", status)
		_ = table.Append("Issued", formatTime(info.IssuedAt))
		_ = table.Append("Expires", formatTime(info.ExpiresAt))

		if !info.ExpiresAt.IsZero() && !info.Expired() {
			_ = table.Append("Expires In", time.Until(info.ExpiresAt).Round(time.Second).String())
		}

		_ = table.Append("Renewable", strconv.FormatBool(info.Renewable))
	})
}
