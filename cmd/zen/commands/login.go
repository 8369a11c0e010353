package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/zenml-client/internal/auth"
	"github.com/fivetwenty-io/zenml-client/internal/client"
	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		serverURL string
		username  string
		password  string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to a server",
		Long:  "Exchange username and password for a session token and store it in the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				serverURL = viper.GetString("url")
			}

			if serverURL == "" {
				serverURL = prompt(cmd, "Server URL: ")
			}

			if serverURL == "" {
				return constants.ErrNoServerConfigured
			}

			normalized, err := zen.ValidateURL(serverURL)
			if err != nil {
				return err
			}

			if username == "" {
				username = viper.GetString("username")
			}

			if username == "" {
				username = prompt(cmd, "Username: ")
			}

			if password == "" {
				password = viper.GetString("password")
			}

			if password == "" && !cmd.Flags().Changed("password") {
				password, err = readPassword(cmd)
				if err != nil {
					return err
				}
			}

			config := &zen.Config{URL: normalized, Username: username, HTTPTimeout: viper.GetDuration("timeout"), UserAgent: UserAgent}

			manager := auth.NewPasswordTokenManager(&auth.PasswordConfig{
				LoginURL:   normalized + constants.LoginPath,
				Username:   username,
				Password:   password,
				HTTPClient: loginHTTPClient(config),
			})

			store, err := client.NewWithTokenManager(config, manager)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			ctx := cmd.Context()

			token, err := manager.GetToken(ctx)
			if err != nil {
				return fmt.Errorf("failed to log in to %s: %w", normalized, err)
			}

			stored := loadConfig()
			stored.URL = normalized
			stored.Username = username
			stored.Token = token
			stored.TokenExpiresAt = nil

			if current := manager.Current(); current != nil && !current.ExpiresAt.IsZero() {
				expiresAt := current.ExpiresAt
				stored.TokenExpiresAt = &expiresAt
			}

			err = saveConfigStruct(stored)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully logged in to %s as %s\n", normalized, username)

			info, err := store.GetServerInfo(ctx)
			if err != nil {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not fetch server info: %v\n", err)

				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Server version: %s\n", info.Version)

			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "url", "", "server URL")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username for authentication")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password for authentication")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out from the server",
		Long:  "Remove the stored session token from the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = ""
			config.TokenExpiresAt = nil

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = io.WriteString(cmd.OutOrStdout(), "Successfully logged out\n")

			return nil
		},
	}
}

func prompt(cmd *cobra.Command, question string) string {
	_, _ = io.WriteString(cmd.OutOrStdout(), question)

	answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')

	return strings.TrimSpace(answer)
}

// readPassword reads a password without echo from a terminal, or a line from
// the command's input otherwise.
func readPassword(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int

	if cmd.InOrStdin() != os.Stdin || !term.IsTerminal(fd) {
		return prompt(cmd, "Password: "), nil
	}

	_, _ = io.WriteString(cmd.OutOrStdout(), "Password: ")

	bytePassword, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	_, _ = io.WriteString(cmd.OutOrStdout(), "\n")

	return string(bytePassword), nil
}
