package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration file. Passwords are never stored.
type Config struct {
	URL            string     `json:"url,omitempty"              yaml:"url,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	Project        string     `json:"project,omitempty"          yaml:"project,omitempty"`
	Output         string     `json:"output,omitempty"           yaml:"output,omitempty"`
	Timeout        string     `json:"timeout,omitempty"          yaml:"timeout,omitempty"`
}

// configKeys maps settable keys to their field.
var configKeys = map[string]func(*Config) *string{
	"url":      func(c *Config) *string { return &c.URL },
	"username": func(c *Config) *string { return &c.Username },
	"token":    func(c *Config) *string { return &c.Token },
	"project":  func(c *Config) *string { return &c.Project },
	"output":   func(c *Config) *string { return &c.Output },
	"timeout":  func(c *Config) *string { return &c.Timeout },
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the zen configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with the token masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = maskToken(config.Token)

			return render(cmd.OutOrStdout(), config, func(table *tablewriter.Table) {
				table.Header("Property", "Value")

				keys := make([]string, 0, len(configKeys))
				for key := range configKeys {
					keys = append(keys, key)
				}

				sort.Strings(keys)

				for _, key := range keys {
					_ = table.Append(key, formatValue(*configKeys[key](config)))
				}

				if config.TokenExpiresAt != nil {
					_ = table.Append("token_expires_at", formatTime(*config.TokenExpiresAt))
				}

				_ = table.Append("file", configFilePath())
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value: url, username, token, project, output or timeout",
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfigValue(cmd.OutOrStdout(), args[0], "")
		},
	}
}

func updateConfigValue(w io.Writer, key, value string) error {
	field, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	switch key {
	case "output":
		if value != "" && !validOutputFormat(value) {
			return fmt.Errorf("%w: %q", constants.ErrInvalidOutputFormat, value)
		}
	case "timeout":
		if value != "" {
			_, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid timeout %q: %w", value, err)
			}
		}
	}

	config := loadConfig()
	*field(config) = value

	if key == "token" {
		config.TokenExpiresAt = nil
	}

	err := saveConfigStruct(config)
	if err != nil {
		return err
	}

	if value == "" {
		_, _ = fmt.Fprintf(w, "Unset %s\n", key)
	} else {
		_, _ = fmt.Fprintf(w, "Set %s\n", key)
	}

	return nil
}

// loadConfig reads the stored configuration through viper, so environment
// variables and flags take precedence over the file.
func loadConfig() *Config {
	config := &Config{
		URL:      viper.GetString("url"),
		Username: viper.GetString("username"),
		Token:    viper.GetString("token"),
		Project:  viper.GetString("project"),
		Output:   viper.GetString("output"),
		Timeout:  viper.GetString("timeout"),
	}

	if expiresAt := viper.GetTime("token_expires_at"); !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return config
}

func configFilePath() string {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".zen", "config.yml")
	}

	return filepath.Join(home, ".zen", "config.yml")
}

// saveConfigStruct writes config to the configuration file with owner-only
// permissions and mirrors it into viper.
func saveConfigStruct(config *Config) error {
	configFile := configFilePath()

	err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.Set("url", config.URL)
	viper.Set("username", config.Username)
	viper.Set("token", config.Token)
	viper.Set("project", config.Project)
	viper.Set("output", config.Output)
	viper.Set("timeout", config.Timeout)

	if config.TokenExpiresAt != nil {
		viper.Set("token_expires_at", *config.TokenExpiresAt)
	} else {
		viper.Set("token_expires_at", time.Time{})
	}

	return nil
}
