package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/fivetwenty-io/zenml-client/internal/auth"
	"github.com/fivetwenty-io/zenml-client/internal/client"
	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// UserAgent is sent with every request of the CLI.
var UserAgent = "zen-cli/dev"

// CreateStore builds a store from the resolved configuration: flags, ZEN_*
// environment variables and the configuration file, in that order.
func CreateStore() (zen.Store, error) {
	config, err := buildStoreConfig()
	if err != nil {
		return nil, err
	}

	store, err := client.NewWithTokenManager(config, createTokenManager(config))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return store, nil
}

func buildStoreConfig() (*zen.Config, error) {
	serverURL := viper.GetString("url")
	if serverURL == "" {
		return nil, constants.ErrNoServerConfigured
	}

	normalized, err := zen.ValidateURL(serverURL)
	if err != nil {
		return nil, err
	}

	config := &zen.Config{
		URL:         normalized,
		Username:    viper.GetString("username"),
		Password:    viper.GetString("password"),
		AccessToken: viper.GetString("token"),
		HTTPTimeout: viper.GetDuration("timeout"),
		UserAgent:   UserAgent,
	}

	if viper.GetBool("verbose") {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
		config.Logger = zen.NewSlogLogger(slog.New(handler))
		config.Debug = true
	}

	return config, nil
}

// createTokenManager picks the session strategy of the CLI. A stored token is
// tried first; with a password available the session is renewed by logging
// in again and the new token is written back to the configuration file.
func createTokenManager(config *zen.Config) auth.Manager {
	var login auth.Manager

	if config.Username != "" && config.Password != "" {
		login = auth.NewPasswordTokenManager(&auth.PasswordConfig{
			LoginURL:   config.URL + constants.LoginPath,
			Username:   config.Username,
			Password:   config.Password,
			HTTPClient: loginHTTPClient(config),
			Logger:     config.Logger,
		})
	}

	switch {
	case login != nil && config.AccessToken != "":
		fallback := auth.NewFallbackTokenManager(auth.NewStaticTokenManager(config.AccessToken), login)

		return auth.NewConfigTokenManager(fallback, NewConfigPersister(), config.URL, config.AccessToken, config.Logger)
	case login != nil:
		return auth.NewConfigTokenManager(login, NewConfigPersister(), config.URL, "", config.Logger)
	case config.AccessToken != "":
		return auth.NewStaticTokenManager(config.AccessToken)
	default:
		return nil
	}
}

// loginHTTPClient bounds the login exchange by the --timeout flag. Nil keeps
// the login default.
func loginHTTPClient(config *zen.Config) *http.Client {
	if config.HTTPTimeout <= 0 {
		return nil
	}

	return &http.Client{Timeout: config.HTTPTimeout}
}

func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", constants.ErrInvalidUUID, arg)
	}

	return id, nil
}

func parseOptionalID(arg string) (*uuid.UUID, error) {
	if arg == "" {
		return nil, nil //nolint:nilnil // an empty flag means no filter
	}

	id, err := parseID(arg)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

// parseKeyValues converts KEY=VALUE pairs to a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidKeyValue, pair)
		}

		values[key] = value
	}

	return values, nil
}

func toInterfaceMap(values map[string]string) map[string]interface{} {
	if len(values) == 0 {
		return nil
	}

	result := make(map[string]interface{}, len(values))
	for key, value := range values {
		result[key] = value
	}

	return result
}

// parseComponentRefs converts TYPE=ID pairs to stack component references.
func parseComponentRefs(pairs []string) (map[zen.ComponentType][]uuid.UUID, error) {
	refs := make(map[zen.ComponentType][]uuid.UUID)

	for _, pair := range pairs {
		componentType, rawID, ok := strings.Cut(pair, "=")
		if !ok || componentType == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidComponentRef, pair)
		}

		id, err := parseID(rawID)
		if err != nil {
			return nil, err
		}

		key := zen.ComponentType(componentType)
		refs[key] = append(refs[key], id)
	}

	return refs, nil
}

// resolve looks up an entity by id, or by name when arg is not a UUID.
// A name must match exactly one entity.
func resolve[T any](ctx context.Context, kind, arg string,
	get func(context.Context, uuid.UUID) (*T, error),
	byName func(context.Context, string) ([]T, error),
) (*T, error) {
	if arg == "" {
		return nil, constants.ErrNameOrIDRequired
	}

	if id, err := uuid.Parse(arg); err == nil {
		entity, err := get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", kind, err)
		}

		return entity, nil
	}

	matches, err := byName(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s: %w", kind, err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%s '%s': %w", kind, arg, constants.ErrNotFound)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%s '%s' matches %d entities, use its id: %w", kind, arg, len(matches), constants.ErrAmbiguous)
	}
}

func resolveProject(ctx context.Context, store zen.Store, arg string) (*zen.Project, error) {
	return resolve(ctx, "project", arg, store.Projects().Get,
		func(ctx context.Context, name string) ([]zen.Project, error) {
			return store.Projects().List(ctx, &zen.NameFilter{Name: name})
		})
}

func resolveUser(ctx context.Context, store zen.Store, arg string) (*zen.User, error) {
	return resolve(ctx, "user", arg, store.Users().Get,
		func(ctx context.Context, name string) ([]zen.User, error) {
			return store.Users().List(ctx, &zen.NameFilter{Name: name})
		})
}

func resolveTeam(ctx context.Context, store zen.Store, arg string) (*zen.Team, error) {
	return resolve(ctx, "team", arg, store.Teams().Get,
		func(ctx context.Context, name string) ([]zen.Team, error) {
			return store.Teams().List(ctx, &zen.NameFilter{Name: name})
		})
}

func resolveRole(ctx context.Context, store zen.Store, arg string) (*zen.Role, error) {
	return resolve(ctx, "role", arg, store.Roles().Get,
		func(ctx context.Context, name string) ([]zen.Role, error) {
			return store.Roles().List(ctx, &zen.NameFilter{Name: name})
		})
}

func resolveStack(ctx context.Context, store zen.Store, arg string) (*zen.Stack, error) {
	return resolve(ctx, "stack", arg, store.Stacks().Get,
		func(ctx context.Context, name string) ([]zen.Stack, error) {
			return store.Stacks().List(ctx, &zen.StackFilter{Name: name})
		})
}

func resolveComponent(ctx context.Context, store zen.Store, arg string) (*zen.Component, error) {
	return resolve(ctx, "component", arg, store.Components().Get,
		func(ctx context.Context, name string) ([]zen.Component, error) {
			return store.Components().List(ctx, &zen.ComponentFilter{Name: name})
		})
}

func resolvePipeline(ctx context.Context, store zen.Store, arg string) (*zen.Pipeline, error) {
	return resolve(ctx, "pipeline", arg, store.Pipelines().Get,
		func(ctx context.Context, name string) ([]zen.Pipeline, error) {
			return store.Pipelines().List(ctx, &zen.PipelineFilter{Name: name})
		})
}

func resolveRun(ctx context.Context, store zen.Store, arg string) (*zen.PipelineRun, error) {
	return resolve(ctx, "run", arg, store.Runs().Get,
		func(ctx context.Context, name string) ([]zen.PipelineRun, error) {
			return store.Runs().List(ctx, &zen.RunFilter{Name: name})
		})
}

// projectFlag returns the --project flag, or the configured project.
func projectFlag(cmd *cobra.Command) string {
	if flag := cmd.Flags().Lookup("project"); flag != nil && flag.Changed {
		return flag.Value.String()
	}

	return viper.GetString("project")
}

// optionalProjectID resolves the project of a list filter; no project means no filter.
func optionalProjectID(ctx context.Context, cmd *cobra.Command, store zen.Store) (*uuid.UUID, error) {
	arg := projectFlag(cmd)
	if arg == "" {
		return nil, nil //nolint:nilnil // no project means no filter
	}

	project, err := resolveProject(ctx, store, arg)
	if err != nil {
		return nil, err
	}

	return &project.ID, nil
}

// currentScope resolves the project and the logged-in user that own new entities.
func currentScope(ctx context.Context, cmd *cobra.Command, store zen.Store) (zen.Scope, error) {
	arg := projectFlag(cmd)
	if arg == "" {
		return zen.Scope{}, fmt.Errorf("--project: %w", constants.ErrNameOrIDRequired)
	}

	project, err := resolveProject(ctx, store, arg)
	if err != nil {
		return zen.Scope{}, err
	}

	scope := zen.Scope{Project: project.ID}

	username := viper.GetString("username")
	if username == "" {
		info, err := store.TokenInfo(ctx)
		if err == nil {
			username = info.Subject
		}
	}

	if username != "" {
		users, err := store.Users().List(ctx, &zen.NameFilter{Name: username})
		if err == nil && len(users) == 1 {
			scope.User = users[0].ID
		}
	}

	return scope, nil
}

// confirm asks for confirmation on the command's input.
func confirm(cmd *cobra.Command, question string) bool {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", question)

	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))

	return response == "y" || response == constants.ConfirmationYes
}

// DeleteConfig describes a delete command of one entity kind.
type DeleteConfig struct {
	Use        string
	Short      string
	Long       string
	EntityType string
	// Resolve returns the id and display name of the entity named by arg.
	Resolve func(ctx context.Context, store zen.Store, arg string) (uuid.UUID, string, error)
	Delete  func(ctx context.Context, store zen.Store, id uuid.UUID) error
}

func createDeleteCommand(config DeleteConfig) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   config.Use,
		Short: config.Short,
		Long:  config.Long,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := CreateStore()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			id, name, err := config.Resolve(ctx, store, args[0])
			if err != nil {
				return err
			}

			if !force && !confirm(cmd, fmt.Sprintf("Really delete %s '%s'?", config.EntityType, name)) {
				_, _ = io.WriteString(cmd.OutOrStdout(), "Cancelled\n")

				return nil
			}

			err = config.Delete(ctx, store, id)
			if err != nil {
				return fmt.Errorf("failed to delete %s: %w", config.EntityType, err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted %s '%s'\n", config.EntityType, name)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "force deletion without confirmation")

	return cmd
}
