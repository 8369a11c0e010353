package client

import (
	"context"
	"fmt"
	nethttp "net/http"
	"strings"

	"github.com/fivetwenty-io/zenml-client/internal/auth"
	"github.com/fivetwenty-io/zenml-client/internal/constants"
	"github.com/fivetwenty-io/zenml-client/internal/http"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
)

// Client implements the zen.Store interface over the REST API.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.Manager
	baseURL      string
	logger       zen.Logger

	// Resource clients
	stacks       *StacksClient
	components   *ComponentsClient
	flavors      *FlavorsClient
	projects     *ProjectsClient
	users        *UsersClient
	teams        *TeamsClient
	roles        *RolesClient
	repositories *RepositoriesClient
	pipelines    *PipelinesClient
	runs         *RunsClient
	steps        *StepsClient
	artifacts    *ArtifactsClient
}

var _ zen.Store = (*Client)(nil)

// createTokenManager creates the session manager matching the configured credentials.
func createTokenManager(config *zen.Config) auth.Manager {
	if config.AccessToken != "" && config.Username != "" {
		return auth.NewFallbackTokenManager(
			auth.NewStaticTokenManager(config.AccessToken),
			createPasswordTokenManager(config),
		)
	}

	if config.AccessToken != "" {
		return auth.NewStaticTokenManager(config.AccessToken)
	}

	if config.Username != "" {
		return createPasswordTokenManager(config)
	}

	return nil // No authentication
}

// createPasswordTokenManager logs in at the server's login endpoint. An empty
// password is valid: a fresh server's default account has none.
func createPasswordTokenManager(config *zen.Config) *auth.PasswordTokenManager {
	passwordConfig := &auth.PasswordConfig{
		LoginURL: config.URL + constants.LoginPath,
		Username: config.Username,
		Password: config.Password,
		Cache:    config.TokenCache,
		Logger:   config.Logger,
	}

	if config.HTTPTimeout > 0 {
		passwordConfig.HTTPClient = &nethttp.Client{Timeout: config.HTTPTimeout}
	}

	return auth.NewPasswordTokenManager(passwordConfig)
}

// createHTTPClientOptions builds dispatcher options from config.
func createHTTPClientOptions(config *zen.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Retry.MaxAttempts > 0 {
		httpOpts = append(httpOpts, http.WithRetryPolicy(config.Retry))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	return httpOpts
}

// New creates a REST store client, choosing the session manager from the
// configured credentials. config.URL must already be validated.
func New(config *zen.Config) (*Client, error) {
	return NewWithTokenManager(config, createTokenManager(config))
}

// NewWithTokenManager creates a REST store client with a custom session manager.
// A nil manager sends requests unauthenticated.
func NewWithTokenManager(config *zen.Config, tokenManager auth.Manager) (*Client, error) {
	if config.URL == "" {
		return nil, zen.ErrURLRequired
	}

	baseURL := strings.TrimRight(config.URL, "/")

	apiVersion := config.APIVersion
	if apiVersion == "" {
		apiVersion = constants.DefaultAPIVersion
	}

	var dispatcherTokens http.TokenManager
	if tokenManager != nil {
		dispatcherTokens = tokenManager
	}

	httpClient := http.NewClient(baseURL, dispatcherTokens, createHTTPClientOptions(config)...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      baseURL,
		logger:       config.Logger,
	}

	client.initializeResourceClients(apiVersion)

	return client, nil
}

func (c *Client) initializeResourceClients(apiVersion string) {
	c.stacks = NewStacksClient(c.httpClient, apiVersion)
	c.components = NewComponentsClient(c.httpClient, apiVersion)
	c.flavors = NewFlavorsClient(c.httpClient, apiVersion)
	c.projects = NewProjectsClient(c.httpClient, apiVersion)
	c.users = NewUsersClient(c.httpClient, apiVersion)
	c.teams = NewTeamsClient(c.httpClient, apiVersion)
	c.roles = NewRolesClient(c.httpClient, apiVersion)
	c.repositories = NewRepositoriesClient(c.httpClient, apiVersion)
	c.pipelines = NewPipelinesClient(c.httpClient, apiVersion)
	c.runs = NewRunsClient(c.httpClient, apiVersion)
	c.steps = NewStepsClient(c.httpClient, apiVersion)
	c.artifacts = NewArtifactsClient(c.httpClient, apiVersion)
}

// BaseURL returns the normalized server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// TokenManager returns the session manager of this client.
func (c *Client) TokenManager() auth.Manager {
	return c.tokenManager
}

// Verify checks connectivity and credentials by listing users.
func (c *Client) Verify(ctx context.Context) error {
	_, err := c.users.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("verifying connection to %s: %w", c.baseURL, err)
	}

	return nil
}

// GetServerInfo implements zen.InfoClient.GetServerInfo.
func (c *Client) GetServerInfo(ctx context.Context) (*zen.ServerInfo, error) {
	resp, err := c.httpClient.Get(ctx, constants.InfoPath, nil)
	if err != nil {
		return nil, fmt.Errorf("getting server info: %w", err)
	}

	return decode[zen.ServerInfo](resp, "server info")
}

// Invalidate implements zen.SessionClient.Invalidate.
func (c *Client) Invalidate() {
	if c.tokenManager != nil {
		c.tokenManager.Invalidate()
	}
}

// TokenInfo implements zen.SessionClient.TokenInfo.
func (c *Client) TokenInfo(ctx context.Context) (*zen.TokenInfo, error) {
	if c.tokenManager == nil {
		return nil, zen.ErrNoCredentials
	}

	_, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting token: %w", err)
	}

	current := c.tokenManager.Current()
	if current == nil {
		return nil, zen.ErrNoCredentials
	}

	return current.Info(c.tokenManager.Renewable()), nil
}

// Resource client accessors

// Stacks implements zen.StackClients.Stacks.
func (c *Client) Stacks() zen.StacksClient {
	return c.stacks
}

// Components implements zen.StackClients.Components.
func (c *Client) Components() zen.ComponentsClient {
	return c.components
}

// Flavors implements zen.StackClients.Flavors.
func (c *Client) Flavors() zen.FlavorsClient {
	return c.flavors
}

// Projects implements zen.WorkspaceClients.Projects.
func (c *Client) Projects() zen.ProjectsClient {
	return c.projects
}

// Repositories implements zen.WorkspaceClients.Repositories.
func (c *Client) Repositories() zen.RepositoriesClient {
	return c.repositories
}

// Users implements zen.AccessClients.Users.
func (c *Client) Users() zen.UsersClient {
	return c.users
}

// Teams implements zen.AccessClients.Teams.
func (c *Client) Teams() zen.TeamsClient {
	return c.teams
}

// Roles implements zen.AccessClients.Roles.
func (c *Client) Roles() zen.RolesClient {
	return c.roles
}

// Pipelines implements zen.ExecutionClients.Pipelines.
func (c *Client) Pipelines() zen.PipelinesClient {
	return c.pipelines
}

// Runs implements zen.ExecutionClients.Runs.
func (c *Client) Runs() zen.RunsClient {
	return c.runs
}

// Steps implements zen.ExecutionClients.Steps.
func (c *Client) Steps() zen.StepsClient {
	return c.steps
}

// Artifacts implements zen.ExecutionClients.Artifacts.
func (c *Client) Artifacts() zen.ArtifactsClient {
	return c.artifacts
}
