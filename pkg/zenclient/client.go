package zenclient

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/fivetwenty-io/zenml-client/internal/client"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
)

// New creates a REST store for config.URL. No request is sent unless
// VerifyOnConnect or ServerVersionConstraint is set; the first store call
// logs in.
func New(ctx context.Context, config *zen.Config) (zen.Store, error) {
	if config == nil {
		return nil, zen.ErrConfigRequired
	}

	if config.URL == "" {
		return nil, zen.ErrURLRequired
	}

	normalized, err := zen.ValidateURL(config.URL)
	if err != nil {
		return nil, err
	}

	resolved := *config
	resolved.URL = normalized

	store, err := client.New(&resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	if resolved.ServerVersionConstraint != "" {
		err = CheckServerVersion(ctx, store, resolved.ServerVersionConstraint)
		if err != nil {
			return nil, err
		}
	}

	if resolved.VerifyOnConnect {
		err = store.Verify(ctx)
		if err != nil {
			return nil, err
		}
	}

	return store, nil
}

// NewWithToken creates a store that presents a pre-issued bearer token.
func NewWithToken(ctx context.Context, url, token string) (zen.Store, error) {
	return New(ctx, &zen.Config{URL: url, AccessToken: token})
}

// NewWithPassword creates a store that logs in with username and password.
func NewWithPassword(ctx context.Context, url, username, password string) (zen.Store, error) {
	return New(ctx, &zen.Config{URL: url, Username: username, Password: password})
}

// CheckServerVersion fails with zen.ErrIncompatibleServer unless the version
// reported by the server satisfies constraint.
func CheckServerVersion(ctx context.Context, store zen.InfoClient, constraint string) error {
	constraints, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid server version constraint %q: %w", constraint, err)
	}

	info, err := store.GetServerInfo(ctx)
	if err != nil {
		return fmt.Errorf("checking server version: %w", err)
	}

	version, err := semver.NewVersion(info.Version)
	if err != nil {
		return fmt.Errorf("%w: unparsable version %q: %w", zen.ErrIncompatibleServer, info.Version, err)
	}

	if !constraints.Check(version) {
		return fmt.Errorf("%w: server runs %s, want %s", zen.ErrIncompatibleServer, info.Version, constraint)
	}

	return nil
}
