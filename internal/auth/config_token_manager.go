package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/zenml-client/pkg/zen"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister saves the session token of a server to the CLI config.
type ConfigPersister interface {
	UpdateServerToken(serverURL, token string, expiresAt time.Time) error
}

// ConfigTokenManager wraps a Manager and persists every new token it obtains,
// so the next CLI invocation can reuse the session.
type ConfigTokenManager struct {
	manager   Manager
	persister ConfigPersister
	serverURL string
	logger    zen.Logger

	mu        sync.Mutex
	persisted string
}

// NewConfigTokenManager creates a config-persisting token manager. initialToken
// is the token already stored in the config, if any.
func NewConfigTokenManager(manager Manager, persister ConfigPersister, serverURL, initialToken string, logger zen.Logger) *ConfigTokenManager {
	return &ConfigTokenManager{
		manager:   manager,
		persister: persister,
		serverURL: serverURL,
		logger:    logger,
		persisted: initialToken,
	}
}

// GetToken returns the token of the wrapped manager and persists it if it changed.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	changed := token != "" && token != m.persisted
	if changed {
		m.persisted = token
	}
	m.mu.Unlock()

	if changed {
		var expiresAt time.Time
		if current := m.manager.Current(); current != nil {
			expiresAt = current.ExpiresAt
		}

		persistErr := m.persistToken(token, expiresAt)
		if persistErr != nil && m.logger != nil {
			m.logger.Warn("Failed to persist session token", map[string]interface{}{"error": persistErr.Error()})
		}
	}

	return token, nil
}

// Invalidate forwards to the wrapped manager.
func (m *ConfigTokenManager) Invalidate() {
	m.manager.Invalidate()
}

// Renewable forwards to the wrapped manager.
func (m *ConfigTokenManager) Renewable() bool {
	return m.manager.Renewable()
}

// Current forwards to the wrapped manager.
func (m *ConfigTokenManager) Current() *Token {
	return m.manager.Current()
}

func (m *ConfigTokenManager) persistToken(token string, expiresAt time.Time) error {
	if m.persister == nil {
		return ErrNoConfigPersister
	}

	err := m.persister.UpdateServerToken(m.serverURL, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to update server token: %w", err)
	}

	return nil
}
