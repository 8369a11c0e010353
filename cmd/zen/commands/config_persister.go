package commands

import (
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/zenml-client/internal/constants"
)

// ConfigPersister implements the auth.ConfigPersister interface.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateServerToken stores a renewed session token for the configured server.
func (p *ConfigPersister) UpdateServerToken(serverURL, token string, expiresAt time.Time) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	if config.URL != serverURL {
		return fmt.Errorf("server '%s': %w", serverURL, constants.ErrServerNotConfigured)
	}

	config.Token = token
	config.TokenExpiresAt = nil

	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return saveConfigStruct(config)
}
