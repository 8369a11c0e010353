package auth_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fivetwenty-io/zenml-client/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPersister struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (p *recordingPersister) UpdateServerToken(serverURL, token string, expiresAt time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tokens = append(p.tokens, serverURL+"="+token)

	return p.err
}

func TestConfigTokenManager_PersistsNewTokens(t *testing.T) {
	t.Parallel()

	var logins atomic.Int32

	server := loginServer(t, &logins)
	defer server.Close()

	persister := &recordingPersister{}
	manager := auth.NewConfigTokenManager(
		auth.NewPasswordTokenManager(&auth.PasswordConfig{
			LoginURL: server.URL + "/login",
			Username: "default",
			Password: "secret",
		}),
		persister,
		server.URL,
		"",
		nil,
	)

	ctx := context.Background()

	_, err := manager.GetToken(ctx)
	require.NoError(t, err)
	_, err = manager.GetToken(ctx)
	require.NoError(t, err)

	manager.Invalidate()

	_, err = manager.GetToken(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{server.URL + "=token-1", server.URL + "=token-2"}, persister.tokens)
	assert.True(t, manager.Renewable())
	assert.Equal(t, "token-2", manager.Current().AccessToken)
}

func TestConfigTokenManager_InitialTokenNotRewritten(t *testing.T) {
	t.Parallel()

	persister := &recordingPersister{}
	manager := auth.NewConfigTokenManager(auth.NewStaticTokenManager("saved"), persister, "https://zen", "saved", nil)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "saved", token)
	assert.Empty(t, persister.tokens)
	assert.False(t, manager.Renewable())
}

func TestConfigTokenManager_PersistFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	persister := &recordingPersister{err: errors.New("read-only file system")}
	manager := auth.NewConfigTokenManager(auth.NewStaticTokenManager("fresh"), persister, "https://zen", "", nil)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", token)
	assert.Len(t, persister.tokens, 1)
}
