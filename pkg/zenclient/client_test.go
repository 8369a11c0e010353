package zenclient_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fivetwenty-io/zenml-client/internal/zentest"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/fivetwenty-io/zenml-client/pkg/zenclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("requires config", func(t *testing.T) {
		t.Parallel()

		_, err := zenclient.New(context.Background(), nil)
		require.ErrorIs(t, err, zen.ErrConfigRequired)

		_, err = zenclient.New(context.Background(), &zen.Config{})
		require.ErrorIs(t, err, zen.ErrURLRequired)
	})

	t.Run("rejects invalid URLs", func(t *testing.T) {
		t.Parallel()

		for _, url := range []string{"zen.example.com", "ftp://zen.example.com", "sqlite:///tmp/zen.db"} {
			_, err := zenclient.New(context.Background(), &zen.Config{URL: url})
			require.ErrorIs(t, err, zen.ErrInvalidURL, url)
		}
	})

	t.Run("lazy by default", func(t *testing.T) {
		t.Parallel()

		server := zentest.New(t)

		store, err := zenclient.NewWithPassword(context.Background(), server.URL+"/", zentest.DefaultUsername, zentest.DefaultPassword)
		require.NoError(t, err)
		assert.Zero(t, server.Logins())

		_, err = store.Projects().List(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, 1, server.Logins())
	})

	t.Run("token", func(t *testing.T) {
		t.Parallel()

		server := zentest.New(t)

		store, err := zenclient.NewWithToken(context.Background(), server.URL, server.Login())
		require.NoError(t, err)

		_, err = store.Projects().List(context.Background(), nil)
		require.NoError(t, err)
	})

	t.Run("verify on connect", func(t *testing.T) {
		t.Parallel()

		server := zentest.New(t)

		_, err := zenclient.New(context.Background(), &zen.Config{
			URL:             server.URL,
			Username:        zentest.DefaultUsername,
			Password:        zentest.DefaultPassword,
			VerifyOnConnect: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, server.Hits(http.MethodGet, "/v1/users"))

		_, err = zenclient.New(context.Background(), &zen.Config{
			URL:             server.URL,
			Username:        zentest.DefaultUsername,
			Password:        "wrong",
			VerifyOnConnect: true,
		})
		require.ErrorIs(t, err, zen.ErrAuthentication)
	})
}

func TestNew_ServerVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		version    string
		constraint string
		wantErr    error
	}{
		{name: "in range", version: "0.21.1", constraint: ">=0.20.0, <0.30.0"},
		{name: "too old", version: "0.10.0", constraint: ">=0.20.0", wantErr: zen.ErrIncompatibleServer},
		{name: "caret", version: "0.22.0", constraint: "^0.21.0", wantErr: zen.ErrIncompatibleServer},
		{name: "unparsable", version: "dev", constraint: ">=0.20.0", wantErr: zen.ErrIncompatibleServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := zentest.New(t, zentest.WithVersion(tt.version))

			_, err := zenclient.New(context.Background(), &zen.Config{
				URL:                     server.URL,
				Username:                zentest.DefaultUsername,
				Password:                zentest.DefaultPassword,
				ServerVersionConstraint: tt.constraint,
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
		})
	}

	t.Run("invalid constraint", func(t *testing.T) {
		t.Parallel()

		server := zentest.New(t)

		_, err := zenclient.New(context.Background(), &zen.Config{URL: server.URL, ServerVersionConstraint: "not a constraint"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server version constraint")
	})
}
