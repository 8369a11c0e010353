package commands_test

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fivetwenty-io/zenml-client/internal/zentest"
	"github.com/fivetwenty-io/zenml-client/pkg/zen"
	"github.com/fivetwenty-io/zenml-client/pkg/zenclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// findSubcommand finds a subcommand by name within a cobra command.
func findSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

// setupCLI points the CLI at a fresh fake server with JSON output and a
// configuration file in a temporary directory. Commands share viper's global
// state, so tests using it must not run in parallel.
func setupCLI(t *testing.T, opts ...zentest.Option) *zentest.Server {
	t.Helper()

	viper.Reset()
	t.Cleanup(viper.Reset)

	server := zentest.New(t, opts...)

	viper.SetConfigFile(filepath.Join(t.TempDir(), "config.yml"))
	viper.Set("url", server.URL)
	viper.Set("username", zentest.DefaultUsername)
	viper.Set("password", zentest.DefaultPassword)
	viper.Set("output", "json")

	return server
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, input string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

// storeFor returns a library store on the fake for creating fixtures.
func storeFor(t *testing.T, server *zentest.Server) zen.Store {
	t.Helper()

	store, err := zenclient.NewWithPassword(context.Background(), server.URL, zentest.DefaultUsername, zentest.DefaultPassword)
	require.NoError(t, err)

	return store
}
