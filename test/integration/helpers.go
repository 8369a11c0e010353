//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestConfig holds configuration for integration tests
type TestConfig struct {
	ServerURL     string
	AdminUser     string
	AdminPassword string
	ZenPath       string
	Verbose       bool
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() *TestConfig {
	adminUser := os.Getenv("ZEN_ADMIN_USER")
	if adminUser == "" {
		adminUser = "default"
	}

	return &TestConfig{
		ServerURL:     os.Getenv("ZEN_SERVER_URL"),
		AdminUser:     adminUser,
		AdminPassword: os.Getenv("ZEN_ADMIN_PASSWORD"),
		ZenPath:       getZenPath(),
		Verbose:       os.Getenv("ZEN_VERBOSE") == "true",
	}
}

// getZenPath determines the path to the zen binary
func getZenPath() string {
	if path := os.Getenv("ZEN_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../zen", "./zen", "../zen"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "zen"
}

// SkipIfMissingConfig skips test if required config is missing
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.ServerURL == "" {
		t.Skip("ZEN_SERVER_URL not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.ZenPath); err != nil {
		t.Skipf("zen binary not found at %s, skipping integration test", config.ZenPath)
	}
}

// CommandRunner runs zen commands against a private configuration file
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a new command runner
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes a zen command and returns output
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a zen command with stdin input
func (runner *CommandRunner) RunWithInput(input string, args ...string) (stdout, stderr string, err error) {
	args = append([]string{"--config", runner.configFile}, args...)

	cmd := exec.Command(runner.config.ZenPath, args...) //nolint:gosec // binary under test
	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.ZenPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON executes a zen command with JSON output and decodes the result into v
func (runner *CommandRunner) RunJSON(v interface{}, args ...string) {
	runner.t.Helper()

	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	require.NoError(runner.t, err, stderr)
	require.NoError(runner.t, json.Unmarshal([]byte(stdout), v), stdout)
}

// Login logs in with the admin credentials
func (runner *CommandRunner) Login() error {
	_, stderr, err := runner.Run("login",
		"--url", runner.config.ServerURL,
		"--username", runner.config.AdminUser,
		"--password", runner.config.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to log in: %s", stderr)
	}

	return nil
}

// GenerateTestName creates a unique test resource name
func GenerateTestName(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// CleanupResource attempts to delete a test resource
func (runner *CommandRunner) CleanupResource(group, name string) {
	stdout, stderr, err := runner.Run(group, "delete", name, "--force")
	if err != nil && runner.config.Verbose {
		runner.t.Logf("Cleanup warning for %s %s: %s\nStderr: %s", group, name, stdout, stderr)
	}
}

// AssertYAMLOutput verifies command output looks like YAML
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if strings.Contains(output, "---") || strings.Contains(output, ":") {
		return
	}

	t.Errorf("Output does not appear to be YAML: %s", output)
}
