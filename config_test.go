package batchrouter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batchrouter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTempConfig(t, `
api_key: br_config_key
base_url: https://staging.batchrouter.ai
timeout_seconds: 30
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "br_config_key", cfg.APIKey)
	assert.Equal(t, "https://staging.batchrouter.ai", cfg.BaseURL)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestLoadConfig_ResolvesEnvVars(t *testing.T) {
	t.Setenv("BR_CONFIG_TEST_KEY", "br_from_environment")

	path := writeTempConfig(t, `
api_key: os.environ/BR_CONFIG_TEST_KEY
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "br_from_environment", cfg.APIKey)
}

func TestLoadConfig_UnsetEnvVarResolvesEmpty(t *testing.T) {
	path := writeTempConfig(t, `
api_key: os.environ/BR_CONFIG_TEST_UNSET
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.APIKey)
}

func TestLoadConfig_AppliesDefaults(t *testing.T) {
	path := writeTempConfig(t, `
api_key: br_config_key
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, 60, cfg.TimeoutSeconds)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
	assert.Contains(t, err.Error(), path)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeTempConfig(t, "api_key: [unclosed")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestConfig_Client(t *testing.T) {
	cfg := &Config{
		APIKey:         "br_config_key",
		BaseURL:        "https://staging.batchrouter.ai/",
		TimeoutSeconds: 15,
	}

	client, err := cfg.Client()
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "https://staging.batchrouter.ai", client.baseURL)
	assert.Equal(t, 15, int(client.httpClient.Timeout.Seconds()))
}

func TestConfig_ClientAppliesDefaults(t *testing.T) {
	cfg := &Config{APIKey: "br_config_key"}

	client, err := cfg.Client()
	require.NoError(t, err)
	defer client.Close()

	// A hand-built Config gets the same defaults LoadConfig applies.
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
}

func TestConfig_ClientRejectsBadKey(t *testing.T) {
	cfg := &Config{APIKey: "not-a-batchrouter-key"}

	_, err := cfg.Client()
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestResolveEnvVar(t *testing.T) {
	t.Setenv("BR_RESOLVE_TEST", "value")

	assert.Equal(t, "value", resolveEnvVar("os.environ/BR_RESOLVE_TEST"))
	assert.Equal(t, "plain", resolveEnvVar("plain"))
	assert.Empty(t, resolveEnvVar("os.environ/BR_RESOLVE_TEST_UNSET"))
}
