package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) string { return "" }

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:8000", c.APIBaseURL)
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 60*time.Second, c.OTPResendCooldown)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
	assert.False(t, c.IsProduction())
}

func TestLoad_NoSources_ReturnsDefaults(t *testing.T) {
	cfg, err := load(nil, noEnv)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	cfg, err := load(nil, envOf(map[string]string{
		"AGENT_API_URL": "https://support.example.com",
		"APP_ENV":       "production",
		"AGENT_DB_PATH": "/var/lib/agent.db",
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://support.example.com", cfg.APIBaseURL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "/var/lib/agent.db", cfg.DatabasePath)
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "agent.json", `{
		"api_base_url": "https://json.example.com",
		"request_timeout": "5s",
		"otp_resend_cooldown": 30000000000,
		"log_backend": "zap"
	}`)

	cfg, err := load([]string{"-c", path}, noEnv)
	require.NoError(t, err)

	want := defaults()
	want.APIBaseURL = "https://json.example.com"
	want.RequestTimeout = 5 * time.Second
	want.OTPResendCooldown = 30 * time.Second
	want.LogBackend = "zap"
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "agent.yaml", "api_base_url: https://yaml.example.com\nenvironment: production\nlog_level: debug\n")

	cfg, err := load([]string{"-config=" + path}, noEnv)
	require.NoError(t, err)

	assert.Equal(t, "https://yaml.example.com", cfg.APIBaseURL)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_SubSecondTimeoutFromFile(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want time.Duration
	}{
		{"500ms", 500 * time.Millisecond},
		{"1500ms", 1500 * time.Millisecond},
	} {
		path := writeFile(t, "agent.yaml", "request_timeout: "+tc.raw+"\n")

		cfg, err := load([]string{"-c", path}, noEnv)
		require.NoError(t, err)
		assert.Equal(t, tc.want, cfg.RequestTimeout, tc.raw)
	}

	path := writeFile(t, "agent.yaml", "request_timeout: 500ms\n")
	cfg, err := load([]string{"-c", path, "-t", "2"}, noEnv)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout, "-t still wins over the file")
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "agent.json", `{"api_base_url": "https://file.example.com", "environment": "staging"}`)

	cfg, err := load(
		[]string{"-c", path, "-a", "https://flag.example.com"},
		envOf(map[string]string{"AGENT_API_URL": "https://env.example.com", "AGENT_DB_PATH": "env.db"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example.com", cfg.APIBaseURL)
	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "env.db", cfg.DatabasePath)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := load([]string{"-c", filepath.Join(t.TempDir(), "absent.json")}, noEnv)
		require.Error(t, err)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{ this is not valid json`)
		_, err := load([]string{"-c", path}, noEnv)
		require.Error(t, err)
	})

	t.Run("invalid timeout flag", func(t *testing.T) {
		_, err := load([]string{"-t", "abc"}, noEnv)
		require.Error(t, err)
	})
}

func TestParseFlags(t *testing.T) {
	cfg := defaults()
	require.NoError(t, parseFlags(cfg, []string{"-a", "http://127.0.0.1:9000", "-e", "production", "-d", "x.db", "-t", "3", "-unrelated"}))

	want := defaults()
	want.APIBaseURL = "http://127.0.0.1:9000"
	want.Environment = "production"
	want.DatabasePath = "x.db"
	want.RequestTimeout = 3 * time.Second
	assert.Empty(t, cmp.Diff(want, cfg))
}
