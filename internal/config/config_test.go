package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "txagent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Setenv("TXAGENT_TEST_KEY", "sk-local")

	path := writeConfig(t, `
model:
  api_key: ${TXAGENT_TEST_KEY}
  name: gpt-4o-mini
  timeout: 30s
agent:
  max_iterations: 4
  parallel_tools: true
store:
  driver: postgres
  dsn: postgres://localhost/tx
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-local", cfg.Model.APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Model.Name)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout)
	assert.Equal(t, DefaultBaseURL, cfg.Model.BaseURL)
	assert.InDelta(t, DefaultTemperature, cfg.Model.Temperature, 1e-6)
	assert.Equal(t, 4, cfg.Agent.MaxIterations)
	assert.True(t, cfg.Agent.ParallelTools)
	assert.Equal(t, "postgres", cfg.Store.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "store:\n  driver: oracle\n"},
		{"zero iterations", "agent:\n  max_iterations: 0\n"},
		{"temperature too high", "model:\n  temperature: 3\n"},
		{"server without command", "mcp:\n  servers:\n    - name: fx\n"},
		{"server bad name", "mcp:\n  servers:\n    - name: fx rates\n      command: fx\n"},
		{"duplicate servers", "mcp:\n  servers:\n    - {name: fx, command: a}\n    - {name: fx, command: b}\n"},
		{"bad yaml", "model: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DefaultModel, cfg.Model.Name)
	assert.Equal(t, DefaultDSN, cfg.Store.DSN)
	assert.Equal(t, DefaultMaxIterations, cfg.Agent.MaxIterations)
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("TXAGENT_DOTENV_A=from-file\nTXAGENT_DOTENV_B=from-file\n"), 0644))

	t.Setenv("TXAGENT_DOTENV_A", "from-env")
	t.Setenv("TXAGENT_DOTENV_B", "")
	os.Unsetenv("TXAGENT_DOTENV_B")

	require.NoError(t, LoadDotEnv(path, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-env", os.Getenv("TXAGENT_DOTENV_A"))
	assert.Equal(t, "from-file", os.Getenv("TXAGENT_DOTENV_B"))
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TXAGENT_HOST", "db.local")

	assert.Equal(t, "postgres://db.local/tx", ExpandEnv("postgres://${TXAGENT_HOST}/tx"))
	assert.Equal(t, "db.local:5432", ExpandEnv("$TXAGENT_HOST:5432"))
	assert.Equal(t, "x", ExpandEnv("x${TXAGENT_UNSET_VAR}"))
	assert.Equal(t, "postgres://localhost/tx", ExpandEnv("postgres://${TXAGENT_UNSET_VAR:-localhost}/tx"))
	assert.Equal(t, "db.local", ExpandEnv("${TXAGENT_HOST:-localhost}"))
	assert.Equal(t, "pa$$word", ExpandEnv("pa$$word"))
	assert.Nil(t, ExpandEnvMap(nil))
	assert.Equal(t, map[string]string{"H": "db.local"}, ExpandEnvMap(map[string]string{"H": "${TXAGENT_HOST}"}))
}
