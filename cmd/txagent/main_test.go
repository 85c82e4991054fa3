package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"txagent/internal/tool/builtin"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newWorkspace writes a config pointing at a fresh SQLite file.
func newWorkspace(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "tx.db")
	cfgPath = filepath.Join(dir, "txagent.yaml")
	body := fmt.Sprintf("store:\n  driver: sqlite\n  dsn: %s\n", dbPath)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0644))
	return cfgPath, dbPath
}

func TestRun_InitDBThenQuery(t *testing.T) {
	cfgPath, _ := newWorkspace(t)

	var out bytes.Buffer
	require.Equal(t, exitOK, run([]string{"init-db", "--demo", "--demo-count", "150", "--config", cfgPath}, &out))

	out.Reset()
	require.Equal(t, exitOK, run([]string{"query", "--config", cfgPath}, &out))

	var result builtin.QueryResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, builtin.Metadata{Limit: 100, Returned: 100, HasMore: true}, result.Metadata)

	out.Reset()
	require.Equal(t, exitOK, run([]string{"query", "--config", cfgPath, "--limit", "5", "--start-date", "1990-01-01", "--end-date", "1990-12-31"}, &out))
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, builtin.Metadata{Limit: 5, Returned: 0, HasMore: false}, result.Metadata)
	assert.Empty(t, result.Transactions)
}

func TestRun_ExitCodes(t *testing.T) {
	cfgPath, _ := newWorkspace(t)
	require.Equal(t, exitOK, run([]string{"init-db", "--config", cfgPath}, &bytes.Buffer{}))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"unknown command", []string{"forecast"}, exitUsage},
		{"unknown flag", []string{"query", "--config", cfgPath, "--bogus"}, exitUsage},
		{"invalid limit", []string{"query", "--config", cfgPath, "--limit", "0"}, exitUsage},
		{"bad driver", []string{"query", "--config", cfgPath, "--driver", "oracle"}, exitUsage},
		{"missing config", []string{"query", "--config", filepath.Join(t.TempDir(), "none.yaml")}, exitUsage},
		{"bad demo count", []string{"init-db", "--config", cfgPath, "--demo", "--demo-count", "0"}, exitUsage},
		{"malformed date", []string{"query", "--config", cfgPath, "--start-date", "yesterday"}, exitInternal},
		{"unreachable store", []string{"query", "--config", cfgPath, "--driver", "postgres", "--dsn", "postgres://127.0.0.1:1/none?connect_timeout=1"}, exitInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, run(tt.args, &bytes.Buffer{}))
		})
	}
}
