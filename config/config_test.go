package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rafalpiotrowski/tx-guard/internal/ingest"
)

func writeYaml(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGetYamlFull(t *testing.T) {
	path := writeYaml(t, `
input: transactions.csv
buffer: "64"
on_malformed: skip
journal_dir: ./audit
log_level: info
`)

	cfg, err := getYaml(path)
	require.NoError(t, err)

	assert.Equal(t, "transactions.csv", cfg.Input)
	assert.Equal(t, 64, cfg.Buffer)
	assert.Equal(t, ingest.Skip, cfg.OnMalformed)
	assert.Equal(t, "./audit", cfg.JournalDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestGetYamlDefaults(t *testing.T) {
	path := writeYaml(t, "input: transactions.csv\n")

	cfg, err := getYaml(path)
	require.NoError(t, err)

	assert.Equal(t, 32, cfg.Buffer)
	assert.Equal(t, ingest.Abort, cfg.OnMalformed)
	assert.Empty(t, cfg.JournalDir)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestGetYamlMissingInput(t *testing.T) {
	path := writeYaml(t, "buffer: \"8\"\n")

	_, err := getYaml(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing 'input'")
}

func TestGetYamlBadBuffer(t *testing.T) {
	path := writeYaml(t, "input: t.csv\nbuffer: \"lots\"\n")

	_, err := getYaml(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'buffer'")
}

func TestGetYamlBadPolicy(t *testing.T) {
	path := writeYaml(t, "input: t.csv\non_malformed: explode\n")

	_, err := getYaml(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "'on_malformed'")
}

func TestGetYamlMissingFile(t *testing.T) {
	_, err := getYaml(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
