package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.toml")

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, path, resolved)
	assert.True(t, filepath.IsAbs(cfg.Corpus.TextDir))
	assert.Equal(t, int64(2_000_000), cfg.Planner.MaxUnitBytes)
	assert.Equal(t, 256, cfg.Pipeline.CacheEntries)
	assert.False(t, cfg.Storage.Enabled)
}

func TestLoad_File(t *testing.T) {
	textDir := t.TempDir()
	path := writeConfig(t, `
[corpus]
text_dir = "`+filepath.ToSlash(textDir)+`"
language = "fr"

[planner]
parallelism = 6
max_unit_bytes = 500000

[pipeline]
workers = 3

[storage]
enabled = true
db_path = ":memory:"

[logging]
format = "JSON"
level = "Debug"
`)

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, textDir, cfg.Corpus.TextDir)
	assert.Equal(t, "fr", cfg.Corpus.Language)
	assert.Equal(t, 6, cfg.Planner.Parallelism)
	assert.Equal(t, int64(500_000), cfg.Planner.MaxUnitBytes)
	assert.Equal(t, 3, cfg.Pipeline.Workers)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, ":memory:", cfg.Storage.DBPath)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "[corpus]\nlanguage = \"fr\"\n")
	t.Setenv(EnvLanguage, "de")
	t.Setenv(EnvParallelism, "12")
	t.Setenv(EnvWorkers, "2")
	t.Setenv(EnvLogLevel, "warn")

	cfg, _, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Corpus.Language)
	assert.Equal(t, 12, cfg.Planner.Parallelism)
	assert.Equal(t, 2, cfg.Pipeline.Workers)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv(EnvParallelism, "many")
	_, _, _, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorContains(t, err, EnvParallelism)
}

func TestLoad_UnknownField(t *testing.T) {
	path := writeConfig(t, "[corpus]\nlanguages = \"en\"\n")
	_, _, _, err := Load(path)
	assert.ErrorContains(t, err, "parse config")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"negative parallelism", "[planner]\nparallelism = -1\n", "planner.parallelism"},
		{"zero unit size", "[planner]\nmax_unit_bytes = 0\n", "planner.max_unit_bytes"},
		{"negative workers", "[pipeline]\nworkers = -2\n", "pipeline.workers"},
		{"language with separator", "[corpus]\nlanguage = \"en/../x\"\n", "corpus.language"},
		{"parent directory language", "[corpus]\nlanguage = \"..\"\n", "corpus.language"},
		{"current directory language", "[corpus]\nlanguage = \".\"\n", "corpus.language"},
		{"bad log format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"storage without path", "[storage]\nenabled = true\ndb_path = \"\"\n", "storage.db_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := Load(writeConfig(t, tt.content))
			assert.ErrorContains(t, err, tt.errText)
		})
	}
}

func TestCreateSample_Loads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, CreateSample(path))

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandPath("~/corpus")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "corpus"), got)

	got, err = ExpandPath(":memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", got)

	got, err = ExpandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}
