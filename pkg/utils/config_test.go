package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxygene76/exotargets/internal/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, validateConfig(DefaultConfig()))
}

func TestLoadConfigCreatesDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, filepath.Join(home, configDirName, "config.yaml"))

	// the saved file is picked up on the next run
	again, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), again)
}

func TestLoadConfigCreatesDefaultWithEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("EXOTARGETS_ARCHIVE_TABLE", "ps")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "ps", cfg.Archive.Table)

	// the file keeps the defaults, the environment is not persisted
	saved, err := os.ReadFile(filepath.Join(home, configDirName, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "table: pscomppars")
}

func TestLoadConfigFirstRunInvalidEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("EXOTARGETS_CONSTRAINTS_TYPE", "Occultation")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrInvalidArgument), err.Error())
}

func TestLoadConfigMergesDefaults(t *testing.T) {
	path := writeConfig(t, `
hz:
  points: 10
constraints:
  max_radius: 2.5
logging:
  format: json
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.HZ.Points)
	assert.Equal(t, 2600.0, cfg.HZ.TeffMin)
	assert.Equal(t, 2.5, cfg.Constraints.MaxRadius)
	assert.Equal(t, "Transit", cfg.Constraints.Type)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, DefaultConfig().Archive, cfg.Archive)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("EXOTARGETS_LOGGING_LEVEL", "debug")
	t.Setenv("EXOTARGETS_ARCHIVE_TIMEOUT_SECONDS", "5")

	cfg, err := LoadConfig(writeConfig(t, "logging:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5*time.Second, cfg.Archive.Timeout())
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"observation_type", "constraints:\n  type: Occultation\n"},
		{"radius_range", "constraints:\n  min_radius: 5\n  max_radius: 4\n"},
		{"hz_points", "hz:\n  points: 1\n"},
		{"archive_url", "archive:\n  url: not a url\n"},
		{"log_format", "logging:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrInvalidArgument), err.Error())
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveConfigTo(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Paths.QueryFile = "queries/tsm.adql"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, SaveConfigTo(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigHelpers(t *testing.T) {
	cfg := DefaultConfig()
	dir := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.OutputDir = filepath.Join(dir, "output")

	require.NoError(t, cfg.CreateDirectories())
	assert.DirExists(t, cfg.Paths.OutputDir)
	assert.Equal(t, filepath.Join(dir, "output", "hz.tsv"), cfg.OutputPath("hz.tsv"))
	assert.Equal(t, 30*time.Minute, cfg.Archive.CacheTTL())
}
