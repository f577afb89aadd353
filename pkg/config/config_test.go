package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvDBPath, EnvPrefsPath, EnvWAL, EnvSync, EnvPageSize, EnvEnvFile} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	assert.Equal(t, Defaults(), FromEnv())
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDBPath, "/tmp/j.db")
	t.Setenv(EnvWAL, "false")
	t.Setenv(EnvSync, "normal")
	t.Setenv(EnvPageSize, "25")

	c := FromEnv()
	assert.Equal(t, "/tmp/j.db", c.DBPath)
	assert.False(t, c.WAL)
	assert.Equal(t, "NORMAL", c.SyncMode)
	assert.Equal(t, 25, c.PageSize)
}

func TestFromEnvIgnoresBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvWAL, "maybe")
	t.Setenv(EnvPageSize, "-3")

	c := FromEnv()
	assert.True(t, c.WAL)
	assert.Equal(t, 10, c.PageSize)
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "daybook.env")
	require.NoError(t, os.WriteFile(path, []byte("DAYBOOK_PREFS=/tmp/prefs.yaml\nDAYBOOK_SYNC=OFF\n"), 0o644))
	t.Setenv(EnvEnvFile, path)
	t.Setenv(EnvSync, "EXTRA")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/prefs.yaml", c.PrefsPath)
	assert.Equal(t, "EXTRA", c.SyncMode, "process environment wins over the file")

	// godotenv sets variables for the process; undo that for later tests.
	os.Unsetenv(EnvPrefsPath)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvEnvFile, filepath.Join(t.TempDir(), "absent.env"))

	_, err := Load()
	assert.NoError(t, err)
}
