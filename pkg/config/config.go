// Package config reads daybook settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvDBPath    = "DAYBOOK_DB"
	EnvPrefsPath = "DAYBOOK_PREFS"
	EnvWAL       = "DAYBOOK_WAL"
	EnvSync      = "DAYBOOK_SYNC"
	EnvPageSize  = "DAYBOOK_PAGE_SIZE"
	EnvEnvFile   = "DAYBOOK_ENV_FILE"
)

// Config holds settings that flags may override. Empty paths mean "use the
// platform default".
type Config struct {
	DBPath    string
	PrefsPath string
	WAL       bool
	SyncMode  string
	PageSize  int
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Config {
	return Config{
		WAL:      true,
		SyncMode: "FULL",
		PageSize: 10,
	}
}

// Load reads the .env file named by DAYBOOK_ENV_FILE (default ".env"), if it
// exists, and then the environment. Variables already set in the environment
// win over the file.
func Load() (Config, error) {
	envFile := getEnv(EnvEnvFile, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	c := Defaults()
	c.DBPath = getEnv(EnvDBPath, c.DBPath)
	c.PrefsPath = getEnv(EnvPrefsPath, c.PrefsPath)
	c.WAL = getEnvAsBool(EnvWAL, c.WAL)
	c.SyncMode = strings.ToUpper(getEnv(EnvSync, c.SyncMode))
	if n := getEnvAsInt(EnvPageSize, c.PageSize); n > 0 {
		c.PageSize = n
	}
	return c
}

func getEnv(key, defaultVal string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultVal
}
