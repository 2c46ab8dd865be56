package testutils

import (
	"testing"

	"github.com/nfrund/binstore/internal/config"
	"github.com/stretchr/testify/require"
)

// ConfigForTests returns a validated configuration backed by a fresh
// temporary storage root. Entries in overrides replace the test defaults;
// everything is applied with t.Setenv so the environment is restored when
// the test ends.
func ConfigForTests(t *testing.T, overrides map[string]string) config.Provider {
	t.Helper()

	env := map[string]string{
		"STORAGE_BACKEND":       config.BackendFilesystem,
		"STORAGE_ROOT":          t.TempDir(),
		"SERVER_ADDR":           "127.0.0.1:0",
		"LOG_FORMAT":            "text",
		"LOG_LEVEL":             "warn",
		"RATE_LIMIT_PER_MINUTE": "0",
		"SWEEP_INTERVAL":        "0s",
		"SWEEP_TTL":             "1h",
		"EVENTS_ENABLED":        "true",
	}
	for key, value := range overrides {
		env[key] = value
	}
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	return cfg
}
