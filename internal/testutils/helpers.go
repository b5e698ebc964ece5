// Package testutils holds shared test helpers.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

// TestContext creates a test context with timeout
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// LoadTempConfig writes a TOML config to a temp dir and points viper at it.
// Viper is reset first so tests do not leak settings into each other.
func LoadTempConfig(t *testing.T, content string) {
	t.Helper()

	configFile := filepath.Join(t.TempDir(), "regsweep.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0644))

	viper.Reset()
	viper.SetConfigFile(configFile)
	require.NoError(t, viper.ReadInConfig())
}
