package infra

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Engine.MaxRetries)
	assert.Equal(t, 4*time.Second, cfg.Engine.Backoff)
	assert.True(t, cfg.Engine.RequireAllocationFirst)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadConfigEnvAndFlags(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENGINE_MAX_RETRIES", "4")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("gemini.api_key", "", "")
	require.NoError(t, flags.Parse([]string{"--gemini.api_key=secret"}))

	cfg, err := LoadConfig(flags)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Engine.MaxRetries)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
}

func TestLoadConfigRejectsNegativeRetries(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENGINE_MAX_RETRIES", "-1")

	_, err := LoadConfig(nil)
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger(LoggerConfig{Level: "debug", Format: "console"})
	assert.NoError(t, err)

	_, err = NewLogger(LoggerConfig{Level: "loud"})
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test
// (stand-in for testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
