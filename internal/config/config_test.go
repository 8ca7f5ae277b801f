package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := load(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, "prod", c.Env)
	assert.Equal(t, "https://api.youversion.com", c.API.BaseURL)
	assert.Equal(t, 30*time.Second, c.API.Timeout)
	assert.Equal(t, "info", c.Log.ConsoleLevel)
	assert.Equal(t, "debug", c.Log.FileLevel)
	assert.Equal(t, 111, c.Defaults.VersionID)
	assert.Equal(t, "text", c.Defaults.Format)
	assert.Equal(t, "0 7 * * *", c.Defaults.Watch.Schedule)
	assert.Empty(t, c.File, "missing default file is not an error")
	assert.ErrorIs(t, c.RequireAPIKey(), ErrNoAPIKey)
}

func TestLoad_Environment(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := load(map[string]string{
		"ENV":                 "dev",
		"YOUVERSION_API_KEY":  "k",
		"YOUVERSION_BASE_URL": "http://127.0.0.1:8080",
		"YOUVERSION_TIMEOUT":  "5s",
		"LOG_CONSOLE_LEVEL":   "DEBUG",
	})
	require.NoError(t, err)

	assert.True(t, c.IsDev())
	assert.NoError(t, c.RequireAPIKey())
	assert.Equal(t, "http://127.0.0.1:8080", c.API.BaseURL)
	assert.Equal(t, 5*time.Second, c.API.Timeout)
	assert.Equal(t, "debug", c.Log.ConsoleLevel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := map[string]map[string]string{
		"env":     {"ENV": "staging"},
		"level":   {"LOG_CONSOLE_LEVEL": "loud"},
		"timeout": {"YOUVERSION_TIMEOUT": "soon"},
		"url":     {"YOUVERSION_BASE_URL": "not a url"},
	}
	for name, environ := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := load(environ)
			assert.Error(t, err)
		})
	}
}

func TestLoad_LogLevels(t *testing.T) {
	t.Chdir(t.TempDir())

	for _, level := range []string{"debug", "info", "warn", "warning", "error"} {
		t.Run(level, func(t *testing.T) {
			c, err := load(map[string]string{"LOG_CONSOLE_LEVEL": level, "LOG_FILE_LEVEL": level})
			require.NoError(t, err)
			assert.Equal(t, level, c.Log.ConsoleLevel)
			assert.Equal(t, level, c.Log.FileLevel)
		})
	}
}

func TestLoad_DefaultsFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(DefaultFile, []byte(`
version_id = 1
language = "de"
format = "html"
retries = 3

[watch]
schedule = "@hourly"
`), 0o600))

	c, err := load(map[string]string{})
	require.NoError(t, err)

	assert.Equal(t, DefaultFile, c.File)
	assert.Equal(t, 1, c.Defaults.VersionID)
	assert.Equal(t, "de", c.Defaults.Language)
	assert.Equal(t, "html", c.Defaults.Format)
	assert.Equal(t, 3, c.Defaults.Retries)
	assert.Equal(t, "@hourly", c.Defaults.Watch.Schedule)
}

func TestLoad_DefaultsFileErrors(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, err := load(map[string]string{"YVCTL_CONFIG": filepath.Join(dir, "missing.toml")})
	assert.ErrorIs(t, err, os.ErrNotExist, "an explicit file must exist")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`colour = "blue"`), 0o600))
	_, err = load(map[string]string{"YVCTL_CONFIG": bad})
	assert.Error(t, err, "unknown keys are rejected")

	invalid := filepath.Join(dir, "invalid.toml")
	require.NoError(t, os.WriteFile(invalid, []byte(`format = "pdf"`), 0o600))
	_, err = load(map[string]string{"YVCTL_CONFIG": invalid})
	assert.Error(t, err)
}
