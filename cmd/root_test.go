package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags(t *testing.T) {
	t.Helper()
	cfgFile = ""
	t.Cleanup(func() { cfgFile = "" })
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	resetFlags(t)
	t.Chdir(t.TempDir())
	t.Setenv(configEnvVar, "")

	cfg, path, err := loadConfig()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, "./input", cfg.InputDir)
}

func TestLoadConfig_EnvVarPath(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "club.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: ./reportes\nworkers: 2\n"), 0644))
	t.Setenv(configEnvVar, path)

	cfg, used, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, "./reportes", cfg.OutputDir)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	resetFlags(t)
	cfgFile = filepath.Join(t.TempDir(), "nope.yaml")

	_, _, err := loadConfig()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, loadDotEnv(filepath.Join(dir, ".env")))

	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RECONCILER_TEST_DOTENV=si\n"), 0644))
	t.Setenv("RECONCILER_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("RECONCILER_TEST_DOTENV"))

	require.NoError(t, loadDotEnv(envFile))
	assert.Equal(t, "si", os.Getenv("RECONCILER_TEST_DOTENV"))
}
