package omnetup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigParsesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omnetup.conf")
	content := `
# release selection
OMNETUP_VERSION = "7.0.0"
OMNETUP_ENV='lab'
not a key value line
OMNETUP_PRIORITY=idle
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7.0.0", cfg.Values["OMNETUP_VERSION"])
	assert.Equal(t, "lab", cfg.Values["OMNETUP_ENV"])
	assert.Equal(t, "idle", cfg.Values["OMNETUP_PRIORITY"])
	assert.NotContains(t, cfg.Values, "not a key value line")
}

func TestLoadConfigMissingFileIsNotAnError(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "does-not-exist.conf"))
	require.NoError(t, err)
	assert.NotNil(t, cfg.Values)
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omnetup.conf")
	require.NoError(t, os.WriteFile(path, []byte("OMNETUP_ENV=fromfile\n"), 0o644))

	t.Setenv("OMNETUP_ENV", "fromenv")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "fromenv", cfg.Values["OMNETUP_ENV"])
}

func TestInitConfigDefaults(t *testing.T) {
	cfg := &Config{Values: map[string]string{}}
	require.NoError(t, initConfig(cfg))

	assert.Equal(t, defaultVersion, cfg.Version)
	assert.Equal(t, defaultEnvName, cfg.EnvName)
	assert.Equal(t, defaultPython, cfg.PythonPin)
	assert.Equal(t, "normal", cfg.Priority)
	assert.True(t, cfg.WithQtenv)
	assert.False(t, cfg.WithOSG)
	assert.NotEmpty(t, cfg.WorkDir)
}

func TestInitConfigOverrides(t *testing.T) {
	cfg := &Config{Values: map[string]string{
		"OMNETUP_VERSION": "6.1.0",
		"OMNETUP_ENV":     "sandbox",
		"OMNETUP_WORKDIR": "/scratch",
		"OMNETUP_JOBS":    "6",
		"OMNETUP_QTENV":   "no",
		"OMNETUP_OSG":     "yes",
	}}
	require.NoError(t, initConfig(cfg))

	assert.Equal(t, "6.1.0", cfg.Version)
	assert.Equal(t, "sandbox", cfg.EnvName)
	assert.Equal(t, "/scratch", cfg.WorkDir)
	assert.Equal(t, 6, cfg.Jobs)
	assert.False(t, cfg.WithQtenv)
	assert.True(t, cfg.WithOSG)
}

func TestInitConfigRejectsBadJobs(t *testing.T) {
	cfg := &Config{Values: map[string]string{"OMNETUP_JOBS": "zero"}}
	assert.Error(t, initConfig(cfg))

	cfg = &Config{Values: map[string]string{"OMNETUP_JOBS": "0"}}
	assert.Error(t, initConfig(cfg))
}

func TestDerivedPaths(t *testing.T) {
	cfg := &Config{Values: map[string]string{
		"OMNETUP_VERSION": "6.2.0",
		"OMNETUP_WORKDIR": "/work",
	}}
	require.NoError(t, initConfig(cfg))

	assert.Equal(t, "omnetpp-6.2.0-macos-aarch64.tgz", cfg.ArchiveName())
	assert.Equal(t,
		"https://github.com/omnetpp/omnetpp/releases/download/omnetpp-6.2.0/omnetpp-6.2.0-macos-aarch64.tgz",
		cfg.ArchiveURL())
	assert.Equal(t, filepath.Join("/work", "omnetpp-6.2.0-macos-aarch64.tgz"), cfg.ArchivePath())
	assert.Equal(t, filepath.Join("/work", "omnetpp-6.2.0"), cfg.SrcDir())
	assert.Equal(t, filepath.Join("/work", "logs"), cfg.LogDir())
}

func TestArchiveURLOverride(t *testing.T) {
	cfg := &Config{Values: map[string]string{
		"OMNETUP_URL": "s3://mirror/releases/omnetpp.tgz",
	}}
	require.NoError(t, initConfig(cfg))
	assert.Equal(t, "s3://mirror/releases/omnetpp.tgz", cfg.ArchiveURL())
}
