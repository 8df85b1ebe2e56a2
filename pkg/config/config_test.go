package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsEmptyPreferences(t *testing.T) {
	prefs, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Empty(t, prefs.PreferredPlatform)
	assert.Empty(t, prefs.CustomBinPath)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	prefs := Preferences{PreferredPlatform: "linux-x86_64-musl", CustomBinPath: "/usr/local/bin"}

	require.NoError(t, Save(path, prefs))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, prefs, loaded)
}

func TestValidatePreferredPlatformRequiresDash(t *testing.T) {
	prefs := Preferences{PreferredPlatform: "linux"}
	assert.Error(t, prefs.Validate())

	prefs.PreferredPlatform = "linux-x86_64"
	assert.NoError(t, prefs.Validate())
}

func TestValidateCustomBinPathMustBeAbsolute(t *testing.T) {
	prefs := Preferences{CustomBinPath: "relative/bin"}
	assert.Error(t, prefs.Validate())

	prefs.CustomBinPath = "/opt/bin"
	assert.NoError(t, prefs.Validate())
}

func TestLoadRejectsInvalidPreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`preferred_platform = "linux"`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRejectsMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid toml"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
