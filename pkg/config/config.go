// Package config loads and saves the user's config.toml preferences
// file: a preferred platform override and a custom bin directory.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Preferences is the config.toml document.
type Preferences struct {
	PreferredPlatform string `toml:"preferred_platform,omitempty"`
	CustomBinPath     string `toml:"custom_bin_path,omitempty"`
}

// Validate enforces §6's field constraints: a preferred platform must
// look like a platform identifier (contains a dash), and a custom bin
// path must be absolute.
func (p Preferences) Validate() error {
	if p.PreferredPlatform != "" && !strings.Contains(p.PreferredPlatform, "-") {
		return errors.Errorf("config: preferred_platform %q must contain at least one '-' (e.g. linux-x86_64)", p.PreferredPlatform)
	}
	if p.CustomBinPath != "" && !filepath.IsAbs(p.CustomBinPath) {
		return errors.Errorf("config: custom_bin_path %q must be an absolute path", p.CustomBinPath)
	}
	return nil
}

// Load reads config.toml from path. A missing file returns empty,
// valid preferences rather than an error.
func Load(path string) (Preferences, error) {
	var prefs Preferences
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return prefs, nil
	}
	if err != nil {
		return prefs, errors.Wrapf(err, "config: read %s", path)
	}
	if _, err := toml.Decode(string(data), &prefs); err != nil {
		return prefs, errors.Wrapf(err, "config: parse %s", path)
	}
	if err := prefs.Validate(); err != nil {
		return prefs, err
	}
	return prefs, nil
}

// Save validates and writes prefs to path, creating the parent
// directory if needed.
func Save(path string, prefs Preferences) error {
	if err := prefs.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "config: create directory for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "config: create %s", path)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(prefs); err != nil {
		return errors.Wrapf(err, "config: encode %s", path)
	}
	return nil
}
