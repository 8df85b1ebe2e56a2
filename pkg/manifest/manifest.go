// Package manifest defines the typed package, script, bucket, and
// installed-record entities the core operates on, plus the tagged
// Source sum type shared by the cache and the installed ledger.
package manifest

import (
	"encoding/json"
	"fmt"
)

// PlatformBinary is one release asset known to be compatible with a
// platform identifier.
type PlatformBinary struct {
	URL      string `json:"url"`
	Size     int64  `json:"size,omitempty"`
	Checksum string `json:"checksum,omitempty"`
	Filename string `json:"filename"`
}

// Package is the descriptor for one installable tool: a name, metadata,
// and a map from platform identifier (e.g. "linux-x86_64-musl") to the
// ordered list of compatible assets found on its latest release.
type Package struct {
	Name        string                      `json:"name"`
	Description string                      `json:"description,omitempty"`
	Repo        string                      `json:"repo"`
	Homepage    string                      `json:"homepage,omitempty"`
	License     string                      `json:"license,omitempty"`
	Platforms   map[string][]PlatformBinary `json:"platforms"`
}

// ScriptFlavor names one of the interpreters a script can target.
type ScriptFlavor string

const (
	FlavorPowerShell ScriptFlavor = "powershell"
	FlavorBatch      ScriptFlavor = "batch"
	FlavorBash       ScriptFlavor = "bash"
	FlavorPython     ScriptFlavor = "python"
)

// ScriptPlatform is a script's download location for one flavor.
type ScriptPlatform struct {
	URL      string `json:"url"`
	Checksum string `json:"checksum,omitempty"`
}

// Script is the descriptor for an interpreted-language install target:
// a name plus a map from flavor to download location. At least one
// flavor must be present (enforced by Validate).
type Script struct {
	Name        string                          `json:"name"`
	Description string                          `json:"description,omitempty"`
	Repo        string                          `json:"repo,omitempty"`
	Platforms   map[ScriptFlavor]ScriptPlatform `json:"platforms"`
}

// Validate checks the invariants spec.md §3 requires at construction
// time: non-empty name, non-empty repo, and no platform with an empty
// asset list. An empty platform map passes.
func (p Package) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("manifest: package name is required")
	}
	if p.Repo == "" {
		return fmt.Errorf("manifest: package %q is missing repo", p.Name)
	}
	for id, bins := range p.Platforms {
		if len(bins) == 0 {
			return fmt.Errorf("manifest: package %q platform %q has no binaries", p.Name, id)
		}
	}
	return nil
}

// Validate checks that at least one script flavor is present.
func (s Script) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("manifest: script name is required")
	}
	if len(s.Platforms) == 0 {
		return fmt.Errorf("manifest: script %q must have at least one platform flavor", s.Name)
	}
	return nil
}

// rawScript is the legacy single-flavor script shape this package
// still accepts on read, per the open question in spec.md §9: the
// multi-platform schema is newer and both shapes appear in the wild.
type rawScript struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Repo        string          `json:"repo,omitempty"`
	Flavor      ScriptFlavor    `json:"flavor,omitempty"`
	URL         string          `json:"url,omitempty"`
	Checksum    string          `json:"checksum,omitempty"`
	Platforms   map[ScriptFlavor]ScriptPlatform `json:"platforms,omitempty"`
}

// UnmarshalJSON accepts either the legacy single-flavor shape
// (top-level flavor/url/checksum) or the current multi-platform shape,
// and normalizes to the latter in memory.
func (s *Script) UnmarshalJSON(data []byte) error {
	var raw rawScript
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Name = raw.Name
	s.Description = raw.Description
	s.Repo = raw.Repo
	if len(raw.Platforms) > 0 {
		s.Platforms = raw.Platforms
		return nil
	}
	if raw.Flavor != "" {
		s.Platforms = map[ScriptFlavor]ScriptPlatform{
			raw.Flavor: {URL: raw.URL, Checksum: raw.Checksum},
		}
	}
	return nil
}

// MarshalJSON always emits the current multi-platform shape, per §9's
// "accept either on read, emit the multi-platform shape on write".
func (s Script) MarshalJSON() ([]byte, error) {
	type alias struct {
		Name        string                          `json:"name"`
		Description string                          `json:"description,omitempty"`
		Repo        string                          `json:"repo,omitempty"`
		Platforms   map[ScriptFlavor]ScriptPlatform `json:"platforms"`
	}
	return json.Marshal(alias{s.Name, s.Description, s.Repo, s.Platforms})
}

// SourceManifest is the document a bucket serves (or the local-source
// file the user maintains): a flat list of packages and scripts.
type SourceManifest struct {
	Packages []Package `json:"packages"`
	Scripts  []Script  `json:"scripts,omitempty"`
}
