package manifest

import (
	"encoding/json"
	"strings"
	"time"
)

// InstalledRecord is one entry in the installed ledger: everything
// needed to know what is on disk, where, and how it got there.
type InstalledRecord struct {
	RepoName      string    `json:"repo_name"`
	Variant       string    `json:"variant,omitempty"`
	ParentPackage string    `json:"parent_package,omitempty"`
	Version       string    `json:"version"`
	Platform      string    `json:"platform"`
	InstalledAt   time.Time `json:"installed_at"`
	InstallPath   string    `json:"install_path"`
	Files         []string  `json:"files"`
	Source        Source    `json:"source"`
	Description   string    `json:"description,omitempty"`
	CommandNames  []string  `json:"command_names"`
	// CommandName is the legacy single-command field; MigrateLedger
	// promotes it into CommandNames on load and the field is never
	// written again.
	CommandName string `json:"command_name,omitempty"`
	AssetName   string `json:"asset_name"`
}

// Key is the ledger key this record is stored under: "{repo_name}" or
// "{repo_name}::{variant}" when a variant was chosen.
func (r InstalledRecord) Key() string {
	if r.Variant == "" {
		return r.RepoName
	}
	return r.RepoName + "::" + r.Variant
}

// SanitizeKey replaces "::" with "-" at the ledger-key → filesystem-path
// boundary (§9: must be applied exactly once at this boundary; harmless
// but pointless if applied twice).
func SanitizeKey(key string) string {
	return strings.ReplaceAll(key, "::", "-")
}

// Ledger is the installed.json document.
type Ledger struct {
	Packages map[string]InstalledRecord `json:"packages"`
}

// EmptyLedger constructs a Ledger with no packages, used when
// installed.json is missing or corrupt.
func EmptyLedger() Ledger {
	return Ledger{Packages: map[string]InstalledRecord{}}
}

// Upsert records or replaces the entry for r.Key().
func (l *Ledger) Upsert(r InstalledRecord) {
	if l.Packages == nil {
		l.Packages = map[string]InstalledRecord{}
	}
	l.Packages[r.Key()] = r
}

// Delete removes the entry for key, reporting whether it existed.
func (l *Ledger) Delete(key string) bool {
	if _, ok := l.Packages[key]; !ok {
		return false
	}
	delete(l.Packages, key)
	return true
}

// Find is an exact-match lookup by ledger key. Per §9's open question,
// this is deliberately NOT glob-aware — globbing is defined only on the
// cache (pkg/cache), and that asymmetry is preserved here on purpose.
func (l Ledger) Find(key string) (InstalledRecord, bool) {
	r, ok := l.Packages[key]
	return r, ok
}

// MigrateLedger promotes any legacy single-command records (CommandName
// set, CommandNames empty) to the list form, in place. Safe to call
// repeatedly (idempotent).
func MigrateLedger(l *Ledger) {
	for key, r := range l.Packages {
		if len(r.CommandNames) == 0 && r.CommandName != "" {
			r.CommandNames = []string{r.CommandName}
		}
		r.CommandName = ""
		l.Packages[key] = r
	}
}

// UnmarshalJSON parses a Ledger and immediately migrates legacy records,
// so every Ledger obtained via json.Unmarshal is already normalized.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	type alias Ledger
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*l = Ledger(a)
	MigrateLedger(l)
	return nil
}
