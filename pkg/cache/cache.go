// Package cache maintains the merged, time-bounded view of every
// package known to the core: bucket-declared packages plus locally
// added direct-URL entries, flattened into one queryable catalog.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gobwas/glob"
	"github.com/mitchellh/copystructure"
	"github.com/pkg/errors"

	"github.com/wenget/wenget/pkg/manifest"
)

const defaultTTL = 24 * time.Hour

// Entry pairs a package descriptor with where it came from.
type Entry struct {
	Package manifest.Package `json:"package"`
	Source  manifest.Source  `json:"source"`
}

// ScriptEntry pairs a script descriptor with where it came from. Kept
// in a map parallel to Packages per spec.md §4.2: scripts live
// alongside binaries with the same merge/override semantics, just
// keyed by name instead of repo URL, since Script.Repo is optional.
type ScriptEntry struct {
	Script manifest.Script `json:"script"`
	Source manifest.Source `json:"source"`
}

// SourceInfo records how many packages one source contributed and when
// it was last fetched. `wenget bucket refresh` reports how many sources
// the rebuilt cache holds; `wenget bucket list` does not read them.
type SourceInfo struct {
	Source       manifest.Source `json:"source"`
	PackageCount int             `json:"package_count"`
	LastFetched  *time.Time      `json:"last_fetched,omitempty"`
	URL          string          `json:"url,omitempty"`
}

// Cache is the manifest-cache.json document: an in-memory view keyed by
// repo URL, merged from every enabled bucket plus local entries.
type Cache struct {
	Version     string                 `json:"version"`
	LastUpdated time.Time              `json:"last_updated"`
	TTL         time.Duration          `json:"ttl_seconds"`
	Sources     map[string]SourceInfo  `json:"sources"`
	Packages    map[string]Entry       `json:"packages"`
	Scripts     map[string]ScriptEntry `json:"scripts"`
}

// New constructs an empty cache with the default TTL.
func New() *Cache {
	return &Cache{
		Version:  "1.0",
		TTL:      defaultTTL,
		Sources:  map[string]SourceInfo{},
		Packages: map[string]Entry{},
		Scripts:  map[string]ScriptEntry{},
	}
}

// cacheJSON mirrors Cache but stores TTL as whole seconds on the wire,
// matching the document's historical "ttl_seconds" field.
type cacheJSON struct {
	Version     string                 `json:"version"`
	LastUpdated time.Time              `json:"last_updated"`
	TTLSeconds  int64                  `json:"ttl_seconds"`
	Sources     map[string]SourceInfo  `json:"sources"`
	Packages    map[string]Entry       `json:"packages"`
	Scripts     map[string]ScriptEntry `json:"scripts"`
}

func (c Cache) MarshalJSON() ([]byte, error) {
	ttl := c.TTL
	if ttl == 0 {
		ttl = defaultTTL
	}
	return json.Marshal(cacheJSON{
		Version: c.Version, LastUpdated: c.LastUpdated,
		TTLSeconds: int64(ttl.Seconds()), Sources: c.Sources, Packages: c.Packages, Scripts: c.Scripts,
	})
}

func (c *Cache) UnmarshalJSON(data []byte) error {
	var raw cacheJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	ttl := time.Duration(raw.TTLSeconds) * time.Second
	if ttl == 0 {
		ttl = defaultTTL
	}
	c.Version = raw.Version
	c.LastUpdated = raw.LastUpdated
	c.TTL = ttl
	c.Sources = raw.Sources
	c.Packages = raw.Packages
	c.Scripts = raw.Scripts
	if c.Sources == nil {
		c.Sources = map[string]SourceInfo{}
	}
	if c.Packages == nil {
		c.Packages = map[string]Entry{}
	}
	if c.Scripts == nil {
		c.Scripts = map[string]ScriptEntry{}
	}
	return nil
}

// IsValid reports whether the cache's age is within its TTL, as of now.
func (c *Cache) IsValid(now time.Time) bool {
	return now.Sub(c.LastUpdated) < c.TTL
}

// Load reads a cache document from path. A missing file returns a fresh
// empty cache rather than an error; corrupt files are the repair
// layer's concern, not this one's (see pkg/repair.DiscardCache).
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "cache: read %s", path)
	}
	c := New()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "cache: parse %s", path)
	}
	return c, nil
}

// Save persists the cache to path atomically (temp file + rename),
// creating the parent directory if needed.
func (c *Cache) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "cache: create directory for %s", path)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cache: marshal")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*")
	if err != nil {
		return errors.Wrapf(err, "cache: create temp file for %s", path)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrapf(err, "cache: write temp file %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "cache: close temp file %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "cache: rename %s to %s", tmpPath, path)
	}
	return nil
}

// put stores a deep copy of pkg, never the caller's value. Package
// carries a Platforms map; without this, two entries built from the
// same bucket fetch would alias it, and mutating one package found via
// FindByName/Search would silently corrupt every other reference to it.
func (c *Cache) put(pkg manifest.Package, src manifest.Source) {
	cloned := pkg
	if dup, err := copystructure.Copy(pkg); err == nil {
		cloned = dup.(manifest.Package)
	}
	c.Packages[pkg.Repo] = Entry{Package: cloned, Source: src}
}

// putScript stores a deep copy of script, keyed by name (Script.Repo
// is optional, so name is the only key every script has), for the same
// aliasing reason put deep-copies Package.
func (c *Cache) putScript(script manifest.Script, src manifest.Source) {
	cloned := script
	if dup, err := copystructure.Copy(script); err == nil {
		cloned = dup.(manifest.Script)
	}
	c.Scripts[script.Name] = ScriptEntry{Script: cloned, Source: src}
}

// FindScriptByName is an exact lookup by name, the scripts map's key.
func (c *Cache) FindScriptByName(name string) (ScriptEntry, bool) {
	e, ok := c.Scripts[name]
	return e, ok
}

// FindByName returns the first package whose Name matches, in no
// particular order (repo URL is the only unique key this cache has).
func (c *Cache) FindByName(name string) (Entry, bool) {
	for _, e := range c.Packages {
		if e.Package.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// FindByRepo is an exact lookup by repo URL, the cache's native key.
func (c *Cache) FindByRepo(repo string) (Entry, bool) {
	e, ok := c.Packages[repo]
	return e, ok
}

// Search returns every entry whose name matches the glob pattern,
// sorted by name for stable output.
func (c *Cache) Search(pattern string) ([]Entry, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "cache: invalid search pattern %q", pattern)
	}
	var matches []Entry
	for _, e := range c.Packages {
		if g.Match(e.Package.Name) {
			matches = append(matches, e)
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Package.Name < matches[j].Package.Name })
	return matches, nil
}

// All returns every cached entry sorted by package name.
func (c *Cache) All() []Entry {
	out := make([]Entry, 0, len(c.Packages))
	for _, e := range c.Packages {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Package.Name < out[j].Package.Name })
	return out
}
