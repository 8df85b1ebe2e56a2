package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wenget/wenget/pkg/manifest"
)

func pkg(name, repo string) manifest.Package {
	return manifest.Package{
		Name: name, Repo: repo,
		Platforms: map[string][]manifest.PlatformBinary{
			"linux-x86_64": {{URL: "https://example.com/" + name, Filename: name}},
		},
	}
}

func script(name string) manifest.Script {
	return manifest.Script{
		Name: name,
		Platforms: map[manifest.ScriptFlavor]manifest.ScriptPlatform{
			manifest.FlavorBash: {URL: "https://example.com/" + name + ".sh"},
		},
	}
}

func TestRebuildMergesScriptsAndLocalOverrides(t *testing.T) {
	buckets := manifest.BucketList{Buckets: []manifest.Bucket{
		{Name: "official", URL: "https://bucket.example/official.json", Enabled: true, Priority: 100},
	}}
	local := manifest.SourceManifest{Scripts: []manifest.Script{script("installer-local")}}

	fetch := func(b manifest.Bucket) (manifest.SourceManifest, error) {
		return manifest.SourceManifest{Scripts: []manifest.Script{
			script("rustup"), {Name: "installer-local"},
		}}, nil
	}

	c := Rebuild(buckets, local, fetch, time.Now())

	entry, ok := c.FindScriptByName("rustup")
	require.True(t, ok)
	assert.Equal(t, manifest.SourceBucket, entry.Source.Type)

	overridden, ok := c.FindScriptByName("installer-local")
	require.True(t, ok)
	assert.Equal(t, manifest.SourceLocal, overridden.Source.Type, "local scripts must override a bucket script of the same name")
}

func TestRebuildLocalOverridesBucketAtSameRepo(t *testing.T) {
	buckets := manifest.BucketList{Buckets: []manifest.Bucket{
		{Name: "official", URL: "https://bucket.example/official.json", Enabled: true, Priority: 100},
	}}
	local := manifest.SourceManifest{Packages: []manifest.Package{pkg("jq-local", "https://github.com/jqlang/jq")}}

	fetch := func(b manifest.Bucket) (manifest.SourceManifest, error) {
		return manifest.SourceManifest{Packages: []manifest.Package{
			pkg("jq-bucket", "https://github.com/jqlang/jq"),
		}}, nil
	}

	c := Rebuild(buckets, local, fetch, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))

	entry, ok := c.FindByRepo("https://github.com/jqlang/jq")
	require.True(t, ok)
	assert.Equal(t, "jq-local", entry.Package.Name)
	assert.Equal(t, manifest.SourceLocal, entry.Source.Type)
}

func TestRebuildSkipsFailingBucketButKeepsOthers(t *testing.T) {
	buckets := manifest.BucketList{Buckets: []manifest.Bucket{
		{Name: "broken", URL: "https://bucket.example/broken.json", Enabled: true, Priority: 100},
		{Name: "good", URL: "https://bucket.example/good.json", Enabled: true, Priority: 100},
	}}

	fetch := func(b manifest.Bucket) (manifest.SourceManifest, error) {
		if b.Name == "broken" {
			return manifest.SourceManifest{}, assert.AnError
		}
		return manifest.SourceManifest{Packages: []manifest.Package{pkg("ok-tool", "https://github.com/x/ok")}}, nil
	}

	c := Rebuild(buckets, manifest.SourceManifest{}, fetch, time.Now())

	_, ok := c.FindByRepo("https://github.com/x/ok")
	assert.True(t, ok)
	assert.Equal(t, 0, c.Sources["bucket:broken"].PackageCount)
}

func TestRebuildDisabledBucketIsSkipped(t *testing.T) {
	buckets := manifest.BucketList{Buckets: []manifest.Bucket{
		{Name: "off", URL: "https://bucket.example/off.json", Enabled: false, Priority: 100},
	}}
	called := false
	fetch := func(b manifest.Bucket) (manifest.SourceManifest, error) {
		called = true
		return manifest.SourceManifest{}, nil
	}
	Rebuild(buckets, manifest.SourceManifest{}, fetch, time.Now())
	assert.False(t, called, "disabled bucket must never be fetched")
}

func TestSearchGlob(t *testing.T) {
	c := New()
	c.put(pkg("ripgrep", "https://github.com/BurntSushi/ripgrep"), manifest.Local())
	c.put(pkg("rip", "https://github.com/example/rip"), manifest.Local())
	c.put(pkg("jq", "https://github.com/jqlang/jq"), manifest.Local())

	matches, err := c.Search("rip*")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "rip", matches[0].Package.Name)
	assert.Equal(t, "ripgrep", matches[1].Package.Name)
}

func TestPutDeepCopiesPlatforms(t *testing.T) {
	c := New()
	original := pkg("jq", "https://github.com/jqlang/jq")
	c.put(original, manifest.FromBucket("official"))

	original.Platforms["linux-x86_64"][0].Filename = "mutated"

	entry, ok := c.FindByRepo("https://github.com/jqlang/jq")
	require.True(t, ok)
	assert.Equal(t, "jq", entry.Package.Platforms["linux-x86_64"][0].Filename,
		"cache entry must not alias the caller's Platforms map")
}

func TestIsValidRespectsTTL(t *testing.T) {
	c := New()
	c.LastUpdated = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.TTL = 24 * time.Hour

	assert.True(t, c.IsValid(c.LastUpdated.Add(1*time.Hour)))
	assert.False(t, c.IsValid(c.LastUpdated.Add(25*time.Hour)))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest-cache.json")

	c := New()
	c.put(pkg("jq", "https://github.com/jqlang/jq"), manifest.FromBucket("official"))
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	entry, ok := loaded.FindByRepo("https://github.com/jqlang/jq")
	require.True(t, ok)
	assert.Equal(t, "jq", entry.Package.Name)
	assert.Equal(t, manifest.SourceBucket, entry.Source.Type)
}

func TestLoadMissingReturnsEmptyCache(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Empty(t, c.Packages)
	assert.Empty(t, c.Scripts)
}

func TestSaveLoadRoundTripIncludesScripts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest-cache.json")

	c := New()
	c.putScript(script("rustup"), manifest.FromBucket("official"))
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	entry, ok := loaded.FindScriptByName("rustup")
	require.True(t, ok)
	assert.Equal(t, "rustup", entry.Script.Name)
	assert.Equal(t, manifest.SourceBucket, entry.Source.Type)
}
