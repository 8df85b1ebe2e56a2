// Package resolver maps what a user typed on the command line — a bare
// name, a glob, or a repo URL — onto catalog entries, falling back to
// the installed ledger for direct-URL reinstalls.
package resolver

import (
	"strings"

	"github.com/wenget/wenget/pkg/cache"
	"github.com/wenget/wenget/pkg/manifest"
)

// InputKind classifies what the caller typed.
type InputKind int

const (
	InputName InputKind = iota
	InputGlob
	InputURL
)

var globMeta = []string{"*", "?", "[", "]", "{", "}"}

// ClassifyInput decides whether s looks like a repo URL, a glob
// pattern, or a plain name.
func ClassifyInput(s string) InputKind {
	if strings.Contains(s, "://") || strings.HasPrefix(s, "github.com/") {
		return InputURL
	}
	for _, m := range globMeta {
		if strings.Contains(s, m) {
			return InputGlob
		}
	}
	return InputName
}

// Result is one resolved match: the package descriptor plus where it
// was found.
type Result struct {
	Package manifest.Package
	Source  manifest.Source
	// FromLedger is set when this result came from an exact-match
	// fallback to the installed ledger rather than the cache.
	FromLedger bool
}

// Resolve maps input to catalog entries. URLs are looked up by exact
// repo match in the cache first; on a cache miss, the installed ledger
// is consulted (also exact-match only — globbing is deliberately not
// extended to the ledger, per the asymmetry the source preserves).
// Names are matched by cache name lookup. Globs expand via the cache's
// glob search.
func Resolve(c *cache.Cache, ledger manifest.Ledger, input string) ([]Result, error) {
	switch ClassifyInput(input) {
	case InputURL:
		return resolveURL(c, ledger, input)
	case InputGlob:
		return resolveGlob(c, input)
	default:
		return resolveName(c, input)
	}
}

func resolveURL(c *cache.Cache, ledger manifest.Ledger, input string) ([]Result, error) {
	normalized := normalizeRepoURL(input)
	if entry, ok := c.FindByRepo(normalized); ok {
		return []Result{{Package: entry.Package, Source: entry.Source}}, nil
	}
	for _, rec := range ledger.Packages {
		if normalizeRepoURL(rec.RepoName) == normalized {
			return []Result{{
				Package: manifest.Package{Name: rec.RepoName, Repo: rec.RepoName},
				Source:  manifest.Direct(input),
				FromLedger: true,
			}}, nil
		}
	}
	return nil, nil
}

func resolveGlob(c *cache.Cache, pattern string) ([]Result, error) {
	matches, err := c.Search(pattern)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(matches))
	for i, m := range matches {
		out[i] = Result{Package: m.Package, Source: m.Source}
	}
	return out, nil
}

func resolveName(c *cache.Cache, name string) ([]Result, error) {
	if entry, ok := c.FindByName(name); ok {
		return []Result{{Package: entry.Package, Source: entry.Source}}, nil
	}
	return nil, nil
}

// normalizeRepoURL tolerates the same variations §4.6 asks the
// provider adapter to tolerate: trailing slash, ".git" suffix, missing
// scheme, and http-vs-https, so that a lookup matches regardless of
// which spelling the user typed versus what is stored in the catalog.
func normalizeRepoURL(s string) string {
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	s = strings.Replace(s, "http://", "https://", 1)
	return s
}
