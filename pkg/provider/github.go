// Package provider adapts a hosting API (GitHub today) into the
// package descriptor the rest of the core operates on.
package provider

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/google/go-github/v72/github"

	"github.com/wenget/wenget/pkg/manifest"
	"github.com/wenget/wenget/pkg/platform"
	"github.com/wenget/wenget/pkg/wenerr"
)

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// ParseRepoURL parses a repo URL tolerating a trailing slash, a ".git"
// suffix, a missing scheme, and "http://" in place of "https://".
func ParseRepoURL(input string) (Repo, error) {
	s := strings.TrimSpace(input)
	s = strings.TrimSuffix(s, "/")
	s = strings.TrimSuffix(s, ".git")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "github.com/")

	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repo{}, wenerr.Newf(wenerr.InvalidURL, "ParseRepoURL", "not a github repository URL: %q", input)
	}
	return Repo{Owner: parts[0], Name: parts[1]}, nil
}

// GitHub adapts the GitHub REST API into package descriptors.
type GitHub struct {
	client *github.Client
}

// NewGitHub constructs a provider, authenticating with GITHUB_TOKEN
// when set (GitHub rate-limits unauthenticated requests aggressively).
func NewGitHub() *GitHub {
	client := github.NewClient(nil)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		client = client.WithAuthToken(token)
	}
	return &GitHub{client: client}
}

// Resolve fetches repository metadata and its latest release, and
// converts the release assets into the platform map.
func (g *GitHub) Resolve(ctx context.Context, repoURL string) (manifest.Package, error) {
	pkg, _, err := g.ResolveRelease(ctx, repoURL)
	return pkg, err
}

// ResolveRelease is Resolve plus the release's tag, with the leading
// "v" left intact (callers needing the display version use
// VersionWithoutPrefix).
func (g *GitHub) ResolveRelease(ctx context.Context, repoURL string) (manifest.Package, string, error) {
	repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return manifest.Package{}, "", err
	}

	ghRepo, _, err := g.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return manifest.Package{}, "", wenerr.New(wenerr.InvalidURL, "Resolve:GetRepo", err)
	}

	release, err := g.latestRelease(ctx, repo)
	if err != nil {
		return manifest.Package{}, "", err
	}

	platforms := assetsToPlatformMap(release.Assets)
	if len(platforms) == 0 {
		return manifest.Package{}, "", wenerr.Newf(wenerr.NoRelease, "Resolve",
			"release %s for %s/%s has no recognizable platform assets", release.GetTagName(), repo.Owner, repo.Name)
	}

	pkg := manifest.Package{
		Name:        repo.Name,
		Description: ghRepo.GetDescription(),
		Repo:        canonicalRepoURL(repo),
		Homepage:    ghRepo.GetHomepage(),
		License:     licenseName(ghRepo),
		Platforms:   platforms,
	}
	return pkg, release.GetTagName(), nil
}

func (g *GitHub) latestRelease(ctx context.Context, repo Repo) (*github.RepositoryRelease, error) {
	release, resp, err := g.client.Repositories.GetLatestRelease(ctx, repo.Owner, repo.Name)
	if err == nil {
		return release, nil
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		return nil, wenerr.New(wenerr.NoRelease, "latestRelease", err)
	}

	releases, _, listErr := g.client.Repositories.ListReleases(ctx, repo.Owner, repo.Name, &github.ListOptions{PerPage: 1})
	if listErr != nil {
		return nil, wenerr.New(wenerr.NoRelease, "latestRelease:ListReleases", listErr)
	}
	if len(releases) == 0 {
		return nil, wenerr.Newf(wenerr.NoRelease, "latestRelease", "no releases found for %s/%s", repo.Owner, repo.Name)
	}
	return releases[0], nil
}

func licenseName(r *github.Repository) string {
	if r.License == nil {
		return ""
	}
	return r.License.GetName()
}

func canonicalRepoURL(r Repo) string {
	return "https://github.com/" + r.Owner + "/" + r.Name
}

// assetsToPlatformMap scores every asset against every common host and
// keeps the best-scoring candidate per platform identifier, via
// pkg/platform.
func assetsToPlatformMap(assets []*github.ReleaseAsset) map[string][]manifest.PlatformBinary {
	names := make([]string, len(assets))
	byName := make(map[string]*github.ReleaseAsset, len(assets))
	for i, a := range assets {
		names[i] = a.GetName()
		byName[a.GetName()] = a
	}

	identifiers := platform.ExtractIdentifiers(names)
	result := map[string][]manifest.PlatformBinary{}
	for id, candidate := range identifiers {
		asset := byName[candidate.Filename]
		if asset == nil {
			continue
		}
		result[id] = []manifest.PlatformBinary{{
			URL:      asset.GetBrowserDownloadURL(),
			Size:     int64(asset.GetSize()),
			Filename: asset.GetName(),
		}}
	}
	return result
}

// VersionWithoutPrefix strips a leading "v" from a release tag, as
// §4.6 requires ("stripping v prefix from the tag").
func VersionWithoutPrefix(tag string) string {
	return strings.TrimPrefix(tag, "v")
}
