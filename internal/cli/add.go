package cli

import (
	"fmt"
	"time"

	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/wenget/wenget/pkg/install"
	"github.com/wenget/wenget/pkg/layout"
	"github.com/wenget/wenget/pkg/manifest"
	"github.com/wenget/wenget/pkg/platform"
	"github.com/wenget/wenget/pkg/provider"
	"github.com/wenget/wenget/pkg/resolver"
)

var (
	addName    string
	addVariant string
	addYes     bool
)

// AddCommand installs a package by name, glob, or repo URL.
var AddCommand = &cobra.Command{
	Use:   "add <name|glob|url>",
	Short: "Install a package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		l, err := currentLayout()
		if err != nil {
			return err
		}
		if !l.IsInitialized() {
			if err := l.Init(); err != nil {
				return err
			}
		}

		ledger, _, err := loadLedger(l)
		if err != nil {
			return err
		}
		c, err := loadCache(l)
		if err != nil {
			return err
		}

		results, err := resolver.Resolve(c, ledger, input)
		if err != nil {
			return err
		}

		// Scripts are keyed by name only (§4.2); a cache miss against the
		// package catalog falls through to an exact script-name lookup
		// before resolvePackage tries a live GitHub resolution.
		if len(results) == 0 {
			if entry, ok := c.FindScriptByName(input); ok {
				return addScript(l, ledger, entry.Script, entry.Source)
			}
		}

		pkg, version, source, err := resolvePackage(results, input)
		if err != nil {
			return err
		}

		host := preferredHost(l)
		confirm := func(m platform.Match) bool {
			if addYes {
				return true
			}
			return promptConfirm(fmt.Sprintf("no exact match for %s-%s; use %s (%s)?", host.OS, host.Arch, m.Identifier, m.Fallback))
		}

		client := newFetchClient()
		result, err := install.Install(bgContext(), pkg, version, host, install.Options{
			Layout:       l,
			Download:     downloadVia(client),
			Confirm:      confirm,
			NameOverride: addName,
			Variant:      addVariant,
		})
		if err != nil {
			return err
		}

		record := manifest.InstalledRecord{
			RepoName:     pkg.Name,
			Variant:      addVariant,
			Version:      provider.VersionWithoutPrefix(version),
			Platform:     result.Identifier,
			InstalledAt:  time.Now(),
			InstallPath:  result.InstallPath,
			Files:        result.Files,
			Source:       source,
			Description:  pkg.Description,
			CommandNames: result.CommandNames,
			AssetName:    result.AssetName,
		}
		ledger.Upsert(record)
		if err := saveLedger(l, ledger); err != nil {
			return err
		}

		log.Infof("installed %s %s (%s) -> %v", pkg.Name, record.Version, record.Platform, record.CommandNames)
		return nil
	},
}

// addScript runs the script-install path (§4.3, "Script installation
// diverges after step 2") and records the resulting ledger entry.
// Source.Origin preserves where the script was found — the declaring
// bucket's name, or the script's own name for a local/direct entry.
func addScript(l layout.Layout, ledger manifest.Ledger, script manifest.Script, source manifest.Source) error {
	host := preferredHost(l)
	client := newFetchClient()
	result, err := install.InstallScript(bgContext(), script, host, install.Options{
		Layout:       l,
		Download:     downloadVia(client),
		NameOverride: addName,
		Variant:      addVariant,
	})
	if err != nil {
		return err
	}

	origin := script.Name
	if source.Type == manifest.SourceBucket {
		origin = source.Bucket
	}

	record := manifest.InstalledRecord{
		RepoName:     script.Name,
		Variant:      addVariant,
		InstalledAt:  time.Now(),
		InstallPath:  result.InstallPath,
		Files:        result.Files,
		Source:       manifest.FromScript(origin, manifest.ScriptFlavor(result.Identifier)),
		Description:  script.Description,
		CommandNames: result.CommandNames,
		AssetName:    result.AssetName,
		Platform:     result.Identifier,
	}
	ledger.Upsert(record)
	if err := saveLedger(l, ledger); err != nil {
		return err
	}

	log.Infof("installed %s (%s) -> %v", script.Name, record.Platform, record.CommandNames)
	return nil
}

func init() {
	AddCommand.Flags().StringVar(&addName, "name", "", "override the published command name")
	AddCommand.Flags().StringVar(&addVariant, "variant", "", "install as a named variant alongside another install of the same package")
	AddCommand.Flags().BoolVarP(&addYes, "yes", "y", false, "accept fallback-platform prompts without asking")
}

// resolvePackage turns a resolver result set (or, on a cache miss for a
// direct URL, a live GitHub lookup) into the package descriptor to
// install plus the version it resolved to.
func resolvePackage(results []resolver.Result, input string) (manifest.Package, string, manifest.Source, error) {
	if len(results) == 1 && !results[0].FromLedger && results[0].Package.Platforms != nil {
		r := results[0]
		return r.Package, "", r.Source, nil
	}
	if len(results) > 1 {
		return manifest.Package{}, "", manifest.Source{}, fmt.Errorf("%q matched %d packages; be more specific", input, len(results))
	}

	// Cache miss, a from-ledger-only hit, or a bare URL the user typed
	// directly: resolve it live against GitHub.
	repoURL := input
	if len(results) == 1 {
		repoURL = results[0].Package.Repo
		if repoURL == "" {
			repoURL = input
		}
	}
	pkg, version, err := githubProvider().ResolveRelease(bgContext(), repoURL)
	if err != nil {
		return manifest.Package{}, "", manifest.Source{}, err
	}
	return pkg, version, manifest.Direct(pkg.Repo), nil
}
