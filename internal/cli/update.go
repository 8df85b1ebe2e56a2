package cli

import (
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/apex/log"
	"github.com/spf13/cobra"

	"github.com/wenget/wenget/pkg/install"
	"github.com/wenget/wenget/pkg/manifest"
	"github.com/wenget/wenget/pkg/provider"
)

// isNewer reports whether candidate is a newer release than current.
// Either side failing to parse as semver falls back to a plain string
// inequality, since not every project tags proper semver (e.g. "20231227").
func isNewer(current, candidate string) bool {
	if current == "" {
		return true
	}
	curV, curErr := semver.NewVersion(current)
	candV, candErr := semver.NewVersion(candidate)
	if curErr != nil || candErr != nil {
		return current != candidate
	}
	return candV.GreaterThan(curV)
}

// UpdateCommand reinstalls every ledger entry (or, given an argument,
// just that one) against its source's current latest release.
var UpdateCommand = &cobra.Command{
	Use:   "update [name]",
	Short: "Update installed packages to their latest release",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := currentLayout()
		if err != nil {
			return err
		}
		ledger, _, err := loadLedger(l)
		if err != nil {
			return err
		}

		var keys []string
		if len(args) == 1 {
			keys = []string{args[0]}
		} else {
			for k := range ledger.Packages {
				keys = append(keys, k)
			}
		}

		host := preferredHost(l)
		client := newFetchClient()
		for _, key := range keys {
			rec, ok := ledger.Find(key)
			if !ok {
				log.Warnf("%s is not installed", key)
				continue
			}
			if rec.Source.Type == manifest.SourceScript {
				log.Warnf("%s is a script install; updates aren't supported yet, skipping", key)
				continue
			}

			repoURL := rec.RepoName
			if rec.Source.Type == manifest.SourceDirect && rec.Source.URL != "" {
				repoURL = rec.Source.URL
			} else if c, cacheErr := loadCache(l); cacheErr == nil {
				if entry, found := c.FindByName(rec.RepoName); found {
					repoURL = entry.Package.Repo
				}
			}
			pkg, version, err := githubProvider().ResolveRelease(bgContext(), repoURL)
			if err != nil {
				log.WithError(err).Warnf("failed to resolve latest release for %s", key)
				continue
			}
			newVersion := provider.VersionWithoutPrefix(version)
			if !isNewer(rec.Version, newVersion) {
				log.Infof("%s is already at %s", key, rec.Version)
				continue
			}

			nameOverride := ""
			if len(rec.CommandNames) == 1 {
				nameOverride = rec.CommandNames[0]
			}
			result, err := install.Install(bgContext(), pkg, version, host, install.Options{
				Layout:       l,
				Download:     downloadVia(client),
				NameOverride: nameOverride,
				Variant:      rec.Variant,
			})
			if err != nil {
				log.WithError(err).Warnf("failed to update %s", key)
				continue
			}

			rec.Version = newVersion
			rec.Platform = result.Identifier
			rec.InstalledAt = time.Now()
			rec.InstallPath = result.InstallPath
			rec.Files = result.Files
			rec.CommandNames = result.CommandNames
			rec.AssetName = result.AssetName
			ledger.Upsert(rec)
			log.Infof("updated %s to %s", key, newVersion)
		}

		return saveLedger(l, ledger)
	},
}
