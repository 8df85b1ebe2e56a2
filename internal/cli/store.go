package cli

import (
	"encoding/json"
	"time"

	"github.com/apex/log"
	"github.com/pkg/errors"

	"github.com/wenget/wenget/pkg/cache"
	"github.com/wenget/wenget/pkg/layout"
	"github.com/wenget/wenget/pkg/manifest"
	"github.com/wenget/wenget/pkg/provider"
	"github.com/wenget/wenget/pkg/repair"
)

// loadLedger loads installed.json, repairing it in place per the
// documented severity policy, and reports whether a repair action ran.
func loadLedger(l layout.Layout) (manifest.Ledger, *repair.Action, error) {
	ledger, action, err := repair.LoadLedger(l.LedgerPath())
	if action != nil && action.BackupPath != "" {
		log.WithField("file", action.File).WithField("backup", action.BackupPath).
			Error("ledger was corrupt; backed up and reset to empty")
	}
	return ledger, action, err
}

func saveLedger(l layout.Layout, ledger manifest.Ledger) error {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal ledger")
	}
	return repair.WriteAtomic(l.LedgerPath(), data)
}

func loadBuckets(l layout.Layout) (manifest.BucketList, *repair.Action, error) {
	buckets, action, err := repair.LoadBuckets(l.BucketsPath())
	if action != nil && action.BackupPath != "" {
		log.WithField("file", action.File).WithField("backup", action.BackupPath).
			Warn("bucket list was corrupt; backed up and reset to empty")
	}
	return buckets, action, err
}

func saveBuckets(l layout.Layout, buckets manifest.BucketList) error {
	data, err := json.MarshalIndent(buckets, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal bucket list")
	}
	return repair.WriteAtomic(l.BucketsPath(), data)
}

// loadCache loads manifest-cache.json, rebuilding it from buckets and
// the local source (if any) when missing, stale, or corrupt.
func loadCache(l layout.Layout) (*cache.Cache, error) {
	c, err := cache.Load(l.CachePath())
	if err == nil && c.IsValid(time.Now()) {
		return c, nil
	}
	return refreshCache(l)
}

func refreshCache(l layout.Layout) (*cache.Cache, error) {
	buckets, _, err := loadBuckets(l)
	if err != nil {
		return nil, err
	}

	fetcher := bucketFetcher()
	rebuilt := cache.Rebuild(buckets, manifest.SourceManifest{}, fetcher, time.Now())
	if err := rebuilt.Save(l.CachePath()); err != nil {
		return nil, err
	}
	return rebuilt, nil
}

// bucketFetcher retrieves a bucket's manifest document over HTTP. Bucket
// URLs name a JSON document in the same shape as manifest.SourceManifest.
func bucketFetcher() cache.BucketFetcher {
	client := newFetchClient()
	return func(b manifest.Bucket) (manifest.SourceManifest, error) {
		var sm manifest.SourceManifest
		if err := client.FetchJSON(bgContext(), b.URL, &sm); err != nil {
			return manifest.SourceManifest{}, err
		}
		return sm, nil
	}
}

// githubProvider is a package-level indirection so tests can swap in a
// fake resolver without touching the network.
var githubProvider = func() *provider.GitHub { return provider.NewGitHub() }
