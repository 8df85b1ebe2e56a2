package cache

import (
	"time"

	"github.com/apex/log"

	"github.com/wenget/wenget/pkg/manifest"
)

// BucketFetcher retrieves a bucket's manifest document. Modeled as a
// function type rather than an interface (matching the fetch
// capability's injection style elsewhere in the core) so tests can
// supply a literal closure instead of a mock struct.
type BucketFetcher func(b manifest.Bucket) (manifest.SourceManifest, error)

// Rebuild merges bucket-declared packages with local-source packages
// into a fresh cache. Buckets are processed in their configured list
// order (lowest priority first is not assumed; ordering is purely list
// order per §5), each contributing packages keyed by repo URL. Local
// packages are layered in last and always win at the same repo URL,
// regardless of bucket order.
//
// A bucket that fails to fetch is skipped with a warning; the rebuild
// continues with whatever buckets succeeded.
func Rebuild(buckets manifest.BucketList, local manifest.SourceManifest, fetch BucketFetcher, now time.Time) *Cache {
	c := New()
	c.LastUpdated = now

	for _, bucket := range buckets.EnabledBuckets() {
		sourceKey := "bucket:" + bucket.Name
		fetched, err := fetch(bucket)
		if err != nil {
			log.WithField("bucket", bucket.Name).WithError(err).Warn("failed to fetch bucket, skipping")
			continue
		}

		for _, pkg := range fetched.Packages {
			c.put(pkg, manifest.FromBucket(bucket.Name))
		}
		for _, script := range fetched.Scripts {
			c.putScript(script, manifest.FromBucket(bucket.Name))
		}

		fetchedAt := now
		c.Sources[sourceKey] = SourceInfo{
			Source:       manifest.FromBucket(bucket.Name),
			PackageCount: len(fetched.Packages),
			LastFetched:  &fetchedAt,
			URL:          bucket.URL,
		}
	}

	for _, pkg := range local.Packages {
		c.put(pkg, manifest.Local())
	}
	for _, script := range local.Scripts {
		c.putScript(script, manifest.Local())
	}
	c.Sources["local"] = SourceInfo{
		Source:       manifest.Local(),
		PackageCount: len(local.Packages),
	}

	return c
}
