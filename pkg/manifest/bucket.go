package manifest

import "encoding/json"

// Bucket is one configured remote manifest source.
type Bucket struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Enabled  bool   `json:"enabled"`
	Priority int    `json:"priority"`
}

// BucketList is the buckets.json document: an ordered list of buckets,
// processed in order during a cache rebuild.
type BucketList struct {
	Buckets []Bucket `json:"buckets"`
}

// rawBucket carries pointer fields so UnmarshalJSON can tell "absent"
// from "false"/"0" and apply the documented defaults (enabled=true,
// priority=100).
type rawBucket struct {
	Name     string `json:"name"`
	URL      string `json:"url"`
	Enabled  *bool  `json:"enabled,omitempty"`
	Priority *int   `json:"priority,omitempty"`
}

// UnmarshalJSON applies Bucket's documented field defaults.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var raw rawBucket
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Name = raw.Name
	b.URL = raw.URL
	b.Enabled = true
	if raw.Enabled != nil {
		b.Enabled = *raw.Enabled
	}
	b.Priority = 100
	if raw.Priority != nil {
		b.Priority = *raw.Priority
	}
	return nil
}

// EnabledBuckets returns the subset of the list whose Enabled flag is set, in
// list order (the order a cache rebuild processes them in).
func (bl BucketList) EnabledBuckets() []Bucket {
	var out []Bucket
	for _, b := range bl.Buckets {
		if b.Enabled {
			out = append(out, b)
		}
	}
	return out
}

// Find returns the bucket with the given name, if any.
func (bl BucketList) Find(name string) (Bucket, bool) {
	for _, b := range bl.Buckets {
		if b.Name == name {
			return b, true
		}
	}
	return Bucket{}, false
}

// EmptyBucketList constructs a BucketList with no buckets, used by the repair
// layer when buckets.json is missing or corrupt.
func EmptyBucketList() BucketList {
	return BucketList{Buckets: []Bucket{}}
}
