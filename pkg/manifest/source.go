package manifest

import (
	"encoding/json"
	"fmt"
)

// SourceType discriminates the Source sum type.
type SourceType string

const (
	SourceLocal  SourceType = "local"
	SourceBucket SourceType = "bucket"
	SourceDirect SourceType = "direct"
	SourceScript SourceType = "script"
)

// Source is a tagged union describing where a cached or installed
// package came from. It is modeled as a real sum type with an explicit
// Type discriminator (per §9), never as a bare string switched on ad
// hoc in control flow.
type Source struct {
	Type SourceType

	// Bucket is set when Type == SourceBucket.
	Bucket string
	// URL is set when Type == SourceDirect.
	URL string
	// Origin and Flavor are set when Type == SourceScript.
	Origin string
	Flavor ScriptFlavor
}

// Local constructs a Source of type "local".
func Local() Source { return Source{Type: SourceLocal} }

// FromBucket constructs a Source of type "bucket" naming the bucket.
func FromBucket(name string) Source { return Source{Type: SourceBucket, Bucket: name} }

// Direct constructs a Source of type "direct" naming the URL the user
// installed from directly.
func Direct(url string) Source { return Source{Type: SourceDirect, URL: url} }

// FromScript constructs a Source of type "script".
func FromScript(origin string, flavor ScriptFlavor) Source {
	return Source{Type: SourceScript, Origin: origin, Flavor: flavor}
}

// Display renders a short human-readable label, e.g. "bucket:homebrew".
func (s Source) Display() string {
	switch s.Type {
	case SourceLocal:
		return "local"
	case SourceBucket:
		return "bucket:" + s.Bucket
	case SourceDirect:
		return "direct:" + s.URL
	case SourceScript:
		return fmt.Sprintf("script:%s:%s", s.Origin, s.Flavor)
	default:
		return "unknown"
	}
}

type sourceJSON struct {
	Type   SourceType   `json:"type"`
	Name   string       `json:"name,omitempty"`
	URL    string       `json:"url,omitempty"`
	Origin string       `json:"origin,omitempty"`
	Flavor ScriptFlavor `json:"flavor,omitempty"`
}

// MarshalJSON writes the explicit tag field plus whichever variant
// fields apply.
func (s Source) MarshalJSON() ([]byte, error) {
	raw := sourceJSON{Type: s.Type}
	switch s.Type {
	case SourceBucket:
		raw.Name = s.Bucket
	case SourceDirect:
		raw.URL = s.URL
	case SourceScript:
		raw.Origin = s.Origin
		raw.Flavor = s.Flavor
	}
	return json.Marshal(raw)
}

// UnmarshalJSON reads the tag field and populates only the matching
// variant fields.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw sourceJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Type {
	case SourceLocal, "":
		*s = Source{Type: SourceLocal}
	case SourceBucket:
		*s = Source{Type: SourceBucket, Bucket: raw.Name}
	case SourceDirect:
		*s = Source{Type: SourceDirect, URL: raw.URL}
	case SourceScript:
		*s = Source{Type: SourceScript, Origin: raw.Origin, Flavor: raw.Flavor}
	default:
		return fmt.Errorf("manifest: unknown source type %q", raw.Type)
	}
	return nil
}
