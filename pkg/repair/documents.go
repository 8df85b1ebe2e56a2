package repair

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/wenget/wenget/pkg/manifest"
)

// Document names the three durable JSON files repair understands.
type Document int

const (
	DocumentLedger Document = iota
	DocumentBuckets
	DocumentCache
)

func (d Document) String() string {
	switch d {
	case DocumentLedger:
		return "installed.json"
	case DocumentBuckets:
		return "buckets.json"
	case DocumentCache:
		return "manifest-cache.json"
	default:
		return "unknown"
	}
}

func (d Document) severity() Severity {
	switch d {
	case DocumentLedger:
		return SeverityCritical
	case DocumentBuckets:
		return SeverityWarning
	case DocumentCache:
		return SeverityInfo
	default:
		return SeverityInfo
	}
}

// LoadLedger loads installed.json, repairing it in place if corrupt.
// On missing, an empty ledger is written to disk and returned, so that
// a second repair run finds installed.json already present and parsing
// cleanly (§8's repair-convergence property). On corrupt, the original
// is backed up and a fresh empty ledger is persisted and returned, per
// §4.5's "critical" row.
func LoadLedger(path string) (manifest.Ledger, *Action, error) {
	var l manifest.Ledger
	status, parseErr := Check(path, &l)
	switch status {
	case StatusMissing:
		empty := manifest.EmptyLedger()
		data, err := json.MarshalIndent(empty, "", "  ")
		if err != nil {
			return empty, nil, errors.Wrap(err, "repair: marshal empty ledger")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return empty, nil, errors.Wrap(err, "repair: create directory for ledger")
		}
		if err := WriteAtomic(path, data); err != nil {
			return empty, nil, errors.Wrap(err, "repair: create missing ledger")
		}
		return empty, &Action{File: path, Severity: SeverityCritical, Status: status}, nil
	case StatusOK:
		return l, nil, nil
	default:
		backupPath, err := Backup(path)
		if err != nil {
			return manifest.EmptyLedger(), nil, errors.Wrap(err, "repair: back up ledger")
		}
		empty := manifest.EmptyLedger()
		data, err := json.MarshalIndent(empty, "", "  ")
		if err != nil {
			return empty, nil, errors.Wrap(err, "repair: marshal empty ledger")
		}
		if err := WriteAtomic(path, data); err != nil {
			return empty, nil, errors.Wrap(err, "repair: reset ledger")
		}
		return empty, &Action{
			File: path, Severity: SeverityCritical, Status: status,
			BackupPath: backupPath, Err: parseErr,
		}, nil
	}
}

// LoadBuckets loads buckets.json, resetting to empty on corrupt (with a
// backup) per §4.5's "warning" row, and writing an empty list to disk
// on missing so a second repair run sees it already there and parsing
// cleanly (§8's repair-convergence property).
func LoadBuckets(path string) (manifest.BucketList, *Action, error) {
	var bl manifest.BucketList
	status, parseErr := Check(path, &bl)
	switch status {
	case StatusMissing:
		empty := manifest.EmptyBucketList()
		data, err := json.MarshalIndent(empty, "", "  ")
		if err != nil {
			return empty, nil, errors.Wrap(err, "repair: marshal empty bucket list")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return empty, nil, errors.Wrap(err, "repair: create directory for bucket list")
		}
		if err := WriteAtomic(path, data); err != nil {
			return empty, nil, errors.Wrap(err, "repair: create missing bucket list")
		}
		return empty, &Action{File: path, Severity: SeverityWarning, Status: status}, nil
	case StatusOK:
		return bl, nil, nil
	default:
		backupPath, err := Backup(path)
		if err != nil {
			return manifest.EmptyBucketList(), nil, errors.Wrap(err, "repair: back up bucket list")
		}
		empty := manifest.EmptyBucketList()
		data, err := json.MarshalIndent(empty, "", "  ")
		if err != nil {
			return empty, nil, errors.Wrap(err, "repair: marshal empty bucket list")
		}
		if err := WriteAtomic(path, data); err != nil {
			return empty, nil, errors.Wrap(err, "repair: reset bucket list")
		}
		return empty, &Action{
			File: path, Severity: SeverityWarning, Status: status,
			BackupPath: backupPath, Err: parseErr,
		}, nil
	}
}

// DiscardCache deletes a corrupt manifest-cache.json outright; a cache
// that parses cleanly (stale or not) or is missing is left alone. The
// next cache read in internal/cli rebuilds it from buckets, so no backup
// is taken (§4.5: "delete; rebuild on next read").
func DiscardCache(path string) (*Action, error) {
	var raw json.RawMessage
	status, parseErr := Check(path, &raw)
	switch status {
	case StatusMissing, StatusOK:
		return nil, nil
	default:
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrap(err, "repair: delete corrupt cache")
		}
		return &Action{
			File: path, Severity: SeverityInfo, Status: status, Rebuilt: true, Err: parseErr,
		}, nil
	}
}

// Paths bundles the filesystem locations of the three durable files, so
// Repair doesn't need to know about pkg/layout directly.
type Paths struct {
	Ledger  string
	Buckets string
	Cache   string
}

// Repair checks all three files and performs the documented action for
// each. With force, the cache is discarded even when it parses cleanly,
// forcing a rebuild on next read; the ledger and bucket list are never
// force-reset since that would be a real data-loss action a flag alone
// shouldn't trigger. Repair is idempotent: running it again on output
// it already produced reports everything OK (or, with force, rebuilds
// the cache again, which is itself a no-op change in content).
func Repair(paths Paths, force bool) ([]Action, error) {
	var actions []Action

	_, ledgerAction, err := LoadLedger(paths.Ledger)
	if err != nil {
		return actions, err
	}
	if ledgerAction != nil {
		actions = append(actions, *ledgerAction)
	}

	_, bucketAction, err := LoadBuckets(paths.Buckets)
	if err != nil {
		return actions, err
	}
	if bucketAction != nil {
		actions = append(actions, *bucketAction)
	}

	if force {
		if err := os.Remove(paths.Cache); err != nil && !os.IsNotExist(err) {
			return actions, errors.Wrap(err, "repair: force-discard cache")
		}
		actions = append(actions, Action{File: paths.Cache, Severity: SeverityInfo, Status: StatusOK, Rebuilt: true})
	} else {
		cacheAction, err := DiscardCache(paths.Cache)
		if err != nil {
			return actions, err
		}
		if cacheAction != nil {
			actions = append(actions, *cacheAction)
		}
	}

	return actions, nil
}
