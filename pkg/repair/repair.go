// Package repair inspects and heals the three durable JSON documents the
// core depends on (the installed ledger, the bucket list, and the
// manifest cache), each with its own severity: a corrupt ledger is
// critical data loss, a corrupt bucket list is a warning the user can
// just re-add sources for, and a corrupt cache is informational since
// it rebuilds itself from the buckets.
package repair

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Severity classifies how much a corrupt file matters.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// FileStatus is the result of checking one JSON document.
type FileStatus int

const (
	StatusOK FileStatus = iota
	StatusMissing
	StatusCorrupt
)

// ParseError carries the line and column a JSON parse failed at, so a
// corrupt-file report can point the user at the exact spot.
type ParseError struct {
	Path   string
	Line   int
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("JSON parse error in %s at line %d, column %d: %v", e.Path, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseJSON unmarshals content into v, converting a syntax error into a
// *ParseError with line/column computed from the byte offset.
func ParseJSON(path string, content []byte, v any) error {
	if err := json.Unmarshal(content, v); err != nil {
		line, col := 1, 1
		var syn *json.SyntaxError
		var unmarshalErr *json.UnmarshalTypeError
		offset := int64(-1)
		if errors.As(err, &syn) {
			offset = syn.Offset
		} else if errors.As(err, &unmarshalErr) {
			offset = unmarshalErr.Offset
		}
		if offset >= 0 {
			line, col = lineColumn(content, offset)
		}
		return &ParseError{Path: path, Line: line, Column: col, Err: err}
	}
	return nil
}

func lineColumn(content []byte, offset int64) (line, column int) {
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// Check reports the status of a JSON document at path, attempting to
// unmarshal into a fresh value of v's concrete type.
func Check(path string, v any) (FileStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return StatusMissing, nil
		}
		return StatusCorrupt, err
	}
	if err := ParseJSON(path, data, v); err != nil {
		return StatusCorrupt, err
	}
	return StatusOK, nil
}

// Action describes what repair did to one file.
type Action struct {
	File       string
	Severity   Severity
	Status     FileStatus
	BackupPath string
	Rebuilt    bool
	Err        error
}

// Backup copies path to "<path>.backup.<timestamp>" and prunes older
// backups beyond the 3 most recent, returning the new backup's path.
func Backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "repair: read %s for backup", path)
	}
	timestamp := backupClock().Format("20060102_150405")
	backupPath := fmt.Sprintf("%s.backup.%s", path, timestamp)
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "repair: write backup %s", backupPath)
	}
	if err := pruneBackups(path, 3); err != nil {
		return backupPath, err
	}
	return backupPath, nil
}

// backupClock is a seam tests can override; production uses time.Now.
var backupClock = time.Now

func pruneBackups(originalPath string, keep int) error {
	dir := filepath.Dir(originalPath)
	prefix := filepath.Base(originalPath) + ".backup."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, "repair: list %s", dir)
	}

	type backup struct {
		name    string
		modTime time.Time
	}
	var backups []backup
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{e.Name(), info.ModTime()})
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].modTime.Before(backups[j].modTime) })

	if len(backups) <= keep {
		return nil
	}
	for _, b := range backups[:len(backups)-keep] {
		_ = os.Remove(filepath.Join(dir, b.name))
	}
	return nil
}

// WriteAtomic writes data to path via a temp file in the same directory
// followed by a rename, so readers never observe a partial write.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return errors.Wrapf(err, "repair: create temp file in %s", dir)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.Wrapf(err, "repair: write temp file %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "repair: close temp file %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "repair: rename %s to %s", tmpPath, path)
	}
	return nil
}
