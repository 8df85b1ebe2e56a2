// Package wenerr defines the error taxonomy shared across the core: a
// fixed set of kinds the CLI and tests can switch on, each wrapping an
// underlying cause via github.com/pkg/errors.
package wenerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of a core error, per the policy table.
type Kind string

const (
	InvalidURL            Kind = "invalid_url"
	NoRelease              Kind = "no_release"
	NoCompatibleAsset      Kind = "no_compatible_asset"
	DownloadFailed         Kind = "download_failed"
	ExtractionFailed       Kind = "extraction_failed"
	ExecutableNotFound     Kind = "executable_not_found"
	LauncherPublishFailed  Kind = "launcher_publish_failed"
	LedgerWriteFailed      Kind = "ledger_write_failed"
	CorruptConfig          Kind = "corrupt_config"
	BucketFetchFailed      Kind = "bucket_fetch_failed"
)

// Error is a typed, wrapped error carrying a Kind and the operation that
// produced it.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given kind and operation name. Returns nil if
// err is nil, so it composes with the usual `if err != nil { return
// wenerr.New(...) }` guard.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: errors.WithStack(err)}
}

// Newf builds a new error of the given kind with a formatted message and
// no underlying cause.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Is reports whether err (or any error it wraps) carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if as, ok := err.(*Error); ok {
			e = as
			break
		}
		err = errors.Unwrap(err)
	}
	return e != nil && e.Kind == kind
}

// KindOf returns the Kind of err if it is (or wraps) a *Error, else "".
func KindOf(err error) Kind {
	var e *Error
	for err != nil {
		if as, ok := err.(*Error); ok {
			e = as
			break
		}
		err = errors.Unwrap(err)
	}
	if e == nil {
		return ""
	}
	return e.Kind
}
