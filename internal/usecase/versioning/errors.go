// Package versioning maintains the append-only version history of articles.
// Every write goes through a single repository operation that moves the
// "current" pointer atomically, so an article always has exactly one current
// version once its original has been recorded.
package versioning

import "errors"

// Sentinel errors for versioning operations.
var (
	// ErrPersistenceFailed wraps store failures during CreateVersion,
	// CreateRevision, EnsureOriginal and Restore. The history is unchanged
	// when it is returned.
	ErrPersistenceFailed = errors.New("version persistence failed")

	// ErrHistoryStarted indicates an article that already has versions but
	// no original, so no version 1 can be recorded for it.
	ErrHistoryStarted = errors.New("version history started without an original")

	// ErrInvalidArticleID indicates a non-positive article ID.
	ErrInvalidArticleID = errors.New("invalid article ID")
)
