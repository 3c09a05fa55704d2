package reconcile

import "errors"

// Error taxonomy of the engine. Callers classify with errors.Is.
var (
	// ErrSourceUnavailable marks a connection or read failure on one source.
	// The Matcher logs it and continues to the next source.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrInvalidRecord marks a record violating the overage/shortage
	// mutual-exclusion invariant or carrying an unusable date/identifier.
	// Recorded as a per-record failure; the batch continues.
	ErrInvalidRecord = errors.New("invalid discrepancy record")

	// ErrConfig marks a missing source list or mandatory field mapping.
	// Fatal before any record is processed.
	ErrConfig = errors.New("invalid reconciliation config")

	// ErrWriteFailure marks a failed backup or final flush. Fatal: no record
	// mutation is considered committed.
	ErrWriteFailure = errors.New("store write failure")
)
