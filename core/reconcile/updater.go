package reconcile

import (
	"fmt"

	"go.uber.org/zap"
)

// Resolution is the merged matcher/resolver outcome the Updater applies onto
// a record.
type Resolution struct {
	// Matched reports whether a source yielded the movement.
	Matched bool

	// Source names the matching source; empty when defaulted.
	Source string

	// Kind is the matching source's variant; empty when defaulted.
	Kind SourceKind

	// Disposition is the pair to apply: the source's pass-through pair when
	// matched, the canonical fallback pair otherwise.
	Disposition Disposition
}

// Updater is the only writer of record fields. It governs safe persistence:
// a single pre-mutation backup per run, staged in-memory writes, and one
// all-or-nothing flush at the end of the batch.
type Updater struct {
	store      Store
	logger     *zap.Logger
	backupPath string
	backedUp   bool
	staged     int
}

// NewUpdater creates an Updater over the given store.
func NewUpdater(store Store, logger *zap.Logger) *Updater {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Updater{store: store, logger: logger}
}

// Apply merges the resolution into the record and stages the mutated row.
// The backup is created lazily before the first staged mutation, so a run
// that mutates nothing leaves no backup behind. Backup or staging failures
// are ErrWriteFailure: the run must abort before any mutation is committed.
func (u *Updater) Apply(record *DiscrepancyRecord, res Resolution) error {
	if !u.backedUp {
		path, err := u.store.Backup()
		if err != nil {
			return fmt.Errorf("%w: creating pre-run backup: %v", ErrWriteFailure, err)
		}
		u.backedUp = true
		u.backupPath = path
		u.logger.Info("Pre-run backup created", zap.String("path", path))
	}

	record.Justification = res.Disposition.Justification
	record.Status = res.Disposition.Status

	if err := u.store.Stage(*record); err != nil {
		return fmt.Errorf("%w: staging row %d: %v", ErrWriteFailure, record.RowID, err)
	}
	u.staged++
	return nil
}

// Commit flushes all staged rows in one replace-file operation. A no-op when
// nothing was staged. On failure the real store is untouched and the backup
// remains valid.
func (u *Updater) Commit() error {
	if u.staged == 0 {
		return nil
	}
	if err := u.store.Flush(); err != nil {
		return fmt.Errorf("%w: flushing %d staged rows: %v", ErrWriteFailure, u.staged, err)
	}
	u.logger.Info("Store flushed", zap.Int("rows", u.staged))
	return nil
}

// BackupPath returns the path of the pre-run backup, empty when no record
// mutated.
func (u *Updater) BackupPath() string {
	return u.backupPath
}

// Staged returns the number of rows staged so far.
func (u *Updater) Staged() int {
	return u.staged
}
