package reconcile

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Driver runs a full batch: Matcher → Resolver (when needed) → Updater per
// record, in input order.
type Driver struct {
	matcher *Matcher
	logger  *zap.Logger
}

// NewDriver creates a Driver.
func NewDriver(logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{matcher: NewMatcher(logger), logger: logger}
}

// Run reconciles all records against the source chain, persisting through
// the store. Per-record errors are captured as failed outcomes and the batch
// continues; only config validation and persistence (backup/flush) errors
// abort the run, since those endanger every record's output.
//
// Outcomes preserve the input order.
func (d *Driver) Run(ctx context.Context, records []DiscrepancyRecord, specs []SourceSpec, store Store) (*BatchResult, error) {
	if err := ValidateSources(specs); err != nil {
		return nil, err
	}

	updater := NewUpdater(store, d.logger)
	result := &BatchResult{
		RunID:    uuid.NewString(),
		Outcomes: make([]Outcome, 0, len(records)),
		Total:    len(records),
	}

	d.logger.Info("Reconciliation run started",
		zap.String("run_id", result.RunID),
		zap.Int("records", len(records)),
		zap.Int("sources", len(specs)),
	)

	for i := range records {
		record := records[i]

		outcome, err := d.processRecord(ctx, &record, specs, updater)
		if err != nil {
			// Persistence failures poison the whole batch.
			if errors.Is(err, ErrWriteFailure) {
				return nil, err
			}
			result.Failed++
			result.Outcomes = append(result.Outcomes, Outcome{
				RowID:       record.RowID,
				CashierCode: record.CashierCode,
				Status:      OutcomeFailed,
				Error:       err.Error(),
			})
			d.logger.Warn("Record failed, continuing batch",
				zap.String("cashier", record.CashierCode),
				zap.Int("row_id", record.RowID),
				zap.Error(err),
			)
			continue
		}

		if outcome.Status == OutcomeMatched {
			result.Matched++
		} else {
			result.Defaulted++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if err := updater.Commit(); err != nil {
		return nil, err
	}
	result.BackupPath = updater.BackupPath()

	d.logger.Info("Reconciliation run finished",
		zap.String("run_id", result.RunID),
		zap.Int("total", result.Total),
		zap.Int("matched", result.Matched),
		zap.Int("defaulted", result.Defaulted),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// processRecord resolves and applies one record. Errors other than
// ErrWriteFailure are per-record and recoverable at batch level.
func (d *Driver) processRecord(ctx context.Context, record *DiscrepancyRecord, specs []SourceSpec, updater *Updater) (Outcome, error) {
	match, err := d.matcher.Find(ctx, *record, specs)
	if err != nil {
		return Outcome{}, err
	}

	var res Resolution
	if match.Found {
		res = Resolution{
			Matched:     true,
			Source:      match.SourceName,
			Kind:        match.SourceKind,
			Disposition: match.Disposition,
		}
	} else {
		disposition, err := Resolve(*record)
		if err != nil {
			return Outcome{}, err
		}
		res = Resolution{Disposition: disposition}
	}

	if err := updater.Apply(record, res); err != nil {
		return Outcome{}, err
	}

	status := OutcomeDefaulted
	if res.Matched {
		status = OutcomeMatched
	}
	return Outcome{
		RowID:         record.RowID,
		CashierCode:   record.CashierCode,
		Status:        status,
		Source:        res.Source,
		Justification: record.Justification,
		NewStatus:     record.Status,
	}, nil
}
