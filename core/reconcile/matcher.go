package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Matcher walks the ordered source chain for one discrepancy record.
type Matcher struct {
	logger *zap.Logger
}

// NewMatcher creates a Matcher logging soft source failures to the given logger.
func NewMatcher(logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{logger: logger}
}

// BuildQuery derives the immutable lookup key from a record. The arqueo date
// is formatted as YYYYMMDD so the key compares identically across sources.
func BuildQuery(record DiscrepancyRecord) (MovementQuery, error) {
	if err := record.Validate(); err != nil {
		return MovementQuery{}, err
	}
	y, m, d := record.ArqueoDate.Date()
	return MovementQuery{
		CashierCode: record.CashierCode,
		DateKey:     y*10000 + int(m)*100 + d,
		Amount:      record.Amount(),
	}, nil
}

// Find queries each source in priority order and returns the first match.
// A source-level access failure is logged and treated as "not found for this
// source"; the walk continues. Found is false only after every source has
// been tried and none matched.
func (m *Matcher) Find(ctx context.Context, record DiscrepancyRecord, specs []SourceSpec) (MatchResult, error) {
	if len(specs) == 0 {
		return MatchResult{}, fmt.Errorf("%w: no lookup sources configured", ErrConfig)
	}

	query, err := BuildQuery(record)
	if err != nil {
		return MatchResult{}, err
	}

	for _, spec := range specs {
		movements, err := spec.Source.Query(ctx, spec, query)
		if err != nil {
			// Soft failure: this source is skipped, not the record.
			m.logger.Warn("Source lookup failed, continuing with next source",
				zap.String("source", spec.Name),
				zap.String("kind", string(spec.Kind)),
				zap.String("cashier", record.CashierCode),
				zap.Error(err),
			)
			continue
		}

		if len(movements) == 0 {
			continue
		}

		movement := pickMovement(movements, query)
		m.logger.Info("Movement found",
			zap.String("source", spec.Name),
			zap.String("cashier", record.CashierCode),
			zap.Int("date_key", query.DateKey),
			zap.String("value", movement.Value.String()),
		)

		return MatchResult{
			Found:       true,
			SourceName:  spec.Name,
			SourceKind:  spec.Kind,
			Movement:    &movement,
			Disposition: spec.Matched,
		}, nil
	}

	m.logger.Debug("No movement found in any source",
		zap.String("cashier", record.CashierCode),
		zap.Int("date_key", query.DateKey),
	)
	return MatchResult{Found: false}, nil
}

// pickMovement selects among multiple rows matching the same key: an exact
// absolute-value match wins, otherwise the first row.
func pickMovement(movements []Movement, query MovementQuery) Movement {
	if len(movements) > 1 {
		for _, mv := range movements {
			if mv.Value.Abs().Equal(query.Amount.Abs()) {
				return mv
			}
		}
	}
	return movements[0]
}
