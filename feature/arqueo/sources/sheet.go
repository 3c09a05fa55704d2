package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"atm-reconciler/core/reconcile"
	"atm-reconciler/core/utils"
)

// Header variants the branch fallback sheets have used across periods. The
// configured column name is tried first; these cover renamed historic tabs.
var (
	identifierVariants = []string{"codigo", "cod. cajero", "cajero", "codigo_cajero"}
	valueVariants      = []string{"nuevo valor", "valor sobrante", "valor faltante", "valor"}
)

// FallbackSheet looks up movements in a branch-maintained fallback workbook,
// current-period or historic. These sheets are keyed by cashier code only;
// when a date column is present and parseable it narrows the match, but rows
// without a usable date still count, since historic tabs rarely keep one.
type FallbackSheet struct {
	path   string
	sheet  string
	ttl    time.Duration
	logger *zap.Logger
}

// NewFallbackSheet creates a fallback sheet source. The sheet is cached for
// ttl between reads; zero disables caching.
func NewFallbackSheet(path, sheet string, ttl time.Duration, logger *zap.Logger) *FallbackSheet {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackSheet{path: path, sheet: sheet, ttl: ttl, logger: logger}
}

// Query returns the sheet rows matching the cashier code. A missing or
// unreadable file is a soft failure.
func (s *FallbackSheet) Query(ctx context.Context, spec reconcile.SourceSpec, q reconcile.MovementQuery) ([]reconcile.Movement, error) {
	table, err := loadTable(s.path, s.sheet, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: fallback sheet %s: %v", reconcile.ErrSourceUnavailable, s.path, err)
	}

	idCol := table.column(spec.Fields.Identifier, identifierVariants)
	if idCol < 0 {
		return nil, fmt.Errorf("%w: fallback sheet %s sheet %s has no recognizable identifier column",
			reconcile.ErrSourceUnavailable, s.path, s.sheet)
	}
	dateCol := table.column(spec.Fields.Date, nil)
	valCol := table.column(spec.Fields.Value, valueVariants)

	var movements []reconcile.Movement
	for _, row := range table.rows {
		if !strings.EqualFold(cell(row, idCol), q.CashierCode) {
			continue
		}
		key := q.DateKey
		if dateCol >= 0 {
			if parsed, err := utils.ParseDateKey(cell(row, dateCol)); err == nil {
				if parsed != q.DateKey {
					continue
				}
				key = parsed
			}
		}
		movements = append(movements, reconcile.Movement{
			CashierCode: q.CashierCode,
			DateKey:     key,
			Value:       utils.CleanAmount(cell(row, valCol)),
			Fields:      rawFields(table.headers, row),
		})
	}

	s.logger.Debug("Fallback sheet lookup",
		zap.String("sheet", s.sheet),
		zap.String("cashier", q.CashierCode),
		zap.Int("rows", len(movements)),
	)
	return movements, nil
}
