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

// LedgerFile looks up movements in a ledger extract workbook. The extract
// carries the same fields as the database source but is refreshed as a flat
// file, so a row matches only when both the cashier code and the date key
// are equal.
type LedgerFile struct {
	path   string
	sheet  string
	ttl    time.Duration
	logger *zap.Logger
}

// NewLedgerFile creates a ledger extract source. The sheet is cached for ttl
// between reads; zero disables caching.
func NewLedgerFile(path, sheet string, ttl time.Duration, logger *zap.Logger) *LedgerFile {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerFile{path: path, sheet: sheet, ttl: ttl, logger: logger}
}

// Query returns the extract rows matching the cashier code and date key.
// A missing or unreadable file is a soft failure.
func (s *LedgerFile) Query(ctx context.Context, spec reconcile.SourceSpec, q reconcile.MovementQuery) ([]reconcile.Movement, error) {
	table, err := loadTable(s.path, s.sheet, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("%w: ledger file %s: %v", reconcile.ErrSourceUnavailable, s.path, err)
	}

	idCol := table.column(spec.Fields.Identifier, identifierVariants)
	dateCol := table.column(spec.Fields.Date, nil)
	if idCol < 0 || dateCol < 0 {
		return nil, fmt.Errorf("%w: ledger file %s sheet %s is missing the identifier or date column",
			reconcile.ErrSourceUnavailable, s.path, s.sheet)
	}
	valCol := table.column(spec.Fields.Value, valueVariants)

	var movements []reconcile.Movement
	for _, row := range table.rows {
		if !strings.EqualFold(cell(row, idCol), q.CashierCode) {
			continue
		}
		key, err := utils.ParseDateKey(cell(row, dateCol))
		if err != nil || key != q.DateKey {
			continue
		}
		movements = append(movements, reconcile.Movement{
			CashierCode: q.CashierCode,
			DateKey:     key,
			Value:       utils.CleanAmount(cell(row, valCol)),
			Fields:      rawFields(table.headers, row),
		})
	}

	s.logger.Debug("Ledger file lookup",
		zap.String("cashier", q.CashierCode),
		zap.Int("date_key", q.DateKey),
		zap.Int("rows", len(movements)),
	)
	return movements, nil
}

// rawFields maps header names to the row's cell values for reporting.
func rawFields(headers []string, row []string) map[string]string {
	fields := make(map[string]string, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		fields[h] = cell(row, i)
	}
	return fields
}
