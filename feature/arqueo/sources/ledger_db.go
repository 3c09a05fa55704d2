package sources

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"atm-reconciler/core/reconcile"
	"atm-reconciler/feature/arqueo/models"
)

// National ledger query parameters. Configurable per source entry; these are
// the values the movement account uses in production.
const (
	// DefaultAccount is the ATM cash movement account.
	DefaultAccount int64 = 110505075

	// DefaultExcludedOffice is the branch office whose internal postings are
	// never ATM movements.
	DefaultExcludedOffice = 976

	// DefaultVoucher is the voucher number ATM postings are booked under.
	DefaultVoucher = 770500
)

// LedgerDB looks up movements in the live national ledger database. The
// search window runs from the arqueo date back one month, most recent first,
// so a posting booked a few days before the count still matches.
type LedgerDB struct {
	db             *gorm.DB
	account        int64
	excludedOffice int
	voucher        int
	logger         *zap.Logger
}

// NewLedgerDB creates a ledger database source with the production query
// parameters.
func NewLedgerDB(db *gorm.DB, logger *zap.Logger) *LedgerDB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerDB{
		db:             db,
		account:        DefaultAccount,
		excludedOffice: DefaultExcludedOffice,
		voucher:        DefaultVoucher,
		logger:         logger,
	}
}

// Query returns the movements booked against the cashier within the lookback
// window ending on the arqueo date. Database access failures are soft.
func (s *LedgerDB) Query(ctx context.Context, spec reconcile.SourceSpec, q reconcile.MovementQuery) ([]reconcile.Movement, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: ledger database not connected", reconcile.ErrSourceUnavailable)
	}

	from := lookbackKey(q.DateKey)

	var rows []models.LedgerMovement
	err := s.db.WithContext(ctx).
		Where("nit = ?", q.CashierCode).
		Where("cuenta = ?", s.account).
		Where("codofi <> ?", s.excludedOffice).
		Where("nrocmp = ?", s.voucher).
		Where("fecha BETWEEN ? AND ?", from, q.DateKey).
		Order("fecha DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: ledger database query: %v", reconcile.ErrSourceUnavailable, err)
	}

	movements := make([]reconcile.Movement, 0, len(rows))
	for _, row := range rows {
		movements = append(movements, row.ToMovement())
	}

	s.logger.Debug("Ledger database lookup",
		zap.String("cashier", q.CashierCode),
		zap.Int("from", from),
		zap.Int("to", q.DateKey),
		zap.Int("rows", len(movements)),
	)
	return movements, nil
}

// lookbackKey returns the date key one month before the given key, clamped
// to the last day of the earlier month when the day does not exist there.
func lookbackKey(key int) int {
	t := time.Date(key/10000, time.Month(key/100%100), 1, 0, 0, 0, 0, time.UTC)
	prev := t.AddDate(0, -1, 0)
	day := key % 100
	if last := prev.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return prev.Year()*10000 + int(prev.Month())*100 + day
}
