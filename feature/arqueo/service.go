package arqueo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"atm-reconciler/core/config"
	"atm-reconciler/core/logger"
	"atm-reconciler/core/reconcile"
	"atm-reconciler/core/utils"
	"atm-reconciler/feature/arqueo/archive"
	"atm-reconciler/feature/arqueo/sources"
	"atm-reconciler/feature/arqueo/store"
)

// Service orchestrates a reconciliation run: load the management workbook,
// resolve every pending discrepancy through the source chain, flush the
// results, and archive the processed artifacts.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	archiver *archive.Archiver
	logger   *zap.Logger
}

// NewService creates the reconciliation service. db may be nil when the
// source catalog has no ledger-db entry; archiver may be nil when archiving
// is disabled.
func NewService(cfg *config.Config, db *gorm.DB, archiver *archive.Archiver, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{cfg: cfg, db: db, archiver: archiver, logger: log}
}

// Run executes one full reconciliation batch.
func (s *Service) Run(ctx context.Context) (*reconcile.BatchResult, error) {
	runDate, err := s.runDate()
	if err != nil {
		return nil, err
	}
	arqueoDate := utils.PreviousBusinessDay(runDate)

	catalog, err := sources.LoadCatalog(s.cfg.Reconcile.SourcesFile)
	if err != nil {
		return nil, err
	}
	specs, err := catalog.Build(s.db, s.logger)
	if err != nil {
		return nil, err
	}

	wb := store.Open(s.cfg.Reconcile.StorePath, s.cfg.Reconcile.StoreSheet, s.logger)
	records, err := wb.Load()
	if err != nil {
		return nil, err
	}
	pending := s.pending(records, arqueoDate)

	s.logger.Info("Reconciliation run starting",
		zap.String("store", s.cfg.Reconcile.StorePath),
		zap.String("arqueo_date", arqueoDate.Format("2006-01-02")),
		zap.Int("sources", len(specs)),
		zap.Int("pending", len(pending)),
	)

	driver := reconcile.NewDriver(s.logger)
	result, err := driver.Run(ctx, pending, specs, wb)
	if err != nil {
		return nil, err
	}

	runLog := logger.WithRunID(s.logger, result.RunID)

	// Archiving is best effort: the run already committed, so an upload
	// failure must not erase its outcome.
	if s.archiver != nil {
		if err := s.archiver.Store(ctx, runDate, result.RunID, wb.Path(), result.BackupPath); err != nil {
			runLog.Error("Archiving run artifacts failed", zap.Error(err))
		} else if _, err := s.archiver.Prune(ctx); err != nil {
			runLog.Error("Pruning expired archives failed", zap.Error(err))
		}
	}

	return result, nil
}

// runDate resolves the process date: the configured pin when set, today
// otherwise.
func (s *Service) runDate() (time.Time, error) {
	pin := s.cfg.Reconcile.ProcessDate
	if pin == "" {
		return time.Now(), nil
	}
	t, err := utils.ParseDate(pin)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: process date %q: %v", reconcile.ErrConfig, pin, err)
	}
	return t, nil
}

// pending selects the rows still awaiting a disposition. Rows without their
// own arqueo date take the run's default, the previous business day.
func (s *Service) pending(records []reconcile.DiscrepancyRecord, arqueoDate time.Time) []reconcile.DiscrepancyRecord {
	var pending []reconcile.DiscrepancyRecord
	for _, r := range records {
		if r.Status != reconcile.StatusPending {
			continue
		}
		if r.ArqueoDate.IsZero() {
			r.ArqueoDate = arqueoDate
		}
		pending = append(pending, r)
	}
	return pending
}
