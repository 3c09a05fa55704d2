package cmd

import (
	"context"
	"fmt"

	"atm-reconciler/core/config"
	"atm-reconciler/core/database"
	"atm-reconciler/core/logger"
	"atm-reconciler/core/reconcile"
	"atm-reconciler/core/storage"
	"atm-reconciler/feature/arqueo"
	"atm-reconciler/feature/arqueo/archive"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// Flags for the reconcile command
	processDate string
	maxOutcomes int
)

// reconcileCmd runs one full reconciliation batch from the command line.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile pending arqueo discrepancies against the movement sources",
	Long: `Reconcile walks every pending discrepancy in the management workbook
through the configured source chain, assigns justifications and statuses,
and commits the results in a single atomic write.

Examples:
  # Reconcile using today's process date
  atm-reconciler reconcile

  # Pin the process date (the arqueo date becomes the previous business day)
  atm-reconciler reconcile --date 2025-12-01`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVar(&processDate, "date", "", "Process date override (YYYY-MM-DD)")
	reconcileCmd.Flags().IntVar(&maxOutcomes, "show", 10, "Maximum per-record outcomes to print")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if processDate != "" {
		cfg.Reconcile.ProcessDate = processDate
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	l.Info("Starting arqueo reconciliation")

	// Connect to the ledger database. The connection is optional: when it
	// fails, the ledger-db source reports unavailable and the file-backed
	// sources still run.
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		l.Warn("Ledger database connection failed, file sources only", zap.Error(err))
	} else {
		db = conn
	}

	service := arqueo.NewService(cfg, db, buildArchiver(cfg, l), l)

	result, err := service.Run(ctx)
	if err != nil {
		return fmt.Errorf("reconciliation run failed: %w", err)
	}

	printBatchReport(l, result)
	return nil
}

// buildArchiver creates the post-run archiver, or nil when archiving is
// disabled or storage is unreachable.
func buildArchiver(cfg *config.Config, l *zap.Logger) *archive.Archiver {
	if !cfg.Reconcile.ArchiveEnabled {
		return nil
	}
	client, err := storage.NewClient(cfg.Storage)
	if err != nil {
		l.Warn("Storage client creation failed, archiving disabled", zap.Error(err))
		return nil
	}
	return archive.New(client, cfg.Storage.Bucket, cfg.Reconcile.ArchiveRetentionDays, l)
}

// printBatchReport prints a formatted run report using logger.
func printBatchReport(l *zap.Logger, result *reconcile.BatchResult) {
	l.Info("Reconciliation report",
		zap.String("run_id", result.RunID),
		zap.Int("total", result.Total),
		zap.Int("matched", result.Matched),
		zap.Int("defaulted", result.Defaulted),
		zap.Int("failed", result.Failed),
		zap.String("backup", result.BackupPath),
	)

	show := maxOutcomes
	if show > len(result.Outcomes) {
		show = len(result.Outcomes)
	}
	for i := 0; i < show; i++ {
		o := result.Outcomes[i]
		if o.Status == reconcile.OutcomeFailed {
			l.Warn("Record outcome",
				zap.Int("row", o.RowID),
				zap.String("cashier", o.CashierCode),
				zap.String("status", string(o.Status)),
				zap.String("error", o.Error),
			)
			continue
		}
		l.Info("Record outcome",
			zap.Int("row", o.RowID),
			zap.String("cashier", o.CashierCode),
			zap.String("status", string(o.Status)),
			zap.String("source", o.Source),
			zap.String("justification", o.Justification),
			zap.String("new_status", o.NewStatus),
		)
	}
	if len(result.Outcomes) > show {
		l.Info("Additional outcomes not shown", zap.Int("count", len(result.Outcomes)-show))
	}
}
