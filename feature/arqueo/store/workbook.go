package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"atm-reconciler/core/reconcile"
	"atm-reconciler/core/utils"
	"atm-reconciler/feature/arqueo/models"
)

// requiredColumns are the management workbook headers the store needs to
// read and rewrite records.
var requiredColumns = []string{
	models.ColCashierCode,
	models.ColArqueoDate,
	models.ColOverage,
	models.ColShortage,
	models.ColJustification,
	models.ColStatus,
}

// Workbook is the xlsx-backed store of discrepancy records. Reads the
// management sheet into memory, keeps mutations staged, and rewrites the
// file in a single temp-file-then-rename flush so a crash mid-write never
// leaves a half-written store behind.
type Workbook struct {
	path   string
	sheet  string
	logger *zap.Logger

	// cols maps header name to 0-based column index, resolved on Load.
	cols   map[string]int
	loaded bool

	// staged holds mutated records keyed by sheet row.
	staged map[int]reconcile.DiscrepancyRecord
}

// Open creates a store over the given workbook. No file access happens
// until Load.
func Open(path, sheet string, logger *zap.Logger) *Workbook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workbook{
		path:   path,
		sheet:  sheet,
		logger: logger,
		staged: make(map[int]reconcile.DiscrepancyRecord),
	}
}

// Path returns the backing workbook path.
func (w *Workbook) Path() string {
	return w.path
}

// Load reads every record row from the management sheet. RowID is the sheet
// row number, so flush can address the exact cells later. A workbook that
// cannot be opened or is missing a required column is a configuration
// failure: the run must not start.
func (w *Workbook) Load() ([]reconcile.DiscrepancyRecord, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening store %s: %v", reconcile.ErrConfig, w.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(w.sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %s: %v", reconcile.ErrConfig, w.sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s is empty", reconcile.ErrConfig, w.sheet)
	}

	w.cols = make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		w.cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := w.cols[name]; !ok {
			return nil, fmt.Errorf("%w: sheet %s is missing column %q", reconcile.ErrConfig, w.sheet, name)
		}
	}

	var records []reconcile.DiscrepancyRecord
	for i, row := range rows[1:] {
		record := w.parseRow(i+2, row)
		if record.CashierCode == "" && record.Overage.IsZero() && record.Shortage.IsZero() {
			continue // trailing blank rows
		}
		records = append(records, record)
	}

	w.loaded = true
	w.logger.Debug("Store loaded",
		zap.String("path", w.path),
		zap.String("sheet", w.sheet),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// parseRow builds a record from one sheet row. Unparseable dates stay zero
// so the engine classifies the record instead of the load aborting.
func (w *Workbook) parseRow(rowID int, row []string) reconcile.DiscrepancyRecord {
	record := reconcile.DiscrepancyRecord{
		RowID:         rowID,
		CashierCode:   w.cell(row, models.ColCashierCode),
		Overage:       utils.CleanAmount(w.cell(row, models.ColOverage)),
		Shortage:      utils.CleanAmount(w.cell(row, models.ColShortage)),
		Justification: w.cell(row, models.ColJustification),
		Status:        w.cell(row, models.ColStatus),
	}
	if record.Status == "" {
		record.Status = reconcile.StatusPending
	}
	if t, err := utils.ParseDate(w.cell(row, models.ColArqueoDate)); err == nil {
		record.ArqueoDate = t
	}
	return record
}

func (w *Workbook) cell(row []string, name string) string {
	idx, ok := w.cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Backup copies the exact pre-run content to a ".backup" sibling.
func (w *Workbook) Backup() (string, error) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return "", fmt.Errorf("reading store for backup: %w", err)
	}
	backupPath := w.path + ".backup"
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing backup: %w", err)
	}
	return backupPath, nil
}

// Stage keeps a mutated record in memory until Flush.
func (w *Workbook) Stage(record reconcile.DiscrepancyRecord) error {
	if !w.loaded {
		return fmt.Errorf("store %s was not loaded", w.path)
	}
	if record.RowID < 2 {
		return fmt.Errorf("record for cashier %s has no sheet row", record.CashierCode)
	}
	w.staged[record.RowID] = record
	return nil
}

// Flush writes every staged record into the workbook, saves it to a temp
// file in the same directory, and renames it over the original. On any
// failure the original file is untouched.
func (w *Workbook) Flush() error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("reopening store for flush: %w", err)
	}
	defer f.Close()

	for rowID, record := range w.staged {
		if err := w.setCell(f, w.cols[models.ColJustification], rowID, record.Justification); err != nil {
			return err
		}
		if err := w.setCell(f, w.cols[models.ColStatus], rowID, record.Status); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), filepath.Base(w.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp store: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp store: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing store: %w", err)
	}

	w.staged = make(map[int]reconcile.DiscrepancyRecord)
	return nil
}

func (w *Workbook) setCell(f *excelize.File, col, rowID int, value string) error {
	name, err := excelize.CoordinatesToCellName(col+1, rowID)
	if err != nil {
		return fmt.Errorf("addressing row %d: %w", rowID, err)
	}
	if err := f.SetCellValue(w.sheet, name, value); err != nil {
		return fmt.Errorf("writing cell %s: %w", name, err)
	}
	return nil
}
