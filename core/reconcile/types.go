package reconcile

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StatusPending is the disposition status of a record that has not been
// processed yet.
const StatusPending = "PENDING"

// SourceKind identifies which variant backs a lookup source.
type SourceKind string

const (
	// SourceLedgerDB is the live ledger database (account movements).
	SourceLedgerDB SourceKind = "ledger-db"
	// SourceLedgerFile is the ledger movement extract file.
	SourceLedgerFile SourceKind = "ledger-file"
	// SourceFallbackPrimary is the current-period fallback sheet region.
	SourceFallbackPrimary SourceKind = "fallback-sheet-primary"
	// SourceFallbackHistoric is the historic fallback sheet region.
	SourceFallbackHistoric SourceKind = "fallback-sheet-historic"
)

// DiscrepancyRecord is one arqueo row with a cash-count discrepancy.
// Exactly one of Overage/Shortage is positive for a valid record.
// Justification and Status are mutated exclusively by the Updater.
type DiscrepancyRecord struct {
	// RowID is the record's position in the backing store, used to rewrite
	// the affected row on flush.
	RowID int `json:"row_id"`

	// CashierCode is the cashier/ATM code (e.g. "CAJ001").
	CashierCode string `json:"cashier_code"`

	// ArqueoDate is the date of the cash count.
	ArqueoDate time.Time `json:"arqueo_date"`

	// Overage is the counted-over-expected amount, >= 0.
	Overage decimal.Decimal `json:"overage"`

	// Shortage is the counted-under-expected amount, >= 0.
	Shortage decimal.Decimal `json:"shortage"`

	// Justification is the assigned justification, initially empty.
	Justification string `json:"justification"`

	// Status is the disposition status, initially StatusPending.
	Status string `json:"status"`
}

// IsOverage reports whether the record's discrepancy is an overage.
func (r DiscrepancyRecord) IsOverage() bool {
	return r.Overage.IsPositive()
}

// Amount returns the discrepancy amount regardless of sign.
func (r DiscrepancyRecord) Amount() decimal.Decimal {
	if r.IsOverage() {
		return r.Overage
	}
	return r.Shortage
}

// Validate checks the record invariants: a cashier code, a usable arqueo
// date, and mutual exclusion of overage and shortage.
func (r DiscrepancyRecord) Validate() error {
	if r.CashierCode == "" {
		return fmt.Errorf("%w: missing cashier code (row %d)", ErrInvalidRecord, r.RowID)
	}
	if r.ArqueoDate.IsZero() {
		return fmt.Errorf("%w: cashier %s has no arqueo date", ErrInvalidRecord, r.CashierCode)
	}
	if r.Overage.IsNegative() || r.Shortage.IsNegative() {
		return fmt.Errorf("%w: cashier %s has a negative discrepancy amount", ErrInvalidRecord, r.CashierCode)
	}
	if r.Overage.IsPositive() && r.Shortage.IsPositive() {
		return fmt.Errorf("%w: cashier %s has both overage and shortage", ErrInvalidRecord, r.CashierCode)
	}
	if r.Overage.IsZero() && r.Shortage.IsZero() {
		return fmt.Errorf("%w: cashier %s has neither overage nor shortage", ErrInvalidRecord, r.CashierCode)
	}
	return nil
}

// MovementQuery is the lookup key used against every source. It is built once
// per discrepancy record and never mutated.
type MovementQuery struct {
	// CashierCode is the identifier to match.
	CashierCode string

	// DateKey is the arqueo date as a comparable numeric key (YYYYMMDD),
	// uniform across all sources regardless of their own representation.
	DateKey int

	// Amount is the absolute discrepancy amount, used only to pick among
	// multiple rows matching the same (identifier, date) pair.
	Amount decimal.Decimal
}

// FieldMap names the columns a tabular source uses for the lookup fields.
// Identifier and Date are mandatory; Value is optional (tiebreak only).
type FieldMap struct {
	// Identifier is the cashier/ATM code column.
	Identifier string `mapstructure:"identifier" yaml:"identifier"`

	// Date is the movement date column.
	Date string `mapstructure:"date" yaml:"date"`

	// Value is the movement amount column.
	Value string `mapstructure:"value" yaml:"value"`
}

// Validate checks that the mandatory mapping fields are present.
func (f FieldMap) Validate() error {
	if f.Identifier == "" {
		return fmt.Errorf("%w: missing identifier column mapping", ErrConfig)
	}
	if f.Date == "" {
		return fmt.Errorf("%w: missing date column mapping", ErrConfig)
	}
	return nil
}

// Disposition is a justification/status pair assigned to a record.
type Disposition struct {
	Justification string `json:"justification" mapstructure:"justification" yaml:"justification"`
	Status        string `json:"status" mapstructure:"status" yaml:"status"`
}

// Movement is a normalized row returned by a source lookup.
type Movement struct {
	// CashierCode is the matched identifier.
	CashierCode string `json:"cashier_code"`

	// DateKey is the movement date as YYYYMMDD.
	DateKey int `json:"date_key"`

	// Value is the movement amount as recorded by the source.
	Value decimal.Decimal `json:"value"`

	// Fields carries the raw source row for reporting.
	Fields map[string]string `json:"fields,omitempty"`
}

// SourceSpec is one ordered entry of the lookup chain. Specs are configured
// once and read-only during a run; no source is mutated by a query.
type SourceSpec struct {
	// Name identifies the source in logs and outcomes.
	Name string

	// Kind is the source variant.
	Kind SourceKind

	// Source is the accessor backing this spec.
	Source Source

	// Fields is the column mapping the accessor uses to interpret rows.
	Fields FieldMap

	// Matched is the disposition applied to a record when this source
	// yields the movement. It passes through the source's own semantics
	// rather than the unmatched fallback pair.
	Matched Disposition
}

// ValidateSources fails fast when the chain is empty or a spec is missing a
// mandatory mapping.
func ValidateSources(specs []SourceSpec) error {
	if len(specs) == 0 {
		return fmt.Errorf("%w: no lookup sources configured", ErrConfig)
	}
	for _, spec := range specs {
		if spec.Source == nil {
			return fmt.Errorf("%w: source %q has no accessor", ErrConfig, spec.Name)
		}
		if err := spec.Fields.Validate(); err != nil {
			return fmt.Errorf("source %q: %w", spec.Name, err)
		}
	}
	return nil
}

// MatchResult is the outcome of one Matcher walk. Produced fresh per query,
// never persisted.
type MatchResult struct {
	// Found reports whether any source yielded a movement.
	Found bool `json:"found"`

	// SourceName and SourceKind identify the matching source.
	SourceName string     `json:"source_name,omitempty"`
	SourceKind SourceKind `json:"source_kind,omitempty"`

	// Movement is the matched row. Nil when Found is false.
	Movement *Movement `json:"movement,omitempty"`

	// Disposition is the matching source's pass-through pair.
	Disposition Disposition `json:"disposition,omitempty"`
}

// OutcomeStatus classifies a per-record result within a batch.
type OutcomeStatus string

const (
	// OutcomeMatched means a source yielded the movement.
	OutcomeMatched OutcomeStatus = "matched"
	// OutcomeDefaulted means the fallback disposition was applied.
	OutcomeDefaulted OutcomeStatus = "defaulted"
	// OutcomeFailed means the record errored and was skipped.
	OutcomeFailed OutcomeStatus = "failed"
)

// Outcome is the per-record entry of a BatchResult.
type Outcome struct {
	RowID         int           `json:"row_id"`
	CashierCode   string        `json:"cashier_code"`
	Status        OutcomeStatus `json:"status"`
	Source        string        `json:"source,omitempty"`
	Justification string        `json:"justification,omitempty"`
	NewStatus     string        `json:"new_status,omitempty"`
	Error         string        `json:"error,omitempty"`
}

// BatchResult aggregates a full run. Outcomes preserve the input record
// order; the external reporting layer consumes this value as-is.
type BatchResult struct {
	// RunID uniquely identifies this run across logs and archives.
	RunID string `json:"run_id"`

	// Outcomes holds one entry per input record, in input order.
	Outcomes []Outcome `json:"outcomes"`

	// BackupPath is the pre-run backup created by the store, empty when no
	// record mutated.
	BackupPath string `json:"backup_path,omitempty"`

	Total     int `json:"total"`
	Matched   int `json:"matched"`
	Defaulted int `json:"defaulted"`
	Failed    int `json:"failed"`
}
