// Package arqueo implements the ATM cash-count reconciliation feature.
//
// An arqueo is a physical cash count of an ATM. When the count disagrees
// with the expected balance, the discrepancy lands in a management workbook
// awaiting a justification. This package resolves those rows by searching
// the movement sources in priority order:
//  1. Ledger database: the live national movements account.
//  2. Ledger extract: a flat-file refresh of the same account.
//  3. Fallback sheets: branch-maintained workbooks, current and historic.
//
// # Reconcile Engine
//
// The package drives the `core/reconcile` engine: sources implement its
// Source interface, the workbook store implements its Store interface, and
// the Service wires both into a Driver run.
//
// # Components
//
//   - Service: Orchestrates a run: load, reconcile, flush, archive.
//   - Handler: Exposes the HTTP trigger used by workflow engines.
//   - sources: The four lookup source implementations and their catalog.
//   - store: The xlsx-backed record store with backup and atomic flush.
//   - archive: Post-run upload of processed artifacts to object storage.
//
// # HTTP Endpoints
//
//   - POST /reconcile : Run a full batch and return its result.
//   - GET /healthz : Liveness probe.
package arqueo
