// Package reconcile provides the discrepancy-resolution engine for daily ATM
// cash-count (arqueo) records.
//
// Given a record with a non-zero overage or shortage, the engine locates a
// matching movement in a prioritized chain of sources and, failing all
// lookups, assigns a canonical fallback disposition. The enriched records are
// staged in memory and committed to the backing store in a single atomic
// flush, preceded by a one-per-run backup of the pre-run state.
//
// # Architecture
//
// The engine consists of four components:
//
//  1. Matcher: walks the ordered SourceSpec list and returns the first match.
//     A source-level failure is a soft miss; the walk continues.
//
//  2. Resolver: pure fallback rule keyed on the discrepancy sign, applied only
//     when no source matched.
//
//  3. Updater: the only writer of record fields. Governs the persistence
//     discipline (lazy pre-mutation backup, staged writes, all-or-nothing
//     flush) through the Store interface.
//
//  4. Driver: iterates a batch in input order, isolating per-record failures
//     and aggregating a BatchResult. Only persistence errors abort the run.
//
// # Sources
//
// The four source kinds (ledger-db, ledger-file, fallback-sheet-primary,
// fallback-sheet-historic) share the Source interface; the Matcher is written
// once against it and never inspects the backing implementation. Concrete
// accessors live in feature/arqueo/sources.
//
// The package holds no ambient state: sources, store, and logger are passed
// explicitly, so the engine is testable in isolation with fakes.
package reconcile
