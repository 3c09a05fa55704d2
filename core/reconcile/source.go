package reconcile

import "context"

// Source is the uniform query capability shared by all lookup variants.
// Implementations are read-only: a query never mutates the source. Access
// failures should be returned wrapped in ErrSourceUnavailable so the Matcher
// can classify them as soft misses.
type Source interface {
	// Query returns the movements matching (identifier, date) in this
	// source, interpreted through spec.Fields. An empty slice means no
	// match. Connection timeouts are the accessor's own concern; the engine
	// defines no timeout of its own.
	Query(ctx context.Context, spec SourceSpec, q MovementQuery) ([]Movement, error)
}

// Store is the persistence collaborator governing the backing store of the
// discrepancy records. The engine never writes partial data through any
// other path.
type Store interface {
	// Backup copies the exact pre-run content of the backing store to a
	// sibling file (original name + ".backup") and returns its path. Called
	// at most once per run, before the first staged mutation.
	Backup() (string, error)

	// Stage records a mutated row in memory. Nothing touches the backing
	// store until Flush.
	Stage(record DiscrepancyRecord) error

	// Flush writes all staged rows in one temp-file-then-rename sequence.
	// On failure the real store is untouched.
	Flush() error
}
