package reconcile

// Canonical fallback dispositions for unmatched discrepancies.
var (
	// overageFallback is assigned when counted cash exceeds expected and no
	// source yielded a movement.
	overageFallback = Disposition{
		Justification: "SOBRANTE CONTABLE",
		Status:        "SOBRANTE CONTABLE",
	}

	// shortageFallback is assigned when counted cash is under expected and
	// no source yielded a movement: a physical count issue.
	shortageFallback = Disposition{
		Justification: "Fisico",
		Status:        "FALTANTE EN ARQUEO",
	}
)

// Resolve assigns the canonical disposition for a record no source matched.
// The tie-break rule is the discrepancy sign, mutually exclusive by the
// record invariant. Undefined input (both zero, both positive) is a contract
// violation and returns ErrInvalidRecord rather than guessing.
//
// Pure function: no I/O, no side effects.
func Resolve(record DiscrepancyRecord) (Disposition, error) {
	if err := record.Validate(); err != nil {
		return Disposition{}, err
	}
	if record.IsOverage() {
		return overageFallback, nil
	}
	return shortageFallback, nil
}
