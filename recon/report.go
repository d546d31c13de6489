/*
report.go - Per-key and total reconciliation findings

PURPOSE:
  Compares the merged actual amounts against the declared expectations.
  Every override key yields one independent finding; a failure on one key
  never stops evaluation of the rest. A separate totals finding compares
  the sums of both maps.

DISCREPANCY FLAG:
  A mismatch where actual is zero but expected is non-zero is flagged
  separately: it usually means a key was never built on the actual side
  (missing data or a key-derivation divergence), not a wrong amount.

SEE ALSO:
  - disburse.go: where the actual map comes from
  - override.go: where the expected map comes from
*/
package recon

import (
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// FINDINGS
// =============================================================================

// Finding is one per-key equality assertion.
type Finding struct {
	Key      string
	Expected decimal.Decimal
	Actual   decimal.Decimal
	Match    bool

	// ZeroActualDiscrepancy marks a mismatch where the actual amount is
	// zero but a non-zero amount was expected.
	ZeroActualDiscrepancy bool
}

// Report holds all findings of one reconciliation run.
type Report struct {
	Findings []Finding

	ExpectedTotal decimal.Decimal
	ActualTotal   decimal.Decimal
	TotalsMatch   bool
}

// Passed reports whether every per-key finding and the totals check hold.
func (r Report) Passed() bool {
	if !r.TotalsMatch {
		return false
	}
	for _, f := range r.Findings {
		if !f.Match {
			return false
		}
	}
	return true
}

// Mismatches returns the failing findings.
func (r Report) Mismatches() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if !f.Match {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// RECONCILE
// =============================================================================

// Reconcile compares actual against expected: one finding per override
// key (actual defaults to 0 for keys the disbursement never produced),
// plus the totals check over all values of both maps. Findings are sorted
// by key for deterministic reporting.
func Reconcile(actual DisbursementData, expected OverrideExpectation) Report {
	keys := make([]string, 0, len(expected))
	for key := range expected {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	findings := make([]Finding, 0, len(keys))
	for _, key := range keys {
		exp := expected[key]
		act := actual[key] // zero-value decimal when absent
		match := act.Equal(exp)
		findings = append(findings, Finding{
			Key:                   key,
			Expected:              exp,
			Actual:                act,
			Match:                 match,
			ZeroActualDiscrepancy: !match && act.IsZero() && !exp.IsZero(),
		})
	}

	expectedTotal := Total(expected)
	actualTotal := Total(actual)

	return Report{
		Findings:      findings,
		ExpectedTotal: expectedTotal,
		ActualTotal:   actualTotal,
		TotalsMatch:   actualTotal.Equal(expectedTotal),
	}
}
