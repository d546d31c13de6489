/*
key.go - Composite aggregation key construction

PURPOSE:
  Maps heterogeneous product/commission records into comparable buckets.
  The key is productType_productCode_coverageCode, with _termRange
  appended only for the term-range-sensitive agent "007500".

CRITICAL INVARIANT:
  OverrideKey (stage 2) and DisbursementKey (stage 3) must stay
  structurally identical: same field order, same conditional term-range
  inclusion, same fallback tokens. Any divergence silently produces
  spurious zero-vs-nonzero mismatches downstream.

NORMALIZATION ASYMMETRY (preserved from the source behavior):
  OverrideKey trims and upper-cases every component. DisbursementKey uses
  product type/code and coverage/term exactly as received, applying only
  the missing-field fallbacks. Upstream data is expected pre-normalized;
  when it is not, keys built from differently-cased inputs will not align.
  See DESIGN.md for the compatibility decision and the dedicated test.

SEE ALSO:
  - override.go, disburse.go: the two key call sites
*/
package recon

import "strings"

// AgentTermRange is the program-agent code that activates
// term-range-sensitive key construction.
const AgentTermRange = "007500"

// Fallback tokens for missing key components.
const (
	TokenUnknown      = "UNKNOWN" // product type / product code
	TokenNull         = "NULL"    // coverage code / term range
	TokenMissingPayee = "N/A"     // payee code (stage 3 only)
)

// NormalizeCode trims surrounding whitespace and upper-cases a code.
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// OverrideKey builds the stage-2 composite key. Every component is
// trimmed and upper-cased before fallbacks apply.
func OverrideKey(p ProductRecord, agentCode string) string {
	parts := []string{
		orToken(NormalizeCode(p.ProductType), TokenUnknown),
		orToken(NormalizeCode(p.ProductCode), TokenUnknown),
		orToken(NormalizeCode(p.ProductCoverageCode), TokenNull),
	}
	if termRangeAgent(agentCode) {
		parts = append(parts, orToken(NormalizeCode(p.TermRange), TokenNull))
	}
	return collapseKey(strings.Join(parts, "_"))
}

// DisbursementKey builds the stage-3 composite key. Product type/code and
// the entry's coverage/term are used as received; only missing-field
// fallbacks apply. See the asymmetry note in the file header.
func DisbursementKey(p PayeeProduct, e CommissionEntry, agentCode string) string {
	parts := []string{
		p.ProductType,
		p.ProductCode,
		orToken(e.ProductCoverageCode, TokenNull),
	}
	if termRangeAgent(agentCode) {
		parts = append(parts, orToken(e.TermRange, TokenNull))
	}
	return collapseKey(strings.Join(parts, "_"))
}

// termRangeAgent reports whether the agent activates the term-range
// component.
func termRangeAgent(agentCode string) bool {
	return strings.TrimSpace(agentCode) == AgentTermRange
}

// orToken substitutes token when the component is empty.
func orToken(s, token string) string {
	if s == "" {
		return token
	}
	return s
}

// collapseKey collapses any whitespace inside the assembled key to
// underscores, so multi-word components stay single tokens.
func collapseKey(s string) string {
	return strings.Join(strings.Fields(s), "_")
}
