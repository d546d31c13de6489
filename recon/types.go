/*
Package recon reconciles commission disbursement data against pre-declared
override (expected) amounts.

PURPOSE:
  This package contains the core engine for a three-stage payout
  verification pipeline:

    1. Chargeback Classifier  - payee code -> {NCB, NORMAL}
    2. Override Extractor     - composite key -> expected amount
    3. Disbursement Reconciler - actual amounts, NCB-merged, compared
                                 against expectations per key and in total

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: monetary value with lenient JSON coercion (bad input -> 0)
  - Response envelopes: one parsed API response per stage
  - PayeeClassification / OverrideExpectation / DisbursementData: the
    three maps the stages produce

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal everywhere an amount is held or compared
  2. Explicit defaults: every optional field has a documented fallback
  3. Pure stages: stage functions take parsed responses, return maps;
     persistence is the caller's concern

SEE ALSO:
  - key.go: composite key construction
  - classifier.go, override.go, disburse.go: the three stages
  - report.go: reconciliation findings
*/
package recon

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Monetary value with lenient coercion
// =============================================================================

// Amount wraps decimal.Decimal with coercing JSON decoding: upstream
// payloads carry amounts as numbers or strings, and anything that does not
// parse as a number becomes zero rather than an error.
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON accepts a JSON number, a quoted numeric string, or null.
// Unparsable input yields zero. This mirrors the silent-recovery policy of
// the upstream pipeline: a malformed amount is a zero amount, not a failure.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = CoerceAmount(s)
	return nil
}

// MarshalJSON emits the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// NewAmount builds an Amount from a float (test convenience).
func NewAmount(value float64) Amount {
	return Amount{Decimal: decimal.NewFromFloat(value)}
}

// CoerceAmount parses s as a decimal, returning zero on any failure.
func CoerceAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Total sums every value in an amount map.
func Total(m map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// =============================================================================
// RESPONSE ENVELOPES - One parsed API response per stage
// =============================================================================

// StandardResponse is the status header every upstream response carries.
type StandardResponse struct {
	Status       bool `json:"status"`
	ResponseCode int  `json:"responseCode"`
}

// OK reports whether the upstream call succeeded. Both signals must agree.
func (r StandardResponse) OK() bool {
	return r.Status && r.ResponseCode == 200
}

// ChargebackResponse is the stage-1 input: the list of payees to classify.
type ChargebackResponse struct {
	StandardResponse StandardResponse  `json:"standardResponse"`
	ChargebackPayees []ChargebackPayee `json:"chargebackPayees"`
}

// ChargebackPayee is one payee record from the chargeback lookup.
type ChargebackPayee struct {
	PayeeCode string `json:"payeeCode"`
	IsNCB     bool   `json:"isNCB"`
}

// OverrideResponse is the stage-2 input: declared expected amounts.
type OverrideResponse struct {
	StandardResponse StandardResponse `json:"standardResponse"`
	DealerOverrides  *DealerOverrides `json:"dealerOverrides"`
}

// DealerOverrides carries the declaring agent and its product records.
type DealerOverrides struct {
	ProgramAgentCode string          `json:"programAgentCode"`
	ProductTypes     []ProductRecord `json:"productTypes"`
}

// ProductRecord is one product-level expected amount.
// Missing productType/productCode fall back to "UNKNOWN"; missing
// productCoverageCode/termRange fall back to "NULL" (see key.go).
type ProductRecord struct {
	ProductType         string `json:"productType"`
	ProductCode         string `json:"productCode"`
	ProductCoverageCode string `json:"productCoverageCode"`
	TermRange           string `json:"termRange"`
	Amount              Amount `json:"amount"`
}

// DisbursementResponse is the stage-3 input: actual commission entries.
type DisbursementResponse struct {
	StandardResponse StandardResponse `json:"standardResponse"`
	OverridesPayee   *OverridesPayee  `json:"overridesPayee"`
}

// OverridesPayee carries the agent and its per-product commission lists.
type OverridesPayee struct {
	ProgramAgentCode string         `json:"programAgentCode"`
	ProductTypes     []PayeeProduct `json:"productTypes"`
}

// PayeeProduct is one product with its disbursed commission entries.
type PayeeProduct struct {
	ProductType            string            `json:"productType"`
	ProductTypeDescription string            `json:"productTypeDescription"`
	ProductCode            string            `json:"productCode"`
	Commission             []CommissionEntry `json:"commission"`
}

// CommissionEntry is one disbursed amount within a product. Consumed
// transiently while building DisbursementData; never persisted.
// Missing payeeCode falls back to "N/A", missing coverage/term to "NULL",
// missing amount to 0.
type CommissionEntry struct {
	PayeeCode           string `json:"payeeCode"`
	PayeeName           string `json:"payeeName"`
	ProductCoverageCode string `json:"productCoverageCode"`
	TermRange           string `json:"termRange"`
	AgentBucket         int    `json:"agentBucket"`
	Amount              Amount `json:"amount"`
}

// =============================================================================
// STAGE OUTPUTS
// =============================================================================

// Classification is a payee's chargeback category.
type Classification string

const (
	NCB    Classification = "NCB"
	Normal Classification = "NORMAL"
)

// PayeeClassification maps trimmed/upper-cased payee codes to their
// classification. Built fresh each stage-1 run; last write wins for
// duplicate codes.
type PayeeClassification map[string]Classification

// IsNCB reports whether a payee's amounts must be merged into the normal
// bucket. A payee is NCB when the classification map says so (lookup is
// trim/upper-normalized) or when the raw code contains the substring "NCB".
// Unknown payees are NORMAL.
func (pc PayeeClassification) IsNCB(payeeCode string) bool {
	if pc[NormalizeCode(payeeCode)] == NCB {
		return true
	}
	return strings.Contains(payeeCode, "NCB")
}

// OverrideExpectation maps composite keys to declared expected amounts.
type OverrideExpectation map[string]decimal.Decimal

// DisbursementData maps composite keys to merged actual amounts.
type DisbursementData map[string]decimal.Decimal
