/*
override.go - Stage 2: expected override amount extraction

PURPOSE:
  Builds the ground-truth expectation map: composite key -> declared
  expected amount. The pipeline persists it under "overrideData" and
  stage 3 reconciles actual disbursements against it.

CONTRACT:
  - status false or responseCode != 200     -> *ApiStatusError, no output
  - dealerOverrides.productTypes absent/empty -> *NoDataWarning, no output
  - otherwise one entry per product record, keyed by OverrideKey; a
    duplicate key overwrites the previous amount (no accumulation)

DEFAULTS:
  - programAgentCode missing -> "UNKNOWN" (so no term-range component)
  - amount failing numeric coercion -> 0 (Amount handles this on decode)

SEE ALSO:
  - key.go: OverrideKey
  - report.go: where expectations are compared
*/
package recon

// ExtractOverrides builds a fresh expectation map from the dealer
// overrides response.
func ExtractOverrides(resp OverrideResponse) (OverrideExpectation, error) {
	if err := checkStatus(resp.StandardResponse); err != nil {
		return nil, err
	}
	if resp.DealerOverrides == nil || len(resp.DealerOverrides.ProductTypes) == 0 {
		return nil, &NoDataWarning{Field: "dealerOverrides.productTypes"}
	}

	agentCode := resp.DealerOverrides.ProgramAgentCode
	if agentCode == "" {
		agentCode = TokenUnknown
	}

	out := make(OverrideExpectation, len(resp.DealerOverrides.ProductTypes))
	for _, product := range resp.DealerOverrides.ProductTypes {
		out[OverrideKey(product, agentCode)] = product.Amount.Decimal
	}
	return out, nil
}
