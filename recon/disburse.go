/*
disburse.go - Stage 3: actual disbursement aggregation and NCB merge

PURPOSE:
  Turns raw commission entries into the merged actual-amount map that is
  reconciled against the stage-2 expectations.

MERGE POLICY (per product):
  Entries are split into a normal bucket and an NCB bucket, both keyed by
  DisbursementKey. For every key in the normal bucket:
    - if the product had at least one NCB-classified entry anywhere in its
      commission list, merged = normal + ncb[key] (0 when absent)
    - otherwise merged = normal
  Keys present only in the NCB bucket are dropped: an NCB amount counts
  only when a normal-payee anchor exists for the same key. Merged results
  accumulate into one map across products; a later product overwrites an
  earlier product's colliding key (no cross-product summation).

CONTRACT:
  - status false or responseCode != 200       -> *ApiStatusError, no output
  - overridesPayee.productTypes absent/empty  -> *NoDataWarning, no output

SEE ALSO:
  - key.go: DisbursementKey and the normalization asymmetry note
  - report.go: Reconcile
  - buckets.go: agent-bucket validation over the same response
*/
package recon

import "github.com/shopspring/decimal"

// BuildDisbursements aggregates commission entries into the merged
// actual-amount map, using cls to decide which payees are NCB.
func BuildDisbursements(resp DisbursementResponse, cls PayeeClassification) (DisbursementData, error) {
	if err := checkStatus(resp.StandardResponse); err != nil {
		return nil, err
	}
	if resp.OverridesPayee == nil || len(resp.OverridesPayee.ProductTypes) == 0 {
		return nil, &NoDataWarning{Field: "overridesPayee.productTypes"}
	}

	agentCode := resp.OverridesPayee.ProgramAgentCode
	data := make(DisbursementData)

	for _, product := range resp.OverridesPayee.ProductTypes {
		normal := make(map[string]decimal.Decimal)
		ncb := make(map[string]decimal.Decimal)
		hasNCB := false

		for _, entry := range product.Commission {
			payeeCode := entry.PayeeCode
			if payeeCode == "" {
				payeeCode = TokenMissingPayee
			}
			key := DisbursementKey(product, entry, agentCode)

			if cls.IsNCB(payeeCode) {
				hasNCB = true
				ncb[key] = ncb[key].Add(entry.Amount.Decimal)
			} else {
				normal[key] = normal[key].Add(entry.Amount.Decimal)
			}
		}

		for key, amount := range normal {
			if hasNCB {
				amount = amount.Add(ncb[key])
			}
			// Later products overwrite colliding keys.
			data[key] = amount
		}
		// NCB-only keys (no normal anchor) are intentionally not emitted.
	}
	return data, nil
}
