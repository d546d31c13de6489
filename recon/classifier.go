/*
classifier.go - Stage 1: chargeback payee classification

PURPOSE:
  Classifies each payee from the chargeback lookup as NCB or NORMAL.
  The resulting map is persisted under "chargebackData" (by the pipeline)
  and consulted by stage 3 when deciding which commission amounts to
  merge into the normal bucket.

CONTRACT:
  - status false or responseCode != 200 -> *ApiStatusError, no output
  - chargebackPayees absent or empty    -> *NoDataWarning, no output
  - otherwise: every payee is classified, keyed by its trimmed and
    upper-cased code (empty string when the code is missing); last write
    wins for duplicate codes

SEE ALSO:
  - disburse.go: the consumer of PayeeClassification
*/
package recon

// ClassifyPayees builds a fresh classification map from the chargeback
// lookup response.
func ClassifyPayees(resp ChargebackResponse) (PayeeClassification, error) {
	if err := checkStatus(resp.StandardResponse); err != nil {
		return nil, err
	}
	if len(resp.ChargebackPayees) == 0 {
		return nil, &NoDataWarning{Field: "chargebackPayees"}
	}

	out := make(PayeeClassification, len(resp.ChargebackPayees))
	for _, payee := range resp.ChargebackPayees {
		cls := Normal
		if payee.IsNCB {
			cls = NCB
		}
		out[NormalizeCode(payee.PayeeCode)] = cls
	}
	return out, nil
}
