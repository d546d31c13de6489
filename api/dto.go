/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the HTTP surface. Stage request bodies are the
  parsed upstream responses themselves (recon.ChargebackResponse etc.);
  the types here shape what goes back out. Amounts are serialized as
  strings to keep decimal precision visible.

NAMING CONVENTION:
  - *DTO: response types returned to clients

SEE ALSO:
  - handlers.go: uses these types
  - recon/report.go: the domain types these mirror
*/
package api

import (
	"github.com/warp/recon-engine/pipeline"
	"github.com/warp/recon-engine/recon"
)

// =============================================================================
// STAGE RESULTS
// =============================================================================

// StageResultDTO reports the outcome of running one pipeline stage.
type StageResultDTO struct {
	Stage     string `json:"stage"`
	Persisted bool   `json:"persisted"`
	Records   int    `json:"records"`
	Warning   string `json:"warning,omitempty"`
}

// =============================================================================
// RECONCILIATION REPORT
// =============================================================================

// FindingDTO is one per-key equality assertion.
type FindingDTO struct {
	Key                   string `json:"key"`
	Expected              string `json:"expected"`
	Actual                string `json:"actual"`
	Match                 bool   `json:"match"`
	ZeroActualDiscrepancy bool   `json:"zeroActualDiscrepancy,omitempty"`
}

// ReportDTO is a full reconciliation report.
type ReportDTO struct {
	Findings      []FindingDTO `json:"findings"`
	ExpectedTotal string       `json:"expectedTotal"`
	ActualTotal   string       `json:"actualTotal"`
	TotalsMatch   bool         `json:"totalsMatch"`
	Passed        bool         `json:"passed"`
}

// BucketFindingDTO is one agent-bucket check.
type BucketFindingDTO struct {
	PayeeCode      string `json:"payeeCode"`
	ProductCode    string `json:"productCode"`
	NCBPayee       bool   `json:"ncbPayee"`
	ExpectedBucket int    `json:"expectedBucket"`
	ActualBucket   int    `json:"actualBucket"`
	Passed         bool   `json:"passed"`
}

// BucketReportDTO is the agent-bucket validation outcome.
type BucketReportDTO struct {
	AgentCode string             `json:"agentCode"`
	Findings  []BucketFindingDTO `json:"findings"`
	Notes     []string           `json:"notes,omitempty"`
	Passed    bool               `json:"passed"`
}

// DisbursementResultDTO is the stage-3 response body.
type DisbursementResultDTO struct {
	Stage         string            `json:"stage"`
	Persisted     bool              `json:"persisted"`
	Disbursements map[string]string `json:"disbursements"`
	Report        ReportDTO         `json:"report"`
	Buckets       *BucketReportDTO  `json:"buckets,omitempty"`
}

// StateValueDTO is the raw persisted value for one state name.
type StateValueDTO struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
	Value string `json:"value,omitempty"`
}

// ErrorDTO is the error response body.
type ErrorDTO struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toReportDTO(r recon.Report) ReportDTO {
	findings := make([]FindingDTO, len(r.Findings))
	for i, f := range r.Findings {
		findings[i] = FindingDTO{
			Key:                   f.Key,
			Expected:              f.Expected.String(),
			Actual:                f.Actual.String(),
			Match:                 f.Match,
			ZeroActualDiscrepancy: f.ZeroActualDiscrepancy,
		}
	}
	return ReportDTO{
		Findings:      findings,
		ExpectedTotal: r.ExpectedTotal.String(),
		ActualTotal:   r.ActualTotal.String(),
		TotalsMatch:   r.TotalsMatch,
		Passed:        r.Passed(),
	}
}

func toBucketReportDTO(b *recon.BucketReport) *BucketReportDTO {
	if b == nil {
		return nil
	}
	findings := make([]BucketFindingDTO, len(b.Findings))
	for i, f := range b.Findings {
		findings[i] = BucketFindingDTO{
			PayeeCode:      f.PayeeCode,
			ProductCode:    f.ProductCode,
			NCBPayee:       f.NCBPayee,
			ExpectedBucket: f.ExpectedBucket,
			ActualBucket:   f.ActualBucket,
			Passed:         f.Passed,
		}
	}
	return &BucketReportDTO{
		AgentCode: b.AgentCode,
		Findings:  findings,
		Notes:     b.Notes,
		Passed:    b.Passed,
	}
}

func toDisbursementResultDTO(r *pipeline.DisbursementResult) DisbursementResultDTO {
	disb := make(map[string]string, len(r.Data))
	for key, amount := range r.Data {
		disb[key] = amount.String()
	}
	return DisbursementResultDTO{
		Stage:         "disbursement",
		Persisted:     true,
		Disbursements: disb,
		Report:        toReportDTO(r.Report),
		Buckets:       toBucketReportDTO(r.Buckets),
	}
}
