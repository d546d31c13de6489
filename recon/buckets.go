/*
buckets.go - Agent bucket validation for disbursement entries

PURPOSE:
  Each program agent disburses into a fixed range of payout buckets, with
  one bucket reserved for the NCB payee. This validator checks every
  commission entry's agentBucket against that configuration:

    - NCB payees must land on the agent's reserved NCB bucket
    - normal payees are assigned sequential buckets from the override
      range, skipping the NCB bucket when it falls inside the range;
      a payee code keeps its first assigned bucket on repeat entries
    - the range running out is reported, not fatal

  Agents absent from the configuration table fail validation outright.

SEE ALSO:
  - disburse.go: amount aggregation over the same response
*/
package recon

import (
	"fmt"
	"strings"
)

// =============================================================================
// AGENT BUCKET CONFIGURATION
// =============================================================================

type bucketConfig struct {
	OverrideFrom int // first bucket for normal payees
	OverrideTo   int // last bucket for normal payees
	NCBBucket    int // reserved NCB bucket
}

// agentBuckets holds the per-agent payout bucket layout.
var agentBuckets = map[string]bucketConfig{
	"001601": {OverrideFrom: 15, OverrideTo: 19, NCBBucket: 9},
	"001602": {OverrideFrom: 15, OverrideTo: 19, NCBBucket: 9},
	"010075": {OverrideFrom: 15, OverrideTo: 19, NCBBucket: 9},
	"010000": {OverrideFrom: 15, OverrideTo: 19, NCBBucket: 9},
	"010076": {OverrideFrom: 15, OverrideTo: 19, NCBBucket: 9},
	"002031": {OverrideFrom: 4, OverrideTo: 8, NCBBucket: 9},
	"009010": {OverrideFrom: 4, OverrideTo: 8, NCBBucket: 9},
	"002300": {OverrideFrom: 7, OverrideTo: 8, NCBBucket: 9},
	"008100": {OverrideFrom: 4, OverrideTo: 8, NCBBucket: 9},
	"002037": {OverrideFrom: 4, OverrideTo: 8, NCBBucket: 9},
	"001950": {OverrideFrom: 15, OverrideTo: 19, NCBBucket: 9},
	"001900": {OverrideFrom: 15, OverrideTo: 19, NCBBucket: 9},
	"009000": {OverrideFrom: 4, OverrideTo: 8, NCBBucket: 9},
	"002600": {OverrideFrom: 4, OverrideTo: 9, NCBBucket: 8},
	"002700": {OverrideFrom: 4, OverrideTo: 9, NCBBucket: 8},
	"002800": {OverrideFrom: 4, OverrideTo: 9, NCBBucket: 8},
	"003000": {OverrideFrom: 4, OverrideTo: 8, NCBBucket: 9},
	"003100": {OverrideFrom: 4, OverrideTo: 8, NCBBucket: 9},
	"003200": {OverrideFrom: 4, OverrideTo: 8, NCBBucket: 9},
	"000927": {OverrideFrom: 15, OverrideTo: 20, NCBBucket: 9},
	"003300": {OverrideFrom: 4, OverrideTo: 8, NCBBucket: 9},
}

// KnownBucketAgent reports whether the agent has a bucket configuration.
func KnownBucketAgent(agentCode string) bool {
	_, ok := agentBuckets[strings.TrimSpace(agentCode)]
	return ok
}

// =============================================================================
// FINDINGS
// =============================================================================

// BucketFinding is one entry-level bucket check.
type BucketFinding struct {
	PayeeCode      string
	ProductCode    string
	NCBPayee       bool
	ExpectedBucket int
	ActualBucket   int
	Passed         bool
}

// BucketReport holds the bucket validation outcome for one response.
type BucketReport struct {
	AgentCode string
	Findings  []BucketFinding
	Notes     []string
	Passed    bool
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidateBuckets checks every commission entry's agentBucket against the
// agent's configured layout. The caller is expected to have gated the
// response already; a nil/empty payload yields an empty passing report.
func ValidateBuckets(resp DisbursementResponse) BucketReport {
	agentCode := ""
	if resp.OverridesPayee != nil {
		agentCode = strings.TrimSpace(resp.OverridesPayee.ProgramAgentCode)
	}
	report := BucketReport{AgentCode: agentCode, Passed: true}

	cfg, ok := agentBuckets[agentCode]
	if !ok {
		report.Passed = false
		report.Notes = append(report.Notes,
			fmt.Sprintf("agent %q is not in the bucket configuration", agentCode))
		return report
	}
	if resp.OverridesPayee == nil {
		return report
	}

	next := cfg.OverrideFrom
	assigned := make(map[string]int)

	for _, product := range resp.OverridesPayee.ProductTypes {
		for _, entry := range product.Commission {
			finding := BucketFinding{
				PayeeCode:    entry.PayeeCode,
				ProductCode:  product.ProductCode,
				ActualBucket: entry.AgentBucket,
			}

			if strings.Contains(entry.PayeeCode, "NCB") {
				finding.NCBPayee = true
				finding.ExpectedBucket = cfg.NCBBucket
			} else if bucket, seen := assigned[entry.PayeeCode]; seen {
				finding.ExpectedBucket = bucket
			} else {
				// Skip the reserved NCB bucket when it sits inside the range.
				for next <= cfg.OverrideTo && next == cfg.NCBBucket {
					next++
				}
				finding.ExpectedBucket = next
				assigned[entry.PayeeCode] = next
				next++
				if next > cfg.OverrideTo {
					report.Notes = append(report.Notes,
						fmt.Sprintf("bucket range exhausted for agent %s after payee %s", agentCode, entry.PayeeCode))
				}
			}

			finding.Passed = finding.ActualBucket == finding.ExpectedBucket
			if !finding.Passed {
				report.Passed = false
			}
			report.Findings = append(report.Findings, finding)
		}
	}
	return report
}
