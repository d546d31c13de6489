/*
Package pipeline threads the state store through the three reconciliation
stages.

PURPOSE:
  The recon package computes; this package sequences and persists. Each
  stage gates on the response status, computes its map fully in memory,
  then writes it to the store exactly once - a failed stage mutates
  nothing. Stage ordering 1 -> 2 -> 3 matters because stage 3 reads the
  state written by stages 1 and 2; a stage re-run against stale upstream
  state silently reuses whatever the store holds (last-writer-wins, no
  cross-stage transactions).

ERROR SEMANTICS:
  - *recon.ApiStatusError: stage aborts, no mutation, logged as error
  - *recon.NoDataWarning:  stage aborts, no mutation, logged as warning
  Neither stops a later stage from running against the persisted state.

SEE ALSO:
  - recon: the pure stage functions
  - state: the store contract and codecs
*/
package pipeline

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/warp/recon-engine/recon"
	"github.com/warp/recon-engine/state"
)

// Pipeline runs the reconciliation stages against a shared state store.
type Pipeline struct {
	store state.Store
	log   *zap.Logger
}

// New creates a pipeline. A nil logger falls back to the global zap
// logger.
func New(store state.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.L()
	}
	return &Pipeline{store: store, log: logger}
}

// =============================================================================
// STAGE 1 - CHARGEBACK CLASSIFIER
// =============================================================================

// RunChargeback classifies payees and persists the map under
// "chargebackData", replacing any prior value.
func (p *Pipeline) RunChargeback(ctx context.Context, resp recon.ChargebackResponse) (recon.PayeeClassification, error) {
	log := p.log.With(zap.String("stage", "chargeback"))

	cls, err := recon.ClassifyPayees(resp)
	if err != nil {
		logStageError(log, err)
		return nil, err
	}

	encoded, err := state.EncodeClassification(cls)
	if err != nil {
		return nil, eris.Wrap(err, "chargeback: encode classification")
	}
	if err := p.store.Set(ctx, state.KeyChargebackData, encoded); err != nil {
		return nil, eris.Wrap(err, "chargeback: persist classification")
	}

	log.Info("classification persisted", zap.Int("payees", len(cls)))
	return cls, nil
}

// =============================================================================
// STAGE 2 - OVERRIDE EXTRACTOR
// =============================================================================

// RunOverrides extracts the expectation map and persists it under
// "overrideData", replacing any prior value.
func (p *Pipeline) RunOverrides(ctx context.Context, resp recon.OverrideResponse) (recon.OverrideExpectation, error) {
	log := p.log.With(zap.String("stage", "overrides"))

	expected, err := recon.ExtractOverrides(resp)
	if err != nil {
		logStageError(log, err)
		return nil, err
	}

	encoded, err := state.EncodeAmounts(expected)
	if err != nil {
		return nil, eris.Wrap(err, "overrides: encode expectations")
	}
	if err := p.store.Set(ctx, state.KeyOverrideData, encoded); err != nil {
		return nil, eris.Wrap(err, "overrides: persist expectations")
	}

	log.Info("expectations persisted", zap.Int("keys", len(expected)))
	return expected, nil
}

// =============================================================================
// STAGE 3 - DISBURSEMENT RECONCILER
// =============================================================================

// DisbursementResult is the externally observable outcome of stage 3.
type DisbursementResult struct {
	Data   recon.DisbursementData
	Report recon.Report

	// Buckets is set only when the response's agent code has a bucket
	// configuration; other agents skip the check.
	Buckets *recon.BucketReport
}

// RunDisbursement builds the merged actual-amount map from the response
// and the persisted classification, persists it under "DisbursementData",
// and reconciles it against the persisted expectations.
func (p *Pipeline) RunDisbursement(ctx context.Context, resp recon.DisbursementResponse) (*DisbursementResult, error) {
	log := p.log.With(zap.String("stage", "disbursement"))

	cls, err := state.LoadClassification(ctx, p.store)
	if err != nil {
		return nil, eris.Wrap(err, "disbursement: load classification")
	}

	data, err := recon.BuildDisbursements(resp, cls)
	if err != nil {
		logStageError(log, err)
		return nil, err
	}

	encoded, err := state.EncodeAmounts(data)
	if err != nil {
		return nil, eris.Wrap(err, "disbursement: encode amounts")
	}
	if err := p.store.Set(ctx, state.KeyDisbursementData, encoded); err != nil {
		return nil, eris.Wrap(err, "disbursement: persist amounts")
	}

	expected, err := state.LoadAmounts(ctx, p.store, state.KeyOverrideData)
	if err != nil {
		return nil, eris.Wrap(err, "disbursement: load expectations")
	}

	report := recon.Reconcile(data, expected)
	for _, f := range report.Findings {
		if f.Match {
			continue
		}
		log.Error("amount mismatch",
			zap.String("key", f.Key),
			zap.String("expected", f.Expected.String()),
			zap.String("actual", f.Actual.String()),
			zap.Bool("zeroActualDiscrepancy", f.ZeroActualDiscrepancy))
	}
	if !report.TotalsMatch {
		log.Error("totals mismatch",
			zap.String("expected", report.ExpectedTotal.String()),
			zap.String("actual", report.ActualTotal.String()))
	}

	result := &DisbursementResult{Data: data, Report: report}
	if resp.OverridesPayee != nil && recon.KnownBucketAgent(resp.OverridesPayee.ProgramAgentCode) {
		buckets := recon.ValidateBuckets(resp)
		result.Buckets = &buckets
		if !buckets.Passed {
			log.Error("bucket validation failed",
				zap.String("agentCode", buckets.AgentCode),
				zap.Strings("notes", buckets.Notes))
		}
	}

	log.Info("disbursement persisted",
		zap.Int("keys", len(data)),
		zap.Bool("passed", report.Passed()))
	return result, nil
}

// =============================================================================
// FULL RUN & REPORT
// =============================================================================

// Run executes the three stages in order. A stage failure is collected
// rather than halting the run: later stages still execute against
// whatever state is persisted, matching the stale-state semantics of the
// store.
func (p *Pipeline) Run(ctx context.Context,
	chargeback recon.ChargebackResponse,
	overrides recon.OverrideResponse,
	disbursement recon.DisbursementResponse,
) (*DisbursementResult, error) {
	var errs []error

	if _, err := p.RunChargeback(ctx, chargeback); err != nil {
		errs = append(errs, err)
	}
	if _, err := p.RunOverrides(ctx, overrides); err != nil {
		errs = append(errs, err)
	}
	result, err := p.RunDisbursement(ctx, disbursement)
	if err != nil {
		errs = append(errs, err)
	}

	return result, errors.Join(errs...)
}

// Report recomputes the reconciliation findings from the persisted state,
// without re-running any stage.
func (p *Pipeline) Report(ctx context.Context) (recon.Report, error) {
	actual, err := state.LoadAmounts(ctx, p.store, state.KeyDisbursementData)
	if err != nil {
		return recon.Report{}, eris.Wrap(err, "report: load disbursements")
	}
	expected, err := state.LoadAmounts(ctx, p.store, state.KeyOverrideData)
	if err != nil {
		return recon.Report{}, eris.Wrap(err, "report: load expectations")
	}
	return recon.Reconcile(actual, expected), nil
}

// logStageError logs gate failures as errors and empty payloads as
// warnings.
func logStageError(log *zap.Logger, err error) {
	if recon.IsNoData(err) {
		log.Warn("stage skipped", zap.Error(err))
		return
	}
	log.Error("stage aborted", zap.Error(err))
}
