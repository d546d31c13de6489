package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/recon-engine/recon"
	"github.com/warp/recon-engine/state"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestPipeline() (*Pipeline, *state.Memory) {
	store := state.NewMemory()
	return New(store, zap.NewNop()), store
}

func okStatus() recon.StandardResponse {
	return recon.StandardResponse{Status: true, ResponseCode: 200}
}

func chargebackFixture() recon.ChargebackResponse {
	return recon.ChargebackResponse{
		StandardResponse: okStatus(),
		ChargebackPayees: []recon.ChargebackPayee{
			{PayeeCode: "AB1", IsNCB: false},
			{PayeeCode: "XY9", IsNCB: true},
		},
	}
}

func overridesFixture() recon.OverrideResponse {
	return recon.OverrideResponse{
		StandardResponse: okStatus(),
		DealerOverrides: &recon.DealerOverrides{
			ProgramAgentCode: "007500",
			ProductTypes: []recon.ProductRecord{{
				ProductType: "life", ProductCode: "L1", ProductCoverageCode: "c1",
				TermRange: "12m", Amount: recon.NewAmount(50.5),
			}},
		},
	}
}

func disbursementFixture() recon.DisbursementResponse {
	return recon.DisbursementResponse{
		StandardResponse: okStatus(),
		OverridesPayee: &recon.OverridesPayee{
			ProgramAgentCode: "007500",
			ProductTypes: []recon.PayeeProduct{{
				ProductType: "LIFE", ProductCode: "L1",
				Commission: []recon.CommissionEntry{
					{PayeeCode: "AB1", ProductCoverageCode: "C1", TermRange: "12M", Amount: recon.NewAmount(30)},
					{PayeeCode: "AB1_NCB", ProductCoverageCode: "C1", TermRange: "12M", Amount: recon.NewAmount(20.5)},
				},
			}},
		},
	}
}

// =============================================================================
// STAGE RUNS
// =============================================================================

func TestRunChargeback_PersistsClassification(t *testing.T) {
	// Payee " ab1 " flagged NCB persists under its normalized code.
	ctx := context.Background()
	p, store := newTestPipeline()

	resp := recon.ChargebackResponse{
		StandardResponse: okStatus(),
		ChargebackPayees: []recon.ChargebackPayee{{PayeeCode: " ab1 ", IsNCB: true}},
	}
	cls, err := p.RunChargeback(ctx, resp)
	require.NoError(t, err)
	assert.Equal(t, recon.PayeeClassification{"AB1": recon.NCB}, cls)

	value, found, err := store.Get(ctx, state.KeyChargebackData)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"AB1":"NCB"}`, value)
}

func TestRunChargeback_GateFailureMutatesNothing(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline()

	resp := chargebackFixture()
	resp.StandardResponse.ResponseCode = 503
	_, err := p.RunChargeback(ctx, resp)
	assert.ErrorIs(t, err, recon.ErrAPIStatus)

	_, found, _ := store.Get(ctx, state.KeyChargebackData)
	assert.False(t, found)
}

func TestRunOverrides_NoDataMutatesNothing(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline()

	_, err := p.RunOverrides(ctx, recon.OverrideResponse{StandardResponse: okStatus()})
	assert.True(t, recon.IsNoData(err))

	_, found, _ := store.Get(ctx, state.KeyOverrideData)
	assert.False(t, found)
}

func TestRunDisbursement_NoDataSkipsPersistAndAssertions(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline()

	_, err := p.RunDisbursement(ctx, recon.DisbursementResponse{StandardResponse: okStatus()})
	assert.True(t, recon.IsNoData(err))

	_, found, _ := store.Get(ctx, state.KeyDisbursementData)
	assert.False(t, found, "no DisbursementData write on NoDataWarning")

	report, err := p.Report(ctx)
	require.NoError(t, err)
	assert.Empty(t, report.Findings, "zero assertions executed")
}

// =============================================================================
// FULL RUN
// =============================================================================

func TestRun_EndToEndReconciles(t *testing.T) {
	// GIVEN: the three stage fixtures (NCB payee AB1, expectation 50.5
	//        under LIFE_L1_C1_12M, actuals 30 + 20.5 NCB)
	// WHEN: running the full pipeline
	// THEN: the merged amount matches per key and in total

	ctx := context.Background()
	p, store := newTestPipeline()

	result, err := p.Run(ctx, chargebackFixture(), overridesFixture(), disbursementFixture())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Report.Passed())
	require.Len(t, result.Report.Findings, 1)
	f := result.Report.Findings[0]
	assert.Equal(t, "LIFE_L1_C1_12M", f.Key)
	assert.True(t, f.Match)
	assert.True(t, result.Report.TotalsMatch)

	_, found, _ := store.Get(ctx, state.KeyDisbursementData)
	assert.True(t, found)
}

func TestRun_StageFailureDoesNotHaltLaterStages(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline()

	badChargeback := chargebackFixture()
	badChargeback.StandardResponse.Status = false

	result, err := p.Run(ctx, badChargeback, overridesFixture(), disbursementFixture())
	assert.Error(t, err)
	require.NotNil(t, result, "stage 3 still ran against empty classification")

	// Without the persisted classification the NCB substring signal still
	// merges AB1_NCB, so the example scenario happens to pass.
	assert.True(t, result.Report.Passed())

	_, found, _ := store.Get(ctx, state.KeyChargebackData)
	assert.False(t, found)
}

func TestRun_Idempotent(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline()

	_, err := p.Run(ctx, chargebackFixture(), overridesFixture(), disbursementFixture())
	require.NoError(t, err)
	first, _, _ := store.Get(ctx, state.KeyDisbursementData)
	firstOverrides, _, _ := store.Get(ctx, state.KeyOverrideData)

	_, err = p.Run(ctx, chargebackFixture(), overridesFixture(), disbursementFixture())
	require.NoError(t, err)
	second, _, _ := store.Get(ctx, state.KeyDisbursementData)
	secondOverrides, _, _ := store.Get(ctx, state.KeyOverrideData)

	assert.Equal(t, first, second)
	assert.Equal(t, firstOverrides, secondOverrides)
}

func TestRunDisbursement_ReusesStaleClassification(t *testing.T) {
	// A partial run (stage 3 without a fresh stage 1) silently reuses
	// whatever classification the store holds.
	ctx := context.Background()
	p, store := newTestPipeline()

	require.NoError(t, store.Set(ctx, state.KeyChargebackData, `{"XY9":"NCB"}`))
	_, err := p.RunOverrides(ctx, overridesFixture())
	require.NoError(t, err)

	resp := disbursementFixture()
	resp.OverridesPayee.ProductTypes[0].Commission[1] = recon.CommissionEntry{
		PayeeCode: "XY9", ProductCoverageCode: "C1", TermRange: "12M", Amount: recon.NewAmount(20.5),
	}

	result, err := p.RunDisbursement(ctx, resp)
	require.NoError(t, err)
	assert.True(t, result.Report.Passed(), "stale classification still merges XY9 as NCB")
}

// =============================================================================
// BUCKET VALIDATION WIRING
// =============================================================================

func TestRunDisbursement_BucketReportOnlyForKnownAgents(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline()

	result, err := p.RunDisbursement(ctx, disbursementFixture())
	require.NoError(t, err)
	assert.Nil(t, result.Buckets, "agent 007500 has no bucket configuration")

	resp := recon.DisbursementResponse{
		StandardResponse: okStatus(),
		OverridesPayee: &recon.OverridesPayee{
			ProgramAgentCode: "001601",
			ProductTypes: []recon.PayeeProduct{{
				ProductType: "LIFE", ProductCode: "L1",
				Commission: []recon.CommissionEntry{
					{PayeeCode: "AB1", AgentBucket: 15, Amount: recon.NewAmount(10)},
				},
			}},
		},
	}
	result, err = p.RunDisbursement(ctx, resp)
	require.NoError(t, err)
	require.NotNil(t, result.Buckets)
	assert.True(t, result.Buckets.Passed)
}
