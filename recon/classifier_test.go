package recon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func okStatus() StandardResponse {
	return StandardResponse{Status: true, ResponseCode: 200}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

func TestClassifyPayees_NormalizesCodes(t *testing.T) {
	// GIVEN: a payee with surrounding whitespace and lower case
	// WHEN: classifying
	// THEN: the map is keyed by the trimmed, upper-cased code

	resp := ChargebackResponse{
		StandardResponse: okStatus(),
		ChargebackPayees: []ChargebackPayee{{PayeeCode: " ab1 ", IsNCB: true}},
	}

	cls, err := ClassifyPayees(resp)
	require.NoError(t, err)
	assert.Equal(t, PayeeClassification{"AB1": NCB}, cls)
}

func TestClassifyPayees_EveryPayeeGetsExactlyOneClass(t *testing.T) {
	resp := ChargebackResponse{
		StandardResponse: okStatus(),
		ChargebackPayees: []ChargebackPayee{
			{PayeeCode: "AB1", IsNCB: true},
			{PayeeCode: "cd2", IsNCB: false},
			{PayeeCode: ""},
		},
	}

	cls, err := ClassifyPayees(resp)
	require.NoError(t, err)
	assert.Len(t, cls, 3)
	assert.Equal(t, NCB, cls["AB1"])
	assert.Equal(t, Normal, cls["CD2"])
	assert.Equal(t, Normal, cls[""], "missing code classifies under the empty string")
}

func TestClassifyPayees_DuplicateCodeLastWriteWins(t *testing.T) {
	resp := ChargebackResponse{
		StandardResponse: okStatus(),
		ChargebackPayees: []ChargebackPayee{
			{PayeeCode: "AB1", IsNCB: true},
			{PayeeCode: " ab1", IsNCB: false},
		},
	}

	cls, err := ClassifyPayees(resp)
	require.NoError(t, err)
	assert.Equal(t, PayeeClassification{"AB1": Normal}, cls)
}

func TestClassifyPayees_StatusGate(t *testing.T) {
	cases := []struct {
		name string
		sr   StandardResponse
	}{
		{"status false", StandardResponse{Status: false, ResponseCode: 200}},
		{"bad response code", StandardResponse{Status: true, ResponseCode: 500}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := ChargebackResponse{
				StandardResponse: tc.sr,
				ChargebackPayees: []ChargebackPayee{{PayeeCode: "AB1", IsNCB: true}},
			}
			cls, err := ClassifyPayees(resp)
			assert.Nil(t, cls)
			assert.True(t, errors.Is(err, ErrAPIStatus))

			var statusErr *ApiStatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, tc.sr.ResponseCode, statusErr.ResponseCode)
		})
	}
}

func TestClassifyPayees_EmptyListIsWarning(t *testing.T) {
	resp := ChargebackResponse{StandardResponse: okStatus()}
	cls, err := ClassifyPayees(resp)
	assert.Nil(t, cls)
	assert.True(t, IsNoData(err))
}

// =============================================================================
// NCB LOOKUP
// =============================================================================

func TestPayeeClassification_IsNCB(t *testing.T) {
	cls := PayeeClassification{"AB1": NCB, "CD2": Normal}

	assert.True(t, cls.IsNCB("AB1"))
	assert.True(t, cls.IsNCB(" ab1 "), "lookup is case/whitespace normalized")
	assert.False(t, cls.IsNCB("CD2"))
	assert.False(t, cls.IsNCB("ZZ9"), "unknown payee defaults to NORMAL")
	assert.True(t, cls.IsNCB("ZZ9_NCB"), "raw code containing NCB is NCB regardless of the map")
}
