/*
codec.go - JSON codecs for the persisted maps

PURPOSE:
  The store holds strings; the stages work with maps. Encoding is strict
  (a map that cannot be marshaled is a programming error), decoding is
  lenient: an absent or unparsable value decodes to an empty map, per the
  readers-tolerate-absence contract in store.go.

SEE ALSO:
  - store.go: the Store interface and state names
*/
package state

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/warp/recon-engine/recon"
)

// =============================================================================
// CLASSIFICATION CODEC
// =============================================================================

// EncodeClassification serializes a classification map.
func EncodeClassification(cls recon.PayeeClassification) (string, error) {
	data, err := json.Marshal(cls)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeClassification deserializes a classification map. Absent or
// unparsable input yields an empty map.
func DecodeClassification(value string) recon.PayeeClassification {
	out := make(recon.PayeeClassification)
	if value == "" {
		return out
	}
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return make(recon.PayeeClassification)
	}
	return out
}

// =============================================================================
// AMOUNT MAP CODEC
// =============================================================================

// EncodeAmounts serializes a key -> amount map.
func EncodeAmounts(amounts map[string]decimal.Decimal) (string, error) {
	data, err := json.Marshal(amounts)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeAmounts deserializes a key -> amount map. Absent or unparsable
// input yields an empty map.
func DecodeAmounts(value string) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	if value == "" {
		return out
	}
	if err := json.Unmarshal([]byte(value), &out); err != nil {
		return make(map[string]decimal.Decimal)
	}
	return out
}

// =============================================================================
// LOAD HELPERS
// =============================================================================

// LoadClassification reads and decodes the persisted classification,
// tolerating absence.
func LoadClassification(ctx context.Context, store Store) (recon.PayeeClassification, error) {
	value, _, err := store.Get(ctx, KeyChargebackData)
	if err != nil {
		return nil, err
	}
	return DecodeClassification(value), nil
}

// LoadAmounts reads and decodes a persisted amount map, tolerating
// absence.
func LoadAmounts(ctx context.Context, store Store, name string) (map[string]decimal.Decimal, error) {
	value, _, err := store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return DecodeAmounts(value), nil
}
