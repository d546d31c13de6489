/*
Package state defines the named key-value store shared by the pipeline
stages.

PURPOSE:
  Stage 1 persists the payee classification, stage 2 the expectation map,
  stage 3 the merged disbursement map. Values are serialized JSON strings;
  writes are full overwrites with last-writer-wins semantics and no
  transactional guarantees across stages. Readers must tolerate absence
  (treated as an empty map by the codecs in codec.go).

IMPLEMENTATIONS:
  - state.Memory (memory.go): in-memory, for tests and dev
  - store/sqlite:             durable, for the server

SEE ALSO:
  - codec.go: map <-> JSON string codecs
  - pipeline: the only writer
*/
package state

import "context"

// Persisted state names. Each is fully overwritten on every successful
// run of its producing stage.
const (
	KeyChargebackData   = "chargebackData"
	KeyOverrideData     = "overrideData"
	KeyDisbursementData = "DisbursementData"
)

// Store persists named string values between pipeline stages.
type Store interface {
	// Get returns the value stored under name. The second result is false
	// when the name has never been written.
	Get(ctx context.Context, name string) (string, bool, error)

	// Set overwrites the value stored under name. Last writer wins.
	Set(ctx context.Context, name string, value string) error
}
