/*
errors.go - Error types for the reconciliation engine

PURPOSE:
  All stage-boundary error kinds in one place.

ERROR CATEGORIES:
  1. ApiStatusError - upstream response indicates failure; the stage
     aborts with no state mutation
  2. NoDataWarning  - the expected list field is absent or empty;
     non-fatal, the stage aborts with no mutation

  Malformed amounts are NOT errors: numeric coercion failure yields zero
  (see Amount in types.go). Reconciliation mismatches are NOT errors
  either: they are findings in a Report so every key is evaluated even
  when some fail (see report.go).

USAGE:
  Callers distinguish the two kinds with errors.Is:

    if errors.Is(err, recon.ErrNoData) {
        // warn and continue
    }

SEE ALSO:
  - report.go: mismatch findings
  - classifier.go, override.go, disburse.go: where these are returned
*/
package recon

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrAPIStatus is returned when standardResponse indicates failure
	// (status false or responseCode != 200).
	ErrAPIStatus = errors.New("api response indicates failure")

	// ErrNoData is returned when the stage's list field is absent or empty.
	// Non-fatal: the stage performs no mutation and execution continues.
	ErrNoData = errors.New("no data in response")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ApiStatusError reports the failing status header.
type ApiStatusError struct {
	Status       bool
	ResponseCode int
}

func (e *ApiStatusError) Error() string {
	return fmt.Sprintf("api status check failed: status=%t responseCode=%d", e.Status, e.ResponseCode)
}

func (e *ApiStatusError) Unwrap() error { return ErrAPIStatus }

// NoDataWarning names the list field that was absent or empty.
type NoDataWarning struct {
	Field string
}

func (e *NoDataWarning) Error() string {
	return fmt.Sprintf("no data: %s absent or empty", e.Field)
}

func (e *NoDataWarning) Unwrap() error { return ErrNoData }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNoData reports whether err is the non-fatal empty-payload warning.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}

// checkStatus gates a stage on the response status header.
func checkStatus(sr StandardResponse) error {
	if !sr.OK() {
		return &ApiStatusError{Status: sr.Status, ResponseCode: sr.ResponseCode}
	}
	return nil
}
