/*
handlers.go - HTTP handlers for the reconciliation pipeline

PURPOSE:
  Exposes the pipeline over REST. Each stage endpoint accepts the parsed
  upstream response as its JSON body, runs the stage, and reports what
  was (or was not) persisted.

ENDPOINTS:
  POST /api/stages/chargeback    Run stage 1 (payee classification)
  POST /api/stages/overrides     Run stage 2 (expected amounts)
  POST /api/stages/disbursement  Run stage 3 (merge + reconcile)
  GET  /api/report               Recompute findings from persisted state
  GET  /api/state/{name}         Raw persisted value
  GET  /api/health               Liveness

ERROR HANDLING:
  - 400: request body does not decode
  - 502: upstream response failed the status gate (ApiStatusError)
  - 500: store/internal failures
  An empty payload (NoDataWarning) is NOT an error: the stage persisted
  nothing and the 200 body says so in the warning field.

SEE ALSO:
  - dto.go: response shapes
  - server.go: router setup and middleware
  - pipeline: the stage runners
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/recon-engine/pipeline"
	"github.com/warp/recon-engine/recon"
	"github.com/warp/recon-engine/state"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Pipeline *pipeline.Pipeline
	State    state.Store
}

// NewHandler creates a handler around a pipeline and its store.
func NewHandler(p *pipeline.Pipeline, store state.Store) *Handler {
	return &Handler{Pipeline: p, State: store}
}

// =============================================================================
// STAGE HANDLERS
// =============================================================================

// RunChargeback runs stage 1 on the posted chargeback response.
func (h *Handler) RunChargeback(w http.ResponseWriter, r *http.Request) {
	var resp recon.ChargebackResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid chargeback payload", err)
		return
	}

	cls, err := h.Pipeline.RunChargeback(r.Context(), resp)
	if handled := h.writeStageOutcome(w, "chargeback", len(cls), err); handled {
		return
	}
	writeJSON(w, http.StatusOK, StageResultDTO{Stage: "chargeback", Persisted: true, Records: len(cls)})
}

// RunOverrides runs stage 2 on the posted dealer overrides response.
func (h *Handler) RunOverrides(w http.ResponseWriter, r *http.Request) {
	var resp recon.OverrideResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid overrides payload", err)
		return
	}

	expected, err := h.Pipeline.RunOverrides(r.Context(), resp)
	if handled := h.writeStageOutcome(w, "overrides", len(expected), err); handled {
		return
	}
	writeJSON(w, http.StatusOK, StageResultDTO{Stage: "overrides", Persisted: true, Records: len(expected)})
}

// RunDisbursement runs stage 3 on the posted disbursement response and
// returns the full reconciliation report.
func (h *Handler) RunDisbursement(w http.ResponseWriter, r *http.Request) {
	var resp recon.DisbursementResponse
	if err := json.NewDecoder(r.Body).Decode(&resp); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid disbursement payload", err)
		return
	}

	result, err := h.Pipeline.RunDisbursement(r.Context(), resp)
	if handled := h.writeStageOutcome(w, "disbursement", 0, err); handled {
		return
	}
	writeJSON(w, http.StatusOK, toDisbursementResultDTO(result))
}

// writeStageOutcome maps a stage error to its HTTP response. Returns true
// when a response was written.
func (h *Handler) writeStageOutcome(w http.ResponseWriter, stage string, records int, err error) bool {
	if err == nil {
		return false
	}
	if recon.IsNoData(err) {
		// Non-fatal: nothing persisted, execution continues.
		writeJSON(w, http.StatusOK, StageResultDTO{Stage: stage, Persisted: false, Records: records, Warning: err.Error()})
		return true
	}
	var statusErr *recon.ApiStatusError
	if errors.As(err, &statusErr) {
		writeError(w, http.StatusBadGateway, "Upstream response failed status check", err)
		return true
	}
	writeError(w, http.StatusInternalServerError, "Stage failed", err)
	return true
}

// =============================================================================
// REPORT & STATE HANDLERS
// =============================================================================

// GetReport recomputes the reconciliation report from persisted state.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Pipeline.Report(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to build report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// GetState returns the raw persisted value for one state name.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	value, found, err := h.State.Get(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read state", err)
		return
	}
	writeJSON(w, http.StatusOK, StateValueDTO{Name: name, Found: found, Value: value})
}

// Health is the liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	dto := ErrorDTO{Error: msg}
	if err != nil {
		dto.Detail = err.Error()
	}
	writeJSON(w, status, dto)
}
