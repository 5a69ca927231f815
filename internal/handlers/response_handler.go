package handlers

import (
	"net/http"
	"strconv"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/anomaly"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/service"
)

// ResponseHandler serves submitted answers and the review of their anomalies
type ResponseHandler struct {
	responses *service.ResponseService
	anomalies *service.AnomalyService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responses *service.ResponseService, anomalies *service.AnomalyService) *ResponseHandler {
	return &ResponseHandler{responses: responses, anomalies: anomalies}
}

// ResolutionResponse wraps a resolution record; Resolution is null when the
// answer has none
type ResolutionResponse struct {
	Resolution *anomaly.Record `json:"resolution"`
	Actionable bool            `json:"actionable"`
}

type transitionRequest struct {
	Status string `json:"status"`
}

// ListResponses lists answered checklists, one row per question and employee.
// ?anomalies=true keeps only rows flagged as anomalous.
// @Summary List responses
// @Tags Responses
// @Produce json
// @Security SessionAuth
// @Param anomalies query bool false "Only anomalous rows"
// @Success 200 {array} models.ResponseRow
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /responses [get]
func (h *ResponseHandler) ListResponses(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	anomaliesOnly := false
	if v := r.URL.Query().Get("anomalies"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "anomalies must be a boolean")
			return
		}
		anomaliesOnly = b
	}

	rows, err := h.responses.List(r.Context(), c, anomaliesOnly)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, rows)
}

// GetResolution returns the anomaly resolution of an answer
// @Summary Get anomaly resolution
// @Tags Responses
// @Produce json
// @Security SessionAuth
// @Param id path string true "Answer ID"
// @Success 200 {object} ResolutionResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /answers/{id}/anomaly [get]
func (h *ResponseHandler) GetResolution(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	rec, err := h.anomalies.Find(r.Context(), c, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ResolutionResponse{
		Resolution: rec,
		Actionable: rec != nil && rec.Actionable(),
	})
}

// Transition resolves or rejects the anomaly of an answer
// @Summary Review anomaly
// @Description Move an anomaly to RESOLVED or REJECTED
// @Tags Responses
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Answer ID"
// @Param request body transitionRequest true "Target status"
// @Success 200 {object} ResolutionResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Conflict"
// @Router /anomalies/{id}/transition [post]
func (h *ResponseHandler) Transition(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	var req transitionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	target, err := anomaly.ParseStatus(req.Status)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	rec, err := h.anomalies.Transition(r.Context(), c, r.PathValue("id"), target)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ResolutionResponse{Resolution: rec, Actionable: rec.Actionable()})
}
