package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/checklist"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/service"
)

// ChecklistHandler handles checklist drafts and published checklists
type ChecklistHandler struct {
	checklists *service.ChecklistService
}

// NewChecklistHandler creates a new checklist handler
func NewChecklistHandler(checklists *service.ChecklistService) *ChecklistHandler {
	return &ChecklistHandler{checklists: checklists}
}

// CommandResponse is the outcome of one draft edit
type CommandResponse struct {
	Result checklist.Result    `json:"result"`
	Draft  *models.DraftRecord `json:"draft"`
}

type expiryRequest struct {
	ExpiresAt time.Time `json:"expires_at"`
}

type companyRequest struct {
	CompanyID int `json:"company_id"`
}

type companiesRequest struct {
	CompanyIDs []int `json:"company_ids"`
}

type employeesRequest struct {
	EmployeeIDs []string `json:"employee_ids"`
}

// CreateDraft opens an empty draft
// @Summary Create draft
// @Description Open a draft holding one category with a required text question
// @Tags Drafts
// @Produce json
// @Security SessionAuth
// @Success 201 {object} models.DraftRecord
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /drafts [post]
func (h *ChecklistHandler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	draft, err := h.checklists.CreateDraft(r.Context(), c)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, draft)
}

// ListDrafts lists the caller's drafts
// @Summary List drafts
// @Tags Drafts
// @Produce json
// @Security SessionAuth
// @Success 200 {array} models.DraftRecord
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /drafts [get]
func (h *ChecklistHandler) ListDrafts(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	drafts, err := h.checklists.ListDrafts(r.Context(), c)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	if drafts == nil {
		drafts = []models.DraftRecord{}
	}
	respondWithJSON(w, http.StatusOK, drafts)
}

// GetDraft returns one draft of the caller
// @Summary Get draft
// @Tags Drafts
// @Produce json
// @Security SessionAuth
// @Param id path string true "Draft ID"
// @Success 200 {object} models.DraftRecord
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /drafts/{id} [get]
func (h *ChecklistHandler) GetDraft(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	draft, err := h.checklists.GetDraft(r.Context(), c, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, draft)
}

// DeleteDraft discards a draft
// @Summary Delete draft
// @Tags Drafts
// @Produce json
// @Security SessionAuth
// @Param id path string true "Draft ID"
// @Success 204
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /drafts/{id} [delete]
func (h *ChecklistHandler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	if err := h.checklists.DeleteDraft(r.Context(), c, r.PathValue("id")); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ApplyCommand applies one {"op": ...} edit to a draft
// @Summary Edit draft
// @Tags Drafts
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Draft ID"
// @Param request body object true "Edit command, e.g. {\"op\": \"add_category\"}"
// @Success 200 {object} CommandResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /drafts/{id}/commands [post]
func (h *ChecklistHandler) ApplyCommand(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	cmd, err := checklist.DecodeCommand(body)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	res, draft, err := h.checklists.Apply(r.Context(), c, r.PathValue("id"), cmd)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, CommandResponse{Result: res, Draft: draft})
}

// Payload previews the submission body of a draft
// @Summary Preview submission
// @Tags Drafts
// @Produce json
// @Security SessionAuth
// @Param id path string true "Draft ID"
// @Success 200 {object} checklist.Payload
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /drafts/{id}/payload [get]
func (h *ChecklistHandler) Payload(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	payload, err := h.checklists.Payload(r.Context(), c, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, payload)
}

// Submit publishes a draft as a checklist
// @Summary Submit draft
// @Description Create missing categories upstream, then create the checklist
// @Tags Drafts
// @Produce json
// @Security SessionAuth
// @Param id path string true "Draft ID"
// @Success 201 {object} service.SubmitResult
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /drafts/{id}/submit [post]
func (h *ChecklistHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	result, err := h.checklists.Submit(r.Context(), c, r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, result)
}

// ListChecklists returns a page of checklists, or every checklist assigned to
// ?employee_id= when it is given
// @Summary List checklists
// @Tags Checklists
// @Produce json
// @Security SessionAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param company_id query int false "Company filter"
// @Param employee_id query string false "Employee filter"
// @Success 200 {object} models.Page[models.ChecklistSummary]
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /checklists [get]
func (h *ChecklistHandler) ListChecklists(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		items, err := h.checklists.ListByEmployee(r.Context(), c, employeeID)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		if items == nil {
			items = []models.ChecklistSummary{}
		}
		respondWithJSON(w, http.StatusOK, items)
		return
	}

	page, err := queryInt(r, "page", 0)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	companyID, err := queryInt(r, "company_id", 0)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	result, err := h.checklists.ListChecklists(r.Context(), c, page, limit, companyID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// RemoveChecklist deletes a published checklist
// @Summary Remove checklist
// @Tags Checklists
// @Produce json
// @Security SessionAuth
// @Param id path string true "Checklist ID"
// @Success 204
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /checklists/{id} [delete]
func (h *ChecklistHandler) RemoveChecklist(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	if err := h.checklists.Remove(r.Context(), c, r.PathValue("id")); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetExpiry changes the expiry of a checklist and its images
// @Summary Set checklist expiry
// @Tags Checklists
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Checklist ID"
// @Param request body expiryRequest true "New expiry"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /checklists/{id}/expiry [put]
func (h *ChecklistHandler) SetExpiry(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	var req expiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.checklists.SetExpiry(r.Context(), c, r.PathValue("id"), req.ExpiresAt); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetCompany moves a checklist to another company
// @Summary Set checklist company
// @Tags Checklists
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Checklist ID"
// @Param request body companyRequest true "Target company"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /checklists/{id}/company [put]
func (h *ChecklistHandler) SetCompany(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	var req companyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.checklists.SetCompany(r.Context(), c, r.PathValue("id"), req.CompanyID); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConnectCompanies links a checklist to companies
// @Summary Connect companies
// @Tags Checklists
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Checklist ID"
// @Param request body companiesRequest true "Company IDs"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /checklists/{id}/companies [post]
func (h *ChecklistHandler) ConnectCompanies(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	var req companiesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.checklists.ConnectCompanies(r.Context(), c, r.PathValue("id"), req.CompanyIDs); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConnectEmployees assigns a checklist to employees
// @Summary Connect employees
// @Tags Checklists
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Checklist ID"
// @Param request body employeesRequest true "Employee IDs"
// @Success 204
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Not found"
// @Router /checklists/{id}/employees [post]
func (h *ChecklistHandler) ConnectEmployees(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}
	var req employeesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.checklists.ConnectEmployees(r.Context(), c, r.PathValue("id"), req.EmployeeIDs); err != nil {
		respondWithAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
