package handlers

import (
	"net/http"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/service"
)

// AuditHandler handles audit log requests
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// ListAuditLogs lists audit logs with pagination, optionally for one
// ?user_id= (super admins only)
// @Summary List audit logs
// @Tags Admin
// @Produce json
// @Security SessionAuth
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Param user_id query string false "User filter"
// @Success 200 {object} models.Page[models.AuditLog]
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /admin/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
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

	logs, err := h.audit.List(r.Context(), r.URL.Query().Get("user_id"), page, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, logs)
}
