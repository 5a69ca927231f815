package service

import (
	"context"
	"log/slog"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

// Audit actions
const (
	ActionLogin             = "auth.login"
	ActionLogout            = "auth.logout"
	ActionChecklistSubmit   = "checklist.submit"
	ActionChecklistRemove   = "checklist.remove"
	ActionChecklistSettings = "checklist.settings"
	ActionAnomalyTransition = "anomaly.transition"
	ActionCompanyCreate     = "company.create"
	ActionCompanyUpdate     = "company.update"
	ActionEmployeeCreate    = "employee.create"
	ActionEmployeeRemove    = "employee.remove"
	ActionCategoryCreate    = "category.create"
)

// AuditStore persists audit entries
type AuditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
	List(ctx context.Context, userID string, limit, offset int) ([]models.AuditLog, error)
}

// AuditService handles audit logging
type AuditService struct {
	auditRepo AuditStore
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo AuditStore) *AuditService {
	return &AuditService{auditRepo: auditRepo}
}

// Log records an action without failing the operation that triggered it
func (s *AuditService) Log(ctx context.Context, c Caller, action, resource, details string) {
	if s == nil {
		return
	}
	err := s.auditRepo.Create(ctx, &models.AuditLog{
		UserID:    c.UserID,
		Email:     c.Email,
		Action:    action,
		Resource:  resource,
		Details:   details,
		IPAddress: c.IPAddress,
		UserAgent: c.UserAgent,
	})
	if err != nil {
		slog.Warn("Failed to write audit log", "action", action, "resource", resource, "error", err)
	}
}

// List returns one page of audit entries, optionally for a single user
func (s *AuditService) List(ctx context.Context, userID string, page, limit int) (models.Page[models.AuditLog], error) {
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return models.Page[models.AuditLog]{}, err
	}
	logs, err := s.auditRepo.List(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return models.Page[models.AuditLog]{}, err
	}
	return newPage(logs, page, limit), nil
}
