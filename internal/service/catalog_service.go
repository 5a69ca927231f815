package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apiclient"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/pkg/validator"
)

// EmployeeInput is the form for a new employee
type EmployeeInput struct {
	Name      string `json:"name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required,phone"`
	CompanyID int    `json:"company_id" validate:"gte=1"`
	RoleID    string `json:"role_id"`
}

// CompanyInput is the form for a new or edited company. ChecklistIDs are
// connected to the company once it is saved.
type CompanyInput struct {
	Name         string   `json:"name" validate:"required"`
	CNPJ         string   `json:"cnpj" validate:"required,cnpj"`
	Email        string   `json:"email" validate:"required,email"`
	IsActive     bool     `json:"is_active"`
	ChecklistIDs []string `json:"checklist_ids"`
}

// CatalogService manages the reference data checklists are attached to:
// categories, companies, employees and roles
type CatalogService struct {
	audit *AuditService
}

func NewCatalogService(audit *AuditService) *CatalogService {
	return &CatalogService{audit: audit}
}

func (s *CatalogService) ListCategories(ctx context.Context, c Caller) ([]models.Category, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	return c.API.ListCategories(ctx)
}

func (s *CatalogService) CreateCategory(ctx context.Context, c Caller, name string) (models.Category, error) {
	if err := c.valid(); err != nil {
		return models.Category{}, err
	}
	name = validator.SanitizeString(name)
	if err := validator.ValidateRequired("name", name); err != nil {
		return models.Category{}, apperr.Validation("%s", err.Error())
	}
	cat, err := c.API.CreateCategory(ctx, name)
	if err != nil {
		return models.Category{}, fmt.Errorf("failed to create category: %w", err)
	}
	s.audit.Log(ctx, c, ActionCategoryCreate, "category:"+cat.ID.String(), name)
	return cat, nil
}

func (s *CatalogService) ListCompanies(ctx context.Context, c Caller) ([]models.Company, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	return c.API.ListCompanies(ctx)
}

// CreateCompany registers a company and then connects the selected
// checklists to the returned id
func (s *CatalogService) CreateCompany(ctx context.Context, c Caller, in CompanyInput) (models.Company, error) {
	if err := c.valid(); err != nil {
		return models.Company{}, err
	}
	company, err := in.company()
	if err != nil {
		return models.Company{}, err
	}

	company, err = c.API.CreateCompany(ctx, company)
	if err != nil {
		return models.Company{}, fmt.Errorf("failed to create company: %w", err)
	}
	s.audit.Log(ctx, c, ActionCompanyCreate, "company:"+strconv.Itoa(company.ID), company.Name)

	if company.ID > 0 {
		if err := s.connectChecklists(ctx, c, company.ID, in.ChecklistIDs); err != nil {
			return company, fmt.Errorf("company created but connecting checklists failed: %w", err)
		}
	}
	return company, nil
}

func (s *CatalogService) GetCompany(ctx context.Context, c Caller, id int) (models.Company, error) {
	if err := c.valid(); err != nil {
		return models.Company{}, err
	}
	if id < 1 {
		return models.Company{}, apperr.Validation("company id must be at least 1")
	}
	company, err := c.API.GetCompany(ctx, id)
	if err != nil {
		return models.Company{}, fmt.Errorf("failed to load company %d: %w", id, err)
	}
	return company, nil
}

// UpdateCompany edits an existing company and then connects the selected
// checklists to it
func (s *CatalogService) UpdateCompany(ctx context.Context, c Caller, id int, in CompanyInput) (models.Company, error) {
	if err := c.valid(); err != nil {
		return models.Company{}, err
	}
	if id < 1 {
		return models.Company{}, apperr.Validation("company id must be at least 1")
	}
	company, err := in.company()
	if err != nil {
		return models.Company{}, err
	}
	company.ID = id

	if err := c.API.UpdateCompany(ctx, company); err != nil {
		return models.Company{}, fmt.Errorf("failed to update company: %w", err)
	}
	s.audit.Log(ctx, c, ActionCompanyUpdate, "company:"+strconv.Itoa(id), company.Name)

	if err := s.connectChecklists(ctx, c, id, in.ChecklistIDs); err != nil {
		return company, fmt.Errorf("company updated but connecting checklists failed: %w", err)
	}
	return company, nil
}

// company validates the form and returns the upstream shape, CNPJ as digits
func (in CompanyInput) company() (models.Company, error) {
	in.Name = validator.SanitizeString(in.Name)
	in.Email = validator.SanitizeEmail(in.Email)
	if err := validator.ValidateStruct(in); err != nil {
		return models.Company{}, apperr.Validation("%s", err.Error())
	}
	return models.Company{
		Name:     in.Name,
		CNPJ:     validator.DigitsOnly(in.CNPJ),
		Email:    in.Email,
		IsActive: in.IsActive,
	}, nil
}

func (s *CatalogService) connectChecklists(ctx context.Context, c Caller, companyID int, checklistIDs []string) error {
	if len(checklistIDs) == 0 {
		return nil
	}
	links := make([]apiclient.CompanyLink, 0, len(checklistIDs))
	for _, id := range checklistIDs {
		links = append(links, apiclient.CompanyLink{CompanyID: companyID, ChecklistID: id})
	}
	if err := c.API.ConnectChecklistToCompanies(ctx, links); err != nil {
		slog.Warn("Failed to connect checklists to company", "company_id", companyID, "error", err)
		return err
	}
	return nil
}

func (s *CatalogService) ListRoles(ctx context.Context, c Caller) ([]models.Role, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	return c.API.ListRoles(ctx)
}

func (s *CatalogService) ListEmployees(ctx context.Context, c Caller, page, limit int) (models.Page[models.Employee], error) {
	if err := c.valid(); err != nil {
		return models.Page[models.Employee]{}, err
	}
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return models.Page[models.Employee]{}, err
	}
	items, err := c.API.ListEmployees(ctx, page, limit)
	if err != nil {
		return models.Page[models.Employee]{}, fmt.Errorf("failed to list employees: %w", err)
	}
	return newPage(items, page, limit), nil
}

// CreateEmployee validates the form and registers the employee. The phone is
// sent as digits only. A taken email is apiclient.ErrEmailConflict.
func (s *CatalogService) CreateEmployee(ctx context.Context, c Caller, in EmployeeInput) (models.Employee, error) {
	if err := c.valid(); err != nil {
		return models.Employee{}, err
	}
	in.Name = validator.SanitizeString(in.Name)
	in.Email = validator.SanitizeEmail(in.Email)
	if err := validator.ValidateStruct(in); err != nil {
		return models.Employee{}, apperr.Validation("%s", err.Error())
	}

	emp, err := c.API.CreateEmployee(ctx, models.NewEmployee{
		Name:      in.Name,
		Email:     in.Email,
		Phone:     validator.DigitsOnly(in.Phone),
		CompanyID: in.CompanyID,
		RoleID:    in.RoleID,
	})
	if err != nil {
		return models.Employee{}, err
	}
	s.audit.Log(ctx, c, ActionEmployeeCreate, "employee:"+emp.ID.String(), in.Email)
	return emp, nil
}

func (s *CatalogService) RemoveEmployee(ctx context.Context, c Caller, id string) error {
	if err := c.valid(); err != nil {
		return err
	}
	if err := c.API.RemoveEmployee(ctx, id); err != nil {
		return fmt.Errorf("failed to remove employee: %w", err)
	}
	s.audit.Log(ctx, c, ActionEmployeeRemove, "employee:"+id, "")
	return nil
}
