package service

import (
	"context"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/anomaly"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apiclient"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/checklist"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

// Upstream is the part of the REST API the services call. *apiclient.Client
// implements it.
type Upstream interface {
	anomaly.Store

	ListCategories(ctx context.Context) ([]models.Category, error)
	CreateCategory(ctx context.Context, name string) (models.Category, error)

	CreateChecklist(ctx context.Context, payload checklist.Payload) (models.CreatedChecklist, error)
	ListChecklists(ctx context.Context, f apiclient.ChecklistFilter) ([]models.ChecklistSummary, error)
	ListChecklistsByEmployee(ctx context.Context, employeeID string) ([]models.ChecklistSummary, error)
	RemoveChecklist(ctx context.Context, id string) error
	UpdateChecklistExpiry(ctx context.Context, checklistID string, expiresAt time.Time) error
	UpdateChecklistCompany(ctx context.Context, checklistID string, companyID int) error
	ConnectChecklistToCompanies(ctx context.Context, links []apiclient.CompanyLink) error
	ConnectEmployeeToChecklist(ctx context.Context, checklistID, employeeID string) error

	ListAnswersWithChecklist(ctx context.Context) ([]models.Answer, error)

	ListCompanies(ctx context.Context) ([]models.Company, error)
	CreateCompany(ctx context.Context, company models.Company) (models.Company, error)
	GetCompany(ctx context.Context, id int) (models.Company, error)
	UpdateCompany(ctx context.Context, company models.Company) error
	ListRoles(ctx context.Context) ([]models.Role, error)
	ListEmployees(ctx context.Context, page, limit int) ([]models.Employee, error)
	CreateEmployee(ctx context.Context, e models.NewEmployee) (models.Employee, error)
	RemoveEmployee(ctx context.Context, id string) error
}

var _ Upstream = (*apiclient.Client)(nil)

// Caller is the authenticated dashboard user behind a request, with an API
// view that carries their tokens
type Caller struct {
	UserID    string
	Email     string
	Role      string
	IPAddress string
	UserAgent string
	API       Upstream
}

func (c Caller) valid() error {
	if c.UserID == "" || c.API == nil {
		return apperr.AuthExpired(nil)
	}
	return nil
}

// Recorder receives business counters
type Recorder interface {
	Submission(ok bool)
	AnomalyTransition(status string, ok bool)
}

type nopRecorder struct{}

func (nopRecorder) Submission(bool)                {}
func (nopRecorder) AnomalyTransition(string, bool) {}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// normalizePage applies defaults to 1-based paging parameters
func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	if page < 1 {
		return 0, 0, apperr.Validation("page must be at least 1")
	}
	if limit < 1 || limit > maxPageLimit {
		return 0, 0, apperr.Validation("limit must be between 1 and %d", maxPageLimit)
	}
	return page, limit, nil
}

func newPage[T any](items []T, page, limit int) models.Page[T] {
	if items == nil {
		items = []T{}
	}
	return models.Page[T]{Items: items, Page: page, Limit: limit, HasNext: len(items) == limit}
}
