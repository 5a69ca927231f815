package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

// ErrEmailConflict is returned when an employee email is already registered
var ErrEmailConflict = &apperr.Error{Kind: apperr.KindConflict, Message: "email already registered"}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	items := []models.Category{}
	err := c.do(ctx, call{op: "list_categories", method: http.MethodGet, path: "/categories/list", out: &items})
	return items, err
}

func (c *Client) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	var created models.Category
	err := c.do(ctx, call{
		op:     "create_category",
		method: http.MethodPost,
		path:   "/categories",
		body:   map[string]string{"name": name},
		out:    &created,
	})
	if err == nil && created.ID == "" {
		return created, apperr.Transient("create category response carried no id", nil)
	}
	return created, err
}

func (c *Client) ListCompanies(ctx context.Context) ([]models.Company, error) {
	items := []models.Company{}
	err := c.do(ctx, call{op: "list_companies", method: http.MethodGet, path: "/companies", out: &items})
	return items, err
}

func (c *Client) CreateCompany(ctx context.Context, company models.Company) (models.Company, error) {
	var created models.Company
	err := c.do(ctx, call{
		op:     "create_company",
		method: http.MethodPost,
		path:   "/companies",
		body: map[string]any{
			"name":     company.Name,
			"cnpj":     company.CNPJ,
			"email":    company.Email,
			"isActive": company.IsActive,
		},
		out: &created,
	})
	return created, err
}

func (c *Client) GetCompany(ctx context.Context, id int) (models.Company, error) {
	var company models.Company
	err := c.do(ctx, call{
		op:     "get_company",
		method: http.MethodGet,
		path:   "/companies/" + strconv.Itoa(id),
		out:    &company,
	})
	return company, err
}

// UpdateCompany replaces the editable fields of an existing company
func (c *Client) UpdateCompany(ctx context.Context, company models.Company) error {
	return c.do(ctx, call{
		op:     "update_company",
		method: http.MethodPatch,
		path:   "/companies",
		body: map[string]any{
			"id":       company.ID,
			"name":     company.Name,
			"cnpj":     company.CNPJ,
			"email":    company.Email,
			"isActive": company.IsActive,
		},
	})
}

func (c *Client) ListRoles(ctx context.Context) ([]models.Role, error) {
	items := []models.Role{}
	err := c.do(ctx, call{op: "list_roles", method: http.MethodGet, path: "/roles/list", out: &items})
	return items, err
}

// ListEmployees returns one page of employees. Page is 1-based.
func (c *Client) ListEmployees(ctx context.Context, page, limit int) ([]models.Employee, error) {
	items := []models.Employee{}
	err := c.do(ctx, call{
		op:     "list_employees",
		method: http.MethodGet,
		path:   "/employees/list",
		query:  url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}},
		out:    &items,
	})
	return items, err
}

// CreateEmployee registers an employee. A 409 means the email is taken and
// is returned as ErrEmailConflict.
func (c *Client) CreateEmployee(ctx context.Context, e models.NewEmployee) (models.Employee, error) {
	var created models.Employee
	err := c.do(ctx, call{
		op:     "create_employee",
		method: http.MethodPost,
		path:   "/employees",
		body:   e,
		out:    &created,
	})
	if apperr.IsConflict(err) {
		return created, ErrEmailConflict
	}
	return created, err
}

func (c *Client) RemoveEmployee(ctx context.Context, id string) error {
	return c.do(ctx, call{
		op:     "remove_employee",
		method: http.MethodDelete,
		path:   "/employees/" + url.PathEscape(id),
	})
}
