package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/checklist"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

// ChecklistFilter selects a page of checklists. Page is 1-based.
type ChecklistFilter struct {
	Page      int
	Limit     int
	CompanyID int
}

func (c *Client) CreateChecklist(ctx context.Context, payload checklist.Payload) (models.CreatedChecklist, error) {
	var created models.CreatedChecklist
	err := c.do(ctx, call{
		op:     "create_checklist",
		method: http.MethodPost,
		path:   "/checklists",
		body:   payload,
		out:    &created,
	})
	return created, err
}

// ListChecklists returns one page; the API reports no total count
func (c *Client) ListChecklists(ctx context.Context, f ChecklistFilter) ([]models.ChecklistSummary, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(f.Page))
	q.Set("limit", strconv.Itoa(f.Limit))
	if f.CompanyID > 0 {
		q.Set("companyId", strconv.Itoa(f.CompanyID))
	}

	items := []models.ChecklistSummary{}
	err := c.do(ctx, call{
		op:     "list_checklists",
		method: http.MethodGet,
		path:   "/checklists/paginated",
		query:  q,
		out:    &items,
	})
	return items, err
}

func (c *Client) ListChecklistsByEmployee(ctx context.Context, employeeID string) ([]models.ChecklistSummary, error) {
	items := []models.ChecklistSummary{}
	err := c.do(ctx, call{
		op:     "list_checklists_by_employee",
		method: http.MethodGet,
		path:   "/checklists/employee",
		query:  url.Values{"employeeId": {employeeID}},
		out:    &items,
	})
	return items, err
}

func (c *Client) RemoveChecklist(ctx context.Context, id string) error {
	return c.do(ctx, call{
		op:     "remove_checklist",
		method: http.MethodDelete,
		path:   "/checklists/" + url.PathEscape(id),
	})
}

// UpdateChecklistExpiry sets the checklist expiry; images expire at the same time
func (c *Client) UpdateChecklistExpiry(ctx context.Context, checklistID string, expiresAt time.Time) error {
	ts := expiresAt.UTC().Format(time.RFC3339)
	return c.do(ctx, call{
		op:     "update_checklist_expiry",
		method: http.MethodPatch,
		path:   "/checklists/expiries-time",
		body: map[string]string{
			"checkListId":        checklistID,
			"expiriesTime":       ts,
			"imagesExpiriesTime": ts,
		},
	})
}

// UpdateChecklistCompany moves a checklist item to another company
func (c *Client) UpdateChecklistCompany(ctx context.Context, checklistID string, companyID int) error {
	return c.do(ctx, call{
		op:     "update_checklist_company",
		method: http.MethodPatch,
		path:   "/checklists/company",
		body: map[string]any{
			"companyId":       companyID,
			"checkListItemId": checklistID,
		},
	})
}

// CompanyLink attaches a checklist to a company
type CompanyLink struct {
	CompanyID   int    `json:"companyId"`
	ChecklistID string `json:"checklistId"`
}

func (c *Client) ConnectChecklistToCompanies(ctx context.Context, links []CompanyLink) error {
	if len(links) == 0 {
		return nil
	}
	return c.do(ctx, call{
		op:     "connect_checklist_companies",
		method: http.MethodPost,
		path:   "/checklists/connect-company",
		body:   links,
	})
}

func (c *Client) ConnectEmployeeToChecklist(ctx context.Context, checklistID, employeeID string) error {
	return c.do(ctx, call{
		op:     "connect_employee_checklist",
		method: http.MethodPost,
		path:   "/checklists/connect-employee",
		body: map[string]string{
			"checklistId": checklistID,
			"employee_id": employeeID,
		},
	})
}
