package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/checklist"
)

// ID is an upstream identifier. The API returns some ids as numbers and some
// as strings; both decode into ID.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Int returns the id as an integer, for endpoints that expect numbers
func (id ID) Int() (int, error) {
	return strconv.Atoi(string(id))
}

// TokenPair is the upstream login and refresh response
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Category is an upstream question category
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Company represents a client company
type Company struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	CNPJ     string `json:"cnpj"`
	Email    string `json:"email"`
	IsActive bool   `json:"isActive"`
}

// Role is an employee access level
type Role struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Employee represents an employee as listed upstream
type Employee struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	CompanyID   int    `json:"company_id"`
	CompanyName string `json:"company_name,omitempty"`
	RoleID      ID     `json:"role_id,omitempty"`
	RoleName    string `json:"role_name,omitempty"`
}

// NewEmployee is the create-employee request body
type NewEmployee struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	CompanyID int    `json:"company_id"`
	RoleID    string `json:"roleId,omitempty"`
}

// ChecklistSummary is one row of the paginated checklist listing
type ChecklistSummary struct {
	ID           ID     `json:"checklistItemId"`
	Name         string `json:"checklistName"`
	CompanyName  string `json:"companyName,omitempty"`
	CategoryID   ID     `json:"categories_id,omitempty"`
	HasAnomalies bool   `json:"hasAnomalies"`
}

// CreatedChecklist is the upstream response to a checklist creation
type CreatedChecklist struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Answer is a read-only projection of a submitted answer
type Answer struct {
	ID            ID        `json:"id"`
	QuestionID    ID        `json:"question_id"`
	EmployeeID    ID        `json:"employee_id"`
	CompanyID     ID        `json:"company_id,omitempty"`
	Question      string    `json:"question,omitempty"`
	Value         string    `json:"answer,omitempty"`
	HasAnomaly    bool      `json:"hasAnomaly"`
	ChecklistName string    `json:"checklistName,omitempty"`
	CompanyName   string    `json:"CompanyName,omitempty"`
	EmployeeName  string    `json:"EmployeeName,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ResponseRow is one answered checklist as shown in the responses table
type ResponseRow struct {
	AnswerID      ID        `json:"id"`
	ChecklistName string    `json:"checklist_name"`
	CompanyName   string    `json:"company_name"`
	EmployeeName  string    `json:"employee_name"`
	HasAnomaly    bool      `json:"has_anomaly"`
	CreatedAt     time.Time `json:"created_at"`
}

// Page is a page of results. There is no total count upstream;
// HasNext is inferred from a full page.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasNext bool `json:"has_next"`
}

// DashboardSession represents a logged-in dashboard user. Tokens are held in
// plain text only in memory; the repository seals them at rest.
type DashboardSession struct {
	ID             string    `json:"id" db:"id"`
	UserID         string    `json:"user_id" db:"user_id"`
	Email          string    `json:"email" db:"email"`
	Role           string    `json:"role" db:"role"`
	CompanyID      string    `json:"company_id,omitempty" db:"company_id"`
	AccessToken    string    `json:"-" db:"access_token"`
	RefreshToken   string    `json:"-" db:"refresh_token"`
	ExpiresAt      time.Time `json:"expires_at" db:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at" db:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	IPAddress      string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent      string    `json:"user_agent,omitempty" db:"user_agent"`
}

// DraftRecord is a persisted checklist draft
type DraftRecord struct {
	ID        string              `json:"id" db:"id"`
	OwnerID   string              `json:"owner_id" db:"owner_id"`
	Checklist checklist.Checklist `json:"checklist" db:"snapshot"`
	CreatedAt time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt time.Time           `json:"updated_at" db:"updated_at"`
}

// AuditLog represents an audit log entry
type AuditLog struct {
	ID        uint      `json:"id" db:"id"`
	UserID    string    `json:"user_id,omitempty" db:"user_id"`
	Email     string    `json:"email,omitempty" db:"email"`
	Action    string    `json:"action" db:"action"`
	Resource  string    `json:"resource" db:"resource"`
	Details   string    `json:"details,omitempty" db:"details"`
	IPAddress string    `json:"ip_address,omitempty" db:"ip_address"`
	UserAgent string    `json:"user_agent,omitempty" db:"user_agent"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
