package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/anomaly"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apiclient"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/checklist"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/repository"
)

// fakeAPI records every upstream call in order
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	nextCategoryID int
	created        []checklist.Payload
	links          []apiclient.CompanyLink
	answers        []models.Answer
	summaries      []models.ChecklistSummary
	filters        []apiclient.ChecklistFilter
	employees      []models.NewEmployee
	companies      []models.Company
	resolution     *anomaly.Record

	failOn      map[string]error
	createBlock chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextCategoryID: 100, failOn: map[string]error{}}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	for prefix, err := range f.failOn {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			return err
		}
	}
	return nil
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) FindAnomalyResolution(_ context.Context, answerID string) (*anomaly.Record, error) {
	if err := f.record("find_anomaly " + answerID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resolution == nil {
		return nil, apperr.NotFound("no anomaly resolution for answer %s", answerID)
	}
	rec := *f.resolution
	return &rec, nil
}

func (f *fakeAPI) UpdateAnomalyResolution(_ context.Context, id string, status anomaly.Status, reviewerID string) error {
	if err := f.record(fmt.Sprintf("update_anomaly %s %s %s", id, status, reviewerID)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolution.Status = status
	f.resolution.ResolvedByEmployeeID = reviewerID
	return nil
}

func (f *fakeAPI) ListCategories(context.Context) ([]models.Category, error) {
	return []models.Category{{ID: "1", Name: "Safety"}}, f.record("list_categories")
}

func (f *fakeAPI) CreateCategory(_ context.Context, name string) (models.Category, error) {
	if err := f.record("create_category " + name); err != nil {
		return models.Category{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCategoryID++
	return models.Category{ID: models.ID(fmt.Sprint(f.nextCategoryID)), Name: name}, nil
}

func (f *fakeAPI) CreateChecklist(_ context.Context, payload checklist.Payload) (models.CreatedChecklist, error) {
	if f.createBlock != nil {
		<-f.createBlock
	}
	if err := f.record("create_checklist " + payload.Name); err != nil {
		return models.CreatedChecklist{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, payload)
	return models.CreatedChecklist{ID: "77", Name: payload.Name}, nil
}

func (f *fakeAPI) ListChecklists(_ context.Context, filter apiclient.ChecklistFilter) ([]models.ChecklistSummary, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	f.mu.Unlock()
	return f.summaries, f.record("list_checklists")
}

func (f *fakeAPI) ListChecklistsByEmployee(_ context.Context, employeeID string) ([]models.ChecklistSummary, error) {
	return f.summaries, f.record("list_checklists_by_employee " + employeeID)
}

func (f *fakeAPI) RemoveChecklist(_ context.Context, id string) error {
	return f.record("remove_checklist " + id)
}

func (f *fakeAPI) UpdateChecklistExpiry(_ context.Context, checklistID string, expiresAt time.Time) error {
	return f.record("update_expiry " + checklistID + " " + expiresAt.UTC().Format(time.RFC3339))
}

func (f *fakeAPI) UpdateChecklistCompany(_ context.Context, checklistID string, companyID int) error {
	return f.record(fmt.Sprintf("update_company %s %d", checklistID, companyID))
}

func (f *fakeAPI) ConnectChecklistToCompanies(_ context.Context, links []apiclient.CompanyLink) error {
	f.mu.Lock()
	f.links = append(f.links, links...)
	f.mu.Unlock()
	return f.record(fmt.Sprintf("connect_companies %d", len(links)))
}

func (f *fakeAPI) ConnectEmployeeToChecklist(_ context.Context, checklistID, employeeID string) error {
	return f.record("connect_employee " + checklistID + " " + employeeID)
}

func (f *fakeAPI) ListAnswersWithChecklist(context.Context) ([]models.Answer, error) {
	return f.answers, f.record("list_answers")
}

func (f *fakeAPI) ListCompanies(context.Context) ([]models.Company, error) {
	return f.companies, f.record("list_companies")
}

func (f *fakeAPI) CreateCompany(_ context.Context, company models.Company) (models.Company, error) {
	if err := f.record("create_company " + company.Name); err != nil {
		return models.Company{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	company.ID = 9
	f.companies = append(f.companies, company)
	return company, nil
}

func (f *fakeAPI) GetCompany(_ context.Context, id int) (models.Company, error) {
	if err := f.record(fmt.Sprintf("get_company %d", id)); err != nil {
		return models.Company{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.companies {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Company{}, apperr.NotFound("company %d not found", id)
}

func (f *fakeAPI) UpdateCompany(_ context.Context, company models.Company) error {
	if err := f.record(fmt.Sprintf("update_company %d %s", company.ID, company.Name)); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.companies {
		if c.ID == company.ID {
			f.companies[i] = company
			return nil
		}
	}
	return apperr.NotFound("company %d not found", company.ID)
}

func (f *fakeAPI) ListRoles(context.Context) ([]models.Role, error) {
	return []models.Role{{ID: "1", Name: "admin"}}, f.record("list_roles")
}

func (f *fakeAPI) ListEmployees(_ context.Context, page, limit int) ([]models.Employee, error) {
	if err := f.record(fmt.Sprintf("list_employees %d %d", page, limit)); err != nil {
		return nil, err
	}
	out := make([]models.Employee, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, models.Employee{ID: models.ID(fmt.Sprint(i + 1))})
	}
	return out, nil
}

func (f *fakeAPI) CreateEmployee(_ context.Context, e models.NewEmployee) (models.Employee, error) {
	if err := f.record("create_employee " + e.Email); err != nil {
		return models.Employee{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.employees = append(f.employees, e)
	return models.Employee{ID: "5", Name: e.Name, Email: e.Email, Phone: e.Phone, CompanyID: e.CompanyID}, nil
}

func (f *fakeAPI) RemoveEmployee(_ context.Context, id string) error {
	return f.record("remove_employee " + id)
}

type memDrafts struct {
	mu     sync.Mutex
	drafts map[string]models.DraftRecord
	saves  int
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: map[string]models.DraftRecord{}}
}

func (m *memDrafts) Save(_ context.Context, d *models.DraftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.drafts[d.ID]; ok && existing.OwnerID != d.OwnerID {
		return repository.ErrDraftNotFound
	}
	m.drafts[d.ID] = *d
	m.saves++
	return nil
}

func (m *memDrafts) Get(_ context.Context, ownerID, id string) (*models.DraftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok || d.OwnerID != ownerID {
		return nil, repository.ErrDraftNotFound
	}
	return &d, nil
}

func (m *memDrafts) ListByOwner(_ context.Context, ownerID string) ([]models.DraftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.DraftRecord
	for _, d := range m.drafts {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDrafts) Delete(_ context.Context, ownerID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[id]
	if !ok || d.OwnerID != ownerID {
		return repository.ErrDraftNotFound
	}
	delete(m.drafts, id)
	return nil
}

// uuidDrafts fails on malformed ids the way a UUID column does
type uuidDrafts struct {
	*memDrafts
	lookups int
}

func (d *uuidDrafts) check(id string) error {
	d.mu.Lock()
	d.lookups++
	d.mu.Unlock()
	if _, err := uuid.Parse(id); err != nil {
		return errors.New(`pq: invalid input syntax for type uuid: "` + id + `"`)
	}
	return nil
}

func (d *uuidDrafts) Get(ctx context.Context, ownerID, id string) (*models.DraftRecord, error) {
	if err := d.check(id); err != nil {
		return nil, err
	}
	return d.memDrafts.Get(ctx, ownerID, id)
}

func (d *uuidDrafts) Delete(ctx context.Context, ownerID, id string) error {
	if err := d.check(id); err != nil {
		return err
	}
	return d.memDrafts.Delete(ctx, ownerID, id)
}

type memAudit struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (m *memAudit) Create(_ context.Context, log *models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	log.ID = uint(len(m.logs) + 1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memAudit) List(_ context.Context, userID string, limit, offset int) ([]models.AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AuditLog
	for _, l := range m.logs {
		if userID == "" || l.UserID == userID {
			out = append(out, l)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memAudit) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, l := range m.logs {
		out = append(out, l.Action)
	}
	return out
}

type countingRecorder struct {
	mu          sync.Mutex
	submissions map[bool]int
	transitions map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{submissions: map[bool]int{}, transitions: map[string]int{}}
}

func (r *countingRecorder) Submission(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions[ok]++
}

func (r *countingRecorder) AnomalyTransition(status string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions[fmt.Sprintf("%s/%t", status, ok)]++
}

func testCaller(api Upstream) Caller {
	return Caller{UserID: "u-1", Email: "u-1@storaze.test", Role: "admin", API: api}
}
