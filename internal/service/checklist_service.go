package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apiclient"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/checklist"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/repository"
)

// DraftStore persists drafts between requests
type DraftStore interface {
	Save(ctx context.Context, draft *models.DraftRecord) error
	Get(ctx context.Context, ownerID, id string) (*models.DraftRecord, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.DraftRecord, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// SubmitResult reports a created checklist. Incomplete names the follow-up
// steps that failed after the checklist itself was created.
type SubmitResult struct {
	Checklist  models.CreatedChecklist `json:"checklist"`
	Incomplete []string                `json:"incomplete,omitempty"`
}

// workspace is one draft being edited. Edits and submission of the same draft
// are serialized by mu.
type workspace struct {
	mu         sync.Mutex
	ownerID    string
	id         string
	createdAt  time.Time
	draft      *checklist.Draft
	submitting bool

	lastUsed time.Time // guarded by ChecklistService.mu
}

func (w *workspace) record() *models.DraftRecord {
	return &models.DraftRecord{
		ID:        w.id,
		OwnerID:   w.ownerID,
		Checklist: w.draft.Snapshot(),
		CreatedAt: w.createdAt,
	}
}

// ChecklistService manages checklist drafts and the checklists they become
type ChecklistService struct {
	drafts   DraftStore
	audit    *AuditService
	recorder Recorder

	mu         sync.Mutex
	workspaces map[string]*workspace
	now        func() time.Time
}

// NewChecklistService creates a new checklist service
func NewChecklistService(drafts DraftStore, audit *AuditService, recorder Recorder) *ChecklistService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ChecklistService{
		drafts:     drafts,
		audit:      audit,
		recorder:   recorder,
		workspaces: make(map[string]*workspace),
		now:        time.Now,
	}
}

// CreateDraft opens a new empty draft for the caller
func (s *ChecklistService) CreateDraft(ctx context.Context, c Caller) (*models.DraftRecord, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}

	ws := &workspace{
		ownerID:   c.UserID,
		id:        uuid.NewString(),
		createdAt: time.Now(),
		draft:     checklist.New(),
	}
	rec := ws.record()
	if err := s.drafts.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	s.mu.Lock()
	ws.lastUsed = s.now()
	s.workspaces[ws.id] = ws
	s.mu.Unlock()
	return rec, nil
}

// ListDrafts returns the caller's saved drafts
func (s *ChecklistService) ListDrafts(ctx context.Context, c Caller) ([]models.DraftRecord, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	drafts, err := s.drafts.ListByOwner(ctx, c.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	return drafts, nil
}

// GetDraft returns the current snapshot of a draft
func (s *ChecklistService) GetDraft(ctx context.Context, c Caller, id string) (*models.DraftRecord, error) {
	ws, err := s.workspace(ctx, c, id)
	if err != nil {
		return nil, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.record(), nil
}

// DeleteDraft discards a draft
func (s *ChecklistService) DeleteDraft(ctx context.Context, c Caller, id string) error {
	if err := c.valid(); err != nil {
		return err
	}
	if err := checkDraftID(id); err != nil {
		return err
	}
	if err := s.drafts.Delete(ctx, c.UserID, id); err != nil {
		if errors.Is(err, repository.ErrDraftNotFound) {
			return apperr.NotFound("draft %s not found", id)
		}
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	s.mu.Lock()
	delete(s.workspaces, id)
	s.mu.Unlock()
	return nil
}

// Apply runs one edit command against a draft and persists the result. A
// rejected command leaves the draft unchanged.
func (s *ChecklistService) Apply(ctx context.Context, c Caller, id string, cmd checklist.Command) (checklist.Result, *models.DraftRecord, error) {
	ws, err := s.workspace(ctx, c, id)
	if err != nil {
		return checklist.Result{}, nil, err
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.submitting {
		return checklist.Result{}, nil, apperr.Validation("draft is being submitted")
	}

	res, err := ws.draft.Apply(cmd)
	if err != nil {
		return checklist.Result{}, nil, err
	}
	rec := ws.record()
	if err := s.drafts.Save(ctx, rec); err != nil {
		return checklist.Result{}, nil, fmt.Errorf("failed to save draft: %w", err)
	}
	return res, rec, nil
}

// Payload previews the body that submission would send
func (s *ChecklistService) Payload(ctx context.Context, c Caller, id string) (checklist.Payload, error) {
	ws, err := s.workspace(ctx, c, id)
	if err != nil {
		return checklist.Payload{}, err
	}
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.draft.ToSubmissionPayload()
}

// Submit creates the checklist upstream. The payload is validated before any
// network call. Categories without a reference are created by name first and
// each returned id is used in the payload. Once the checklist exists its
// expiry, companies and employees are applied in that order against the new
// id and the draft is reset.
func (s *ChecklistService) Submit(ctx context.Context, c Caller, id string) (*SubmitResult, error) {
	ws, err := s.workspace(ctx, c, id)
	if err != nil {
		return nil, err
	}

	ws.mu.Lock()
	if ws.submitting {
		ws.mu.Unlock()
		return nil, apperr.Validation("a submission for this draft is already in progress")
	}
	payload, err := ws.draft.ToSubmissionPayload()
	if err != nil {
		ws.mu.Unlock()
		return nil, err
	}
	pending := payload.UnresolvedCategories()
	for _, name := range pending {
		if name == "" {
			ws.mu.Unlock()
			return nil, apperr.Validation("every category needs a name or an existing category")
		}
	}
	companyIDs := ws.draft.CompanyIDs()
	employeeIDs := ws.draft.EmployeeIDs()
	ws.submitting = true
	ws.mu.Unlock()

	defer func() {
		ws.mu.Lock()
		ws.submitting = false
		ws.mu.Unlock()
	}()

	for _, name := range pending {
		cat, err := c.API.CreateCategory(ctx, name)
		if err != nil {
			s.recorder.Submission(false)
			s.persist(ctx, ws)
			return nil, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		ref := cat.ID.String()
		for i := range payload.QuestionList {
			q := &payload.QuestionList[i]
			if q.CategoryID == "" && q.CategoryName == name {
				q.CategoryID = ref
			}
		}
		// keep the reference so a failed submit does not create it twice
		ws.mu.Lock()
		ws.draft.ResolveCategoryName(name, ref)
		ws.mu.Unlock()
		s.audit.Log(ctx, c, ActionCategoryCreate, "category:"+ref, name)
	}

	created, err := c.API.CreateChecklist(ctx, payload)
	if err != nil {
		s.recorder.Submission(false)
		s.persist(ctx, ws)
		return nil, fmt.Errorf("failed to create checklist: %w", err)
	}
	checklistID := created.ID.String()
	result := &SubmitResult{Checklist: created}

	if payload.ExpiresAt != nil {
		if err := c.API.UpdateChecklistExpiry(ctx, checklistID, *payload.ExpiresAt); err != nil {
			result.Incomplete = append(result.Incomplete, "expiry")
			slog.Warn("Failed to set checklist expiry", "checklist_id", checklistID, "error", err)
		}
	}
	if len(companyIDs) > 0 {
		links := make([]apiclient.CompanyLink, 0, len(companyIDs))
		for _, cid := range companyIDs {
			links = append(links, apiclient.CompanyLink{CompanyID: cid, ChecklistID: checklistID})
		}
		if err := c.API.ConnectChecklistToCompanies(ctx, links); err != nil {
			result.Incomplete = append(result.Incomplete, "companies")
			slog.Warn("Failed to connect checklist to companies", "checklist_id", checklistID, "error", err)
		}
	}
	for _, eid := range employeeIDs {
		if err := c.API.ConnectEmployeeToChecklist(ctx, checklistID, eid); err != nil {
			result.Incomplete = append(result.Incomplete, "employee:"+eid)
			slog.Warn("Failed to connect employee to checklist", "checklist_id", checklistID, "employee_id", eid, "error", err)
		}
	}

	ws.mu.Lock()
	ws.draft.Reset()
	ws.mu.Unlock()
	s.persist(ctx, ws)

	s.recorder.Submission(true)
	s.audit.Log(ctx, c, ActionChecklistSubmit, "checklist:"+checklistID, payload.Name)
	slog.Info("Checklist submitted",
		"checklist_id", checklistID,
		"user_id", c.UserID,
		"questions", len(payload.QuestionList),
		"incomplete", len(result.Incomplete),
	)
	return result, nil
}

// ListChecklists returns one page of checklists, optionally for one company
func (s *ChecklistService) ListChecklists(ctx context.Context, c Caller, page, limit, companyID int) (models.Page[models.ChecklistSummary], error) {
	if err := c.valid(); err != nil {
		return models.Page[models.ChecklistSummary]{}, err
	}
	page, limit, err := normalizePage(page, limit)
	if err != nil {
		return models.Page[models.ChecklistSummary]{}, err
	}
	items, err := c.API.ListChecklists(ctx, apiclient.ChecklistFilter{Page: page, Limit: limit, CompanyID: companyID})
	if err != nil {
		return models.Page[models.ChecklistSummary]{}, fmt.Errorf("failed to list checklists: %w", err)
	}
	return newPage(items, page, limit), nil
}

func (s *ChecklistService) ListByEmployee(ctx context.Context, c Caller, employeeID string) ([]models.ChecklistSummary, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(employeeID) == "" {
		return nil, apperr.Validation("employee id is required")
	}
	return c.API.ListChecklistsByEmployee(ctx, employeeID)
}

func (s *ChecklistService) Remove(ctx context.Context, c Caller, checklistID string) error {
	if err := c.valid(); err != nil {
		return err
	}
	if err := c.API.RemoveChecklist(ctx, checklistID); err != nil {
		return fmt.Errorf("failed to remove checklist: %w", err)
	}
	s.audit.Log(ctx, c, ActionChecklistRemove, "checklist:"+checklistID, "")
	return nil
}

// SetExpiry changes when a checklist and its images expire
func (s *ChecklistService) SetExpiry(ctx context.Context, c Caller, checklistID string, expiresAt time.Time) error {
	if err := c.valid(); err != nil {
		return err
	}
	if expiresAt.IsZero() {
		return apperr.Validation("expiry date is required")
	}
	if err := c.API.UpdateChecklistExpiry(ctx, checklistID, expiresAt); err != nil {
		return fmt.Errorf("failed to update checklist expiry: %w", err)
	}
	s.audit.Log(ctx, c, ActionChecklistSettings, "checklist:"+checklistID, "expiry="+expiresAt.UTC().Format(time.RFC3339))
	return nil
}

// SetCompany moves a checklist to another company
func (s *ChecklistService) SetCompany(ctx context.Context, c Caller, checklistID string, companyID int) error {
	if err := c.valid(); err != nil {
		return err
	}
	if companyID < 1 {
		return apperr.Validation("company id must be at least 1")
	}
	if err := c.API.UpdateChecklistCompany(ctx, checklistID, companyID); err != nil {
		return fmt.Errorf("failed to update checklist company: %w", err)
	}
	s.audit.Log(ctx, c, ActionChecklistSettings, "checklist:"+checklistID, fmt.Sprintf("company=%d", companyID))
	return nil
}

// ConnectCompanies attaches an existing checklist to companies
func (s *ChecklistService) ConnectCompanies(ctx context.Context, c Caller, checklistID string, companyIDs []int) error {
	if err := c.valid(); err != nil {
		return err
	}
	if len(companyIDs) == 0 {
		return apperr.Validation("at least one company is required")
	}
	links := make([]apiclient.CompanyLink, 0, len(companyIDs))
	for _, id := range companyIDs {
		if id < 1 {
			return apperr.Validation("company id must be at least 1")
		}
		links = append(links, apiclient.CompanyLink{CompanyID: id, ChecklistID: checklistID})
	}
	if err := c.API.ConnectChecklistToCompanies(ctx, links); err != nil {
		return fmt.Errorf("failed to connect companies: %w", err)
	}
	return nil
}

// ConnectEmployees assigns an existing checklist to employees, one call each
func (s *ChecklistService) ConnectEmployees(ctx context.Context, c Caller, checklistID string, employeeIDs []string) error {
	if err := c.valid(); err != nil {
		return err
	}
	if len(employeeIDs) == 0 {
		return apperr.Validation("at least one employee is required")
	}
	for _, id := range employeeIDs {
		if err := c.API.ConnectEmployeeToChecklist(ctx, checklistID, id); err != nil {
			return fmt.Errorf("failed to connect employee %s: %w", id, err)
		}
	}
	return nil
}

// workspace returns the live workspace for a draft, loading it from the
// store when this process has not opened it yet
func (s *ChecklistService) workspace(ctx context.Context, c Caller, id string) (*workspace, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	if err := checkDraftID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	ws, ok := s.workspaces[id]
	if ok && ws.ownerID == c.UserID {
		ws.lastUsed = s.now()
	}
	s.mu.Unlock()
	if ok {
		if ws.ownerID != c.UserID {
			return nil, apperr.NotFound("draft %s not found", id)
		}
		return ws, nil
	}

	rec, err := s.drafts.Get(ctx, c.UserID, id)
	if errors.Is(err, repository.ErrDraftNotFound) {
		return nil, apperr.NotFound("draft %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	draft, err := checklist.FromSnapshot(rec.Checklist)
	if err != nil {
		return nil, fmt.Errorf("failed to restore draft %s: %w", id, err)
	}

	ws = &workspace{ownerID: rec.OwnerID, id: rec.ID, createdAt: rec.CreatedAt, draft: draft}
	s.mu.Lock()
	if existing, ok := s.workspaces[id]; ok {
		ws = existing
	} else {
		s.workspaces[id] = ws
	}
	ws.lastUsed = s.now()
	s.mu.Unlock()
	return ws, nil
}

// EvictIdle drops drafts untouched for maxIdle from memory. They stay in the
// store and are reloaded on next use. Drafts being edited or submitted are
// kept.
func (s *ChecklistService) EvictIdle(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, ws := range s.workspaces {
		if ws.lastUsed.After(cutoff) || !ws.mu.TryLock() {
			continue
		}
		busy := ws.submitting
		ws.mu.Unlock()
		if busy {
			continue
		}
		delete(s.workspaces, id)
		evicted++
	}
	return evicted
}

// checkDraftID rejects ids that cannot name a stored draft
func checkDraftID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.NotFound("draft %s not found", id)
	}
	return nil
}

func (s *ChecklistService) persist(ctx context.Context, ws *workspace) {
	ws.mu.Lock()
	rec := ws.record()
	ws.mu.Unlock()
	if err := s.drafts.Save(ctx, rec); err != nil {
		slog.Warn("Failed to save draft", "draft_id", ws.id, "error", err)
	}
}
