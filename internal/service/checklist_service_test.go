package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/checklist"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

type checklistFixture struct {
	svc      *ChecklistService
	api      *fakeAPI
	drafts   *memDrafts
	audit    *memAudit
	recorder *countingRecorder
	caller   Caller
}

func newChecklistFixture() *checklistFixture {
	f := &checklistFixture{
		api:      newFakeAPI(),
		drafts:   newMemDrafts(),
		audit:    &memAudit{},
		recorder: newCountingRecorder(),
	}
	f.svc = NewChecklistService(f.drafts, NewAuditService(f.audit), f.recorder)
	f.caller = testCaller(f.api)
	return f
}

func (f *checklistFixture) apply(t *testing.T, id string, cmd checklist.Command) checklist.Result {
	t.Helper()
	res, _, err := f.svc.Apply(context.Background(), f.caller, id, cmd)
	require.NoError(t, err)
	return res
}

// buildDraft creates a draft named "Opening" whose default category points
// at an existing one, plus one new category, each holding one question
func (f *checklistFixture) buildDraft(t *testing.T) string {
	t.Helper()
	rec, err := f.svc.CreateDraft(context.Background(), f.caller)
	require.NoError(t, err)
	id := rec.ID

	f.apply(t, id, checklist.SetName{Name: "Opening"})

	existing := rec.Checklist.Categories[0].ID
	f.apply(t, id, checklist.SetCategoryRef{CategoryID: existing, RefID: "1"})
	fresh := f.apply(t, id, checklist.AddCategory{}).CreatedID
	f.apply(t, id, checklist.SetCategoryName{CategoryID: fresh, Name: "Gates"})

	snap, err := f.svc.GetDraft(context.Background(), f.caller, id)
	require.NoError(t, err)
	f.apply(t, id, checklist.SetText{QuestionID: snap.Checklist.Categories[0].Questions[0].ID, Text: "Lights on?"})
	f.apply(t, id, checklist.SetText{QuestionID: snap.Checklist.Categories[1].Questions[0].ID, Text: "Door closed?"})
	return id
}

func TestChecklistService_SubmitSequence(t *testing.T) {
	f := newChecklistFixture()
	id := f.buildDraft(t)

	expiry := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
	f.apply(t, id, checklist.SetExpiry{ExpiresAt: &expiry})
	f.apply(t, id, checklist.SetCompanies{CompanyIDs: []int{4, 2}})
	f.apply(t, id, checklist.SetEmployees{EmployeeIDs: []string{"e-1"}})

	res, err := f.svc.Submit(context.Background(), f.caller, id)
	require.NoError(t, err)
	assert.Equal(t, models.ID("77"), res.Checklist.ID)
	assert.Empty(t, res.Incomplete)

	assert.Equal(t, []string{
		"create_category Gates",
		"create_checklist Opening",
		"update_expiry 77 2026-12-01T00:00:00Z",
		"connect_companies 2",
		"connect_employee 77 e-1",
	}, f.api.callLog())

	require.Len(t, f.api.created, 1)
	q := f.api.created[0].QuestionList
	require.Len(t, q, 2)
	assert.Equal(t, "1", q[0].CategoryID)
	assert.Equal(t, "101", q[1].CategoryID, "new category id used in the payload")

	assert.Equal(t, 2, f.api.links[0].CompanyID)
	assert.Equal(t, "77", f.api.links[0].ChecklistID)

	snap, err := f.svc.GetDraft(context.Background(), f.caller, id)
	require.NoError(t, err)
	assert.Empty(t, snap.Checklist.Name, "draft reset after submission")
	require.Len(t, snap.Checklist.Categories, 1)
	fresh := snap.Checklist.Categories[0]
	assert.Empty(t, fresh.RefID)
	require.Len(t, fresh.Questions, 1)
	assert.Empty(t, fresh.Questions[0].Text)
	assert.True(t, fresh.Questions[0].Required)

	assert.Equal(t, 1, f.recorder.submissions[true])
	assert.Contains(t, f.audit.actions(), ActionChecklistSubmit)
}

func TestChecklistService_SubmitValidationMakesNoCalls(t *testing.T) {
	f := newChecklistFixture()
	rec, err := f.svc.CreateDraft(context.Background(), f.caller)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), f.caller, rec.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, f.api.callLog())
	assert.Zero(t, f.recorder.submissions[false])
}

func TestChecklistService_SubmitUnnamedCategory(t *testing.T) {
	f := newChecklistFixture()
	rec, err := f.svc.CreateDraft(context.Background(), f.caller)
	require.NoError(t, err)
	f.apply(t, rec.ID, checklist.SetName{Name: "Opening"})
	f.apply(t, rec.ID, checklist.SetText{QuestionID: rec.Checklist.Categories[0].Questions[0].ID, Text: "Q"})

	_, err = f.svc.Submit(context.Background(), f.caller, rec.ID)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, f.api.callLog())
}

func TestChecklistService_SubmitFailureKeepsDraft(t *testing.T) {
	f := newChecklistFixture()
	id := f.buildDraft(t)
	f.api.failOn["create_checklist"] = apperr.Transient("upstream down", nil)

	_, err := f.svc.Submit(context.Background(), f.caller, id)
	require.Error(t, err)
	assert.True(t, apperr.IsTransient(err))
	assert.Equal(t, 1, f.recorder.submissions[false])

	snap, err := f.svc.GetDraft(context.Background(), f.caller, id)
	require.NoError(t, err)
	assert.Equal(t, "Opening", snap.Checklist.Name)
	assert.Equal(t, "101", snap.Checklist.Categories[1].RefID, "created category is remembered")

	// the retry does not create the category again
	delete(f.api.failOn, "create_checklist")
	_, err = f.svc.Submit(context.Background(), f.caller, id)
	require.NoError(t, err)
	creates := 0
	for _, c := range f.api.callLog() {
		if c == "create_category Gates" {
			creates++
		}
	}
	assert.Equal(t, 1, creates)
}

func TestChecklistService_FollowUpFailureIsReported(t *testing.T) {
	f := newChecklistFixture()
	id := f.buildDraft(t)
	f.apply(t, id, checklist.SetEmployees{EmployeeIDs: []string{"e-1", "e-2"}})
	f.api.failOn["connect_employee 77 e-1"] = apperr.Transient("boom", nil)

	res, err := f.svc.Submit(context.Background(), f.caller, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"employee:e-1"}, res.Incomplete)
	assert.Contains(t, f.api.callLog(), "connect_employee 77 e-2")
}

func TestChecklistService_ConcurrentSubmitRejected(t *testing.T) {
	f := newChecklistFixture()
	id := f.buildDraft(t)
	f.api.createBlock = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Submit(context.Background(), f.caller, id)
		done <- err
	}()

	require.Eventually(t, func() bool {
		for _, c := range f.api.callLog() {
			if c == "create_category Gates" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	_, err := f.svc.Submit(context.Background(), f.caller, id)
	assert.True(t, apperr.IsValidation(err))
	_, _, err = f.svc.Apply(context.Background(), f.caller, id, checklist.SetName{Name: "x"})
	assert.True(t, apperr.IsValidation(err))

	close(f.api.createBlock)
	require.NoError(t, <-done)
}

func TestChecklistService_DraftsAreOwned(t *testing.T) {
	f := newChecklistFixture()
	id := f.buildDraft(t)

	other := f.caller
	other.UserID = "u-2"
	_, err := f.svc.GetDraft(context.Background(), other, id)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(f.svc.DeleteDraft(context.Background(), other, id)))

	drafts, err := f.svc.ListDrafts(context.Background(), f.caller)
	require.NoError(t, err)
	assert.Len(t, drafts, 1)
}

func TestChecklistService_RestoresDraftFromStore(t *testing.T) {
	f := newChecklistFixture()
	id := f.buildDraft(t)

	// a fresh service sharing the store, as after a restart
	svc := NewChecklistService(f.drafts, NewAuditService(f.audit), nil)
	rec, err := svc.GetDraft(context.Background(), f.caller, id)
	require.NoError(t, err)
	assert.Equal(t, "Opening", rec.Checklist.Name)
	require.Len(t, rec.Checklist.Categories, 2)

	payload, err := svc.Payload(context.Background(), f.caller, id)
	require.NoError(t, err)
	assert.Len(t, payload.QuestionList, 2)
}

func TestChecklistService_ApplyRejectedCommand(t *testing.T) {
	f := newChecklistFixture()
	id := f.buildDraft(t)
	saves := f.drafts.saves

	_, _, err := f.svc.Apply(context.Background(), f.caller, id, checklist.RemoveQuestion{QuestionID: "missing"})
	require.Error(t, err)
	assert.Equal(t, saves, f.drafts.saves, "rejected command is not persisted")
}

func TestChecklistService_ListChecklists(t *testing.T) {
	f := newChecklistFixture()
	f.api.summaries = make([]models.ChecklistSummary, 5)

	tests := []struct {
		name        string
		page, limit int
		wantHasNext bool
		wantErr     bool
	}{
		{"full page", 1, 5, true, false},
		{"short page", 2, 10, false, false},
		{"defaults", 0, 0, false, false},
		{"negative page", -1, 5, false, true},
		{"limit too large", 1, 500, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := f.svc.ListChecklists(context.Background(), f.caller, tt.page, tt.limit, 3)
			if tt.wantErr {
				assert.True(t, apperr.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHasNext, page.HasNext)
		})
	}

	assert.Equal(t, 3, f.api.filters[0].CompanyID)
	assert.Equal(t, 1, f.api.filters[2].Page)
	assert.Equal(t, defaultPageLimit, f.api.filters[2].Limit)
}

func TestChecklistService_Settings(t *testing.T) {
	f := newChecklistFixture()
	ctx := context.Background()
	at := time.Date(2027, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, f.svc.SetExpiry(ctx, f.caller, "41", at))
	require.NoError(t, f.svc.SetCompany(ctx, f.caller, "41", 6))
	require.NoError(t, f.svc.ConnectCompanies(ctx, f.caller, "41", []int{1, 2}))
	require.NoError(t, f.svc.ConnectEmployees(ctx, f.caller, "41", []string{"e-1", "e-2"}))
	require.NoError(t, f.svc.Remove(ctx, f.caller, "41"))

	assert.Equal(t, []string{
		"update_expiry 41 2027-01-02T03:04:05Z",
		"update_company 41 6",
		"connect_companies 2",
		"connect_employee 41 e-1",
		"connect_employee 41 e-2",
		"remove_checklist 41",
	}, f.api.callLog())

	assert.True(t, apperr.IsValidation(f.svc.SetExpiry(ctx, f.caller, "41", time.Time{})))
	assert.True(t, apperr.IsValidation(f.svc.SetCompany(ctx, f.caller, "41", 0)))
	assert.True(t, apperr.IsValidation(f.svc.ConnectCompanies(ctx, f.caller, "41", nil)))
	assert.True(t, apperr.IsValidation(f.svc.ConnectEmployees(ctx, f.caller, "41", nil)))
}

func TestChecklistService_RequiresCaller(t *testing.T) {
	f := newChecklistFixture()
	_, err := f.svc.CreateDraft(context.Background(), Caller{})
	assert.True(t, apperr.IsAuthExpired(err))
}

func TestChecklistService_UpstreamErrorsKeepKind(t *testing.T) {
	f := newChecklistFixture()
	f.api.failOn["remove_checklist"] = apperr.AuthExpired(errors.New("refresh failed"))

	err := f.svc.Remove(context.Background(), f.caller, "41")
	assert.True(t, apperr.IsAuthExpired(err))
}

func TestChecklistService_MalformedDraftID(t *testing.T) {
	store := &uuidDrafts{memDrafts: newMemDrafts()}
	svc := NewChecklistService(store, nil, nil)
	caller := testCaller(newFakeAPI())
	ctx := context.Background()

	for _, id := range []string{"not-a-uuid", "42", ""} {
		_, err := svc.GetDraft(ctx, caller, id)
		assert.True(t, apperr.IsNotFound(err), "get %q: %v", id, err)
		_, _, err = svc.Apply(ctx, caller, id, checklist.SetName{Name: "x"})
		assert.True(t, apperr.IsNotFound(err), "apply %q: %v", id, err)
		_, err = svc.Submit(ctx, caller, id)
		assert.True(t, apperr.IsNotFound(err), "submit %q: %v", id, err)
		assert.True(t, apperr.IsNotFound(svc.DeleteDraft(ctx, caller, id)), "delete %q", id)
	}
	assert.Zero(t, store.lookups, "malformed ids never reach the store")
}

func TestChecklistService_CategoryFailureKeepsCreatedRefs(t *testing.T) {
	f := newChecklistFixture()
	id := f.buildDraft(t)
	fire := f.apply(t, id, checklist.AddCategory{}).CreatedID
	f.apply(t, id, checklist.SetCategoryName{CategoryID: fire, Name: "Fire"})
	snap, err := f.svc.GetDraft(context.Background(), f.caller, id)
	require.NoError(t, err)
	f.apply(t, id, checklist.SetText{QuestionID: snap.Checklist.Categories[2].Questions[0].ID, Text: "Extinguisher?"})
	f.api.failOn["create_category Fire"] = apperr.Transient("upstream down", nil)

	_, err = f.svc.Submit(context.Background(), f.caller, id)
	require.Error(t, err)
	assert.True(t, apperr.IsTransient(err))

	// a fresh service sharing the store, as after a restart
	restarted := NewChecklistService(f.drafts, NewAuditService(f.audit), nil)
	rec, err := restarted.GetDraft(context.Background(), f.caller, id)
	require.NoError(t, err)
	assert.Equal(t, "101", rec.Checklist.Categories[1].RefID, "created category is saved")

	delete(f.api.failOn, "create_category Fire")
	_, err = restarted.Submit(context.Background(), f.caller, id)
	require.NoError(t, err)
	creates := 0
	for _, c := range f.api.callLog() {
		if c == "create_category Gates" {
			creates++
		}
	}
	assert.Equal(t, 1, creates)
}

func TestChecklistService_EvictIdle(t *testing.T) {
	f := newChecklistFixture()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	idle := f.buildDraft(t)
	busy := f.buildDraft(t)
	now = now.Add(20 * time.Minute)
	recent := f.buildDraft(t)
	f.svc.workspaces[busy].submitting = true

	now = now.Add(15 * time.Minute)
	assert.Equal(t, 1, f.svc.EvictIdle(30*time.Minute))
	assert.NotContains(t, f.svc.workspaces, idle)
	assert.Contains(t, f.svc.workspaces, busy)
	assert.Contains(t, f.svc.workspaces, recent)

	rec, err := f.svc.GetDraft(context.Background(), f.caller, idle)
	require.NoError(t, err)
	assert.Equal(t, "Opening", rec.Checklist.Name, "evicted draft reloads from the store")
	assert.Contains(t, f.svc.workspaces, idle)
}
