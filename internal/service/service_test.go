package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/anomaly"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apiclient"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

func TestResponseService_GroupsFirstOccurrence(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	api := newFakeAPI()
	api.answers = []models.Answer{
		{ID: "1", QuestionID: "q1", EmployeeID: "e1", ChecklistName: "Opening", CreatedAt: t0},
		{ID: "2", QuestionID: "q1", EmployeeID: "e1", ChecklistName: "Opening", HasAnomaly: true},
		{ID: "3", QuestionID: "q1", EmployeeID: "e2", HasAnomaly: true},
		{ID: "4", QuestionID: "q2", EmployeeID: "e1"},
	}
	svc := NewResponseService()

	rows, err := svc.List(context.Background(), testCaller(api), false)
	require.NoError(t, err)
	ids := make([]models.ID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.AnswerID)
	}
	assert.Equal(t, []models.ID{"1", "3", "4"}, ids)
	assert.Equal(t, t0, rows[0].CreatedAt)
	assert.False(t, rows[0].HasAnomaly, "first occurrence wins")

	rows, err = svc.List(context.Background(), testCaller(api), true)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ID("3"), rows[0].AnswerID)
}

func TestResponseService_EmptyList(t *testing.T) {
	rows, err := NewResponseService().List(context.Background(), testCaller(newFakeAPI()), false)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestAnomalyService_Transition(t *testing.T) {
	api := newFakeAPI()
	api.resolution = &anomaly.Record{ID: "5", AnswerID: "a-1", Status: anomaly.StatusUnresolved}
	audit := &memAudit{}
	rec := newCountingRecorder()
	svc := NewAnomalyService(NewAuditService(audit), rec)
	caller := testCaller(api)

	got, err := svc.Transition(context.Background(), caller, "a-1", anomaly.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, anomaly.StatusRejected, got.Status)
	assert.Equal(t, "u-1", got.ResolvedByEmployeeID)

	// REJECTED is still actionable
	got, err = svc.Transition(context.Background(), caller, "a-1", anomaly.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, anomaly.StatusResolved, got.Status)

	// RESOLVED is terminal: no update call is made
	_, err = svc.Transition(context.Background(), caller, "a-1", anomaly.StatusRejected)
	assert.True(t, apperr.IsValidation(err))

	updates := 0
	for _, c := range api.callLog() {
		if len(c) > 14 && c[:14] == "update_anomaly" {
			updates++
		}
	}
	assert.Equal(t, 2, updates)
	assert.Equal(t, 1, rec.transitions["REJECTED/true"])
	assert.Equal(t, 1, rec.transitions["REJECTED/false"])
	assert.Equal(t, []string{ActionAnomalyTransition, ActionAnomalyTransition}, audit.actions())
}

func TestAnomalyService_Missing(t *testing.T) {
	svc := NewAnomalyService(nil, nil)
	caller := testCaller(newFakeAPI())

	rec, err := svc.Find(context.Background(), caller, "a-9")
	require.NoError(t, err)
	assert.Nil(t, rec)

	_, err = svc.Transition(context.Background(), caller, "a-9", anomaly.StatusResolved)
	assert.True(t, apperr.IsNotFound(err))

	_, err = svc.Find(context.Background(), caller, " ")
	assert.True(t, apperr.IsValidation(err))
}

func TestAnomalyService_InvalidTarget(t *testing.T) {
	api := newFakeAPI()
	api.resolution = &anomaly.Record{ID: "5", AnswerID: "a-1", Status: anomaly.StatusUnresolved}
	svc := NewAnomalyService(nil, nil)

	_, err := svc.Transition(context.Background(), testCaller(api), "a-1", anomaly.StatusUnresolved)
	assert.True(t, apperr.IsValidation(err))
	assert.Equal(t, []string{"find_anomaly a-1"}, api.callLog())
}

func TestCatalogService_CreateEmployee(t *testing.T) {
	tests := []struct {
		name    string
		input   EmployeeInput
		wantErr bool
	}{
		{"valid", EmployeeInput{Name: "Ana", Email: "Ana@Acme.co", Phone: "(11) 98765-4321", CompanyID: 2, RoleID: "3"}, false},
		{"missing name", EmployeeInput{Email: "ana@acme.co", Phone: "(11) 98765-4321", CompanyID: 2}, true},
		{"bad email", EmployeeInput{Name: "Ana", Email: "ana", Phone: "(11) 98765-4321", CompanyID: 2}, true},
		{"bad phone", EmployeeInput{Name: "Ana", Email: "ana@acme.co", Phone: "12", CompanyID: 2}, true},
		{"no company", EmployeeInput{Name: "Ana", Email: "ana@acme.co", Phone: "(11) 98765-4321"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			svc := NewCatalogService(nil)

			emp, err := svc.CreateEmployee(context.Background(), testCaller(api), tt.input)
			if tt.wantErr {
				assert.True(t, apperr.IsValidation(err))
				assert.Empty(t, api.callLog(), "validation failures never reach the network")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "11987654321", emp.Phone)
			require.Len(t, api.employees, 1)
			assert.Equal(t, "ana@acme.co", api.employees[0].Email)
			assert.Equal(t, 2, api.employees[0].CompanyID)
		})
	}
}

func TestCatalogService_CreateEmployeeConflict(t *testing.T) {
	api := newFakeAPI()
	api.failOn["create_employee"] = apiclient.ErrEmailConflict
	svc := NewCatalogService(nil)

	_, err := svc.CreateEmployee(context.Background(), testCaller(api), EmployeeInput{
		Name: "Ana", Email: "ana@acme.co", Phone: "11987654321", CompanyID: 1,
	})
	assert.ErrorIs(t, err, apiclient.ErrEmailConflict)
	assert.True(t, apperr.IsConflict(err))
}

func TestCatalogService_CreateCompanyConnectsChecklists(t *testing.T) {
	api := newFakeAPI()
	audit := &memAudit{}
	svc := NewCatalogService(NewAuditService(audit))

	company, err := svc.CreateCompany(context.Background(), testCaller(api), CompanyInput{
		Name:         "Acme",
		CNPJ:         "12.345.678/0001-95",
		Email:        "ops@acme.co",
		IsActive:     true,
		ChecklistIDs: []string{"41", "42"},
	})
	require.NoError(t, err)
	assert.Equal(t, 9, company.ID)
	assert.Equal(t, "12345678000195", api.companies[0].CNPJ)
	assert.Equal(t, []string{"create_company Acme", "connect_companies 2"}, api.callLog())
	assert.Equal(t, []apiclient.CompanyLink{{CompanyID: 9, ChecklistID: "41"}, {CompanyID: 9, ChecklistID: "42"}}, api.links)
	assert.Equal(t, []string{ActionCompanyCreate}, audit.actions())

	_, err = svc.CreateCompany(context.Background(), testCaller(api), CompanyInput{Name: "Acme", CNPJ: "123", Email: "ops@acme.co"})
	assert.True(t, apperr.IsValidation(err))
}

func TestCatalogService_UpdateCompany(t *testing.T) {
	api := newFakeAPI()
	api.companies = []models.Company{{ID: 4, Name: "Acme", CNPJ: "12345678000195", Email: "ops@acme.co", IsActive: true}}
	audit := &memAudit{}
	svc := NewCatalogService(NewAuditService(audit))
	ctx := context.Background()

	got, err := svc.GetCompany(ctx, testCaller(api), 4)
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	updated, err := svc.UpdateCompany(ctx, testCaller(api), 4, CompanyInput{
		Name:         " Acme Norte ",
		CNPJ:         "12.345.678/0001-95",
		Email:        "Norte@Acme.co",
		ChecklistIDs: []string{"41"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Company{ID: 4, Name: "Acme Norte", CNPJ: "12345678000195", Email: "norte@acme.co"}, updated)
	assert.Equal(t, updated, api.companies[0])
	assert.Equal(t, []apiclient.CompanyLink{{CompanyID: 4, ChecklistID: "41"}}, api.links)
	assert.Equal(t, []string{"get_company 4", "update_company 4 Acme Norte", "connect_companies 1"}, api.callLog())
	assert.Equal(t, []string{ActionCompanyUpdate}, audit.actions())

	tests := []struct {
		name string
		id   int
		in   CompanyInput
		want func(error) bool
	}{
		{"bad cnpj", 4, CompanyInput{Name: "Acme", CNPJ: "123", Email: "ops@acme.co"}, apperr.IsValidation},
		{"bad id", 0, CompanyInput{Name: "Acme", CNPJ: "12345678000195", Email: "ops@acme.co"}, apperr.IsValidation},
		{"unknown company", 8, CompanyInput{Name: "Acme", CNPJ: "12345678000195", Email: "ops@acme.co"}, apperr.IsNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateCompany(ctx, testCaller(api), tt.id, tt.in)
			assert.True(t, tt.want(err), "%v", err)
		})
	}

	_, err = svc.GetCompany(ctx, testCaller(api), 8)
	assert.True(t, apperr.IsNotFound(err))
}

func TestCatalogService_UpdateCompanyConnectFailure(t *testing.T) {
	api := newFakeAPI()
	api.companies = []models.Company{{ID: 4, Name: "Acme"}}
	api.failOn["connect_companies"] = apperr.Transient("upstream down", nil)
	svc := NewCatalogService(nil)

	company, err := svc.UpdateCompany(context.Background(), testCaller(api), 4, CompanyInput{
		Name: "Acme", CNPJ: "12345678000195", Email: "ops@acme.co", ChecklistIDs: []string{"41"},
	})
	assert.True(t, apperr.IsTransient(err))
	assert.Equal(t, 4, company.ID, "the saved company is still returned")
}

func TestCatalogService_Lists(t *testing.T) {
	api := newFakeAPI()
	svc := NewCatalogService(nil)
	ctx := context.Background()

	page, err := svc.ListEmployees(ctx, testCaller(api), 2, 3)
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)
	assert.True(t, page.HasNext)
	assert.Equal(t, 2, page.Page)

	cats, err := svc.ListCategories(ctx, testCaller(api))
	require.NoError(t, err)
	assert.Len(t, cats, 1)

	roles, err := svc.ListRoles(ctx, testCaller(api))
	require.NoError(t, err)
	assert.Equal(t, "admin", roles[0].Name)

	_, err = svc.CreateCategory(ctx, testCaller(api), "  ")
	assert.True(t, apperr.IsValidation(err))

	require.NoError(t, svc.RemoveEmployee(ctx, testCaller(api), "5"))
	assert.Contains(t, api.callLog(), "remove_employee 5")
}

func TestAuditService_List(t *testing.T) {
	store := &memAudit{}
	svc := NewAuditService(store)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		svc.Log(ctx, Caller{UserID: "u-1"}, ActionLogin, "session", "")
	}
	svc.Log(ctx, Caller{UserID: "u-2"}, ActionLogin, "session", "")

	page, err := svc.List(ctx, "u-1", 1, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.True(t, page.HasNext)

	page, err = svc.List(ctx, "", 2, 2)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	page, err = svc.List(ctx, "u-2", 2, 2)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
}

func TestNilAuditServiceIsNoop(t *testing.T) {
	var svc *AuditService
	assert.NotPanics(t, func() {
		svc.Log(context.Background(), Caller{}, ActionLogin, "session", "")
	})
}
