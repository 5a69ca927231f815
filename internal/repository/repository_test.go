package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/checklist"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/secret"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/testutil"
)

func newBox(t *testing.T) *secret.Box {
	t.Helper()
	key, err := secret.KeyFromString("repository-test-key")
	require.NoError(t, err)
	box, err := secret.NewBox(key)
	require.NoError(t, err)
	return box
}

func TestSessionRepository(t *testing.T) {
	tdb := testutil.SetupPostgres(t)
	ctx := context.Background()
	repo := NewSessionRepository(tdb.DB, newBox(t))

	now := time.Now().UTC().Truncate(time.Second)
	session := &models.DashboardSession{
		ID:             "sess-1",
		UserID:         "user-1",
		Email:          "admin@storaze.test",
		Role:           "superAdmin",
		AccessToken:    "access-1",
		RefreshToken:   "refresh-1",
		ExpiresAt:      now.Add(time.Hour),
		LastActivityAt: now,
		CreatedAt:      now,
	}
	require.NoError(t, repo.Save(ctx, session))

	var stored string
	require.NoError(t, tdb.DB.QueryRow(`SELECT access_token FROM dashboard_sessions WHERE id = $1`, "sess-1").Scan(&stored))
	assert.NotEqual(t, "access-1", stored, "tokens must be sealed at rest")

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "access-1", got.AccessToken)
	assert.Equal(t, "refresh-1", got.RefreshToken)
	assert.Equal(t, "superAdmin", got.Role)

	require.NoError(t, repo.UpdateTokens(ctx, "sess-1", models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}))
	got, err = repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, "access-2", got.AccessToken)

	assert.ErrorIs(t, repo.UpdateTokens(ctx, "missing", models.TokenPair{}), ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, "sess-1"))
	_, err = repo.Get(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRepositoryExpired(t *testing.T) {
	tdb := testutil.SetupPostgres(t)
	ctx := context.Background()
	repo := NewSessionRepository(tdb.DB, newBox(t))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, repo.Save(ctx, &models.DashboardSession{
		ID: "old", UserID: "u", ExpiresAt: past, LastActivityAt: past, CreatedAt: past,
	}))

	_, err := repo.Get(ctx, "old")
	assert.True(t, errors.Is(err, ErrSessionNotFound))

	n, err := repo.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestDraftRepository(t *testing.T) {
	tdb := testutil.SetupPostgres(t)
	ctx := context.Background()
	repo := NewDraftRepository(tdb.DB)

	d := checklist.New()
	d.SetName("Safety")
	cid := d.AddCategory()
	require.NoError(t, d.SetCategoryName(cid, "Gates"))

	record := &models.DraftRecord{ID: "6f1c2a52-8a0e-4d8e-9f57-0a1d3c2b4e11", OwnerID: "user-1", Checklist: d.Snapshot()}
	require.NoError(t, repo.Save(ctx, record))

	got, err := repo.Get(ctx, "user-1", record.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Snapshot(), got.Checklist)

	_, err = repo.Get(ctx, "user-2", record.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)

	// another owner cannot overwrite the draft
	err = repo.Save(ctx, &models.DraftRecord{ID: record.ID, OwnerID: "user-2", Checklist: checklist.New().Snapshot()})
	assert.ErrorIs(t, err, ErrDraftNotFound)

	list, err := repo.ListByOwner(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Safety", list[0].Checklist.Name)

	require.NoError(t, repo.Delete(ctx, "user-1", record.ID))
	assert.ErrorIs(t, repo.Delete(ctx, "user-1", record.ID), ErrDraftNotFound)
}

func TestAuditRepository(t *testing.T) {
	tdb := testutil.SetupPostgres(t)
	ctx := context.Background()
	repo := NewAuditRepository(tdb.DB)

	for _, action := range []string{"login", "checklist.submitted", "anomaly.transitioned"} {
		require.NoError(t, repo.Create(ctx, &models.AuditLog{UserID: "user-1", Action: action, Resource: "test"}))
	}
	require.NoError(t, repo.Create(ctx, &models.AuditLog{UserID: "user-2", Action: "login", Resource: "auth"}))

	all, err := repo.List(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	mine, err := repo.List(ctx, "user-1", 2, 0)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "anomaly.transitioned", mine[0].Action)
}
