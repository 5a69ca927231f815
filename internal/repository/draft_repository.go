package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftRepository persists checklist drafts as JSONB snapshots
type DraftRepository struct {
	db *sql.DB
}

// NewDraftRepository creates a new draft repository
func NewDraftRepository(db *sql.DB) *DraftRepository {
	return &DraftRepository{db: db}
}

// Save creates or replaces a draft owned by draft.OwnerID
func (r *DraftRepository) Save(ctx context.Context, draft *models.DraftRecord) error {
	snapshot, err := json.Marshal(draft.Checklist)
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}

	now := time.Now()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	query := `
		INSERT INTO checklist_drafts (id, owner_id, snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = EXCLUDED.updated_at
		WHERE checklist_drafts.owner_id = EXCLUDED.owner_id
	`
	res, err := r.db.ExecContext(ctx, query, draft.ID, draft.OwnerID, snapshot, draft.CreatedAt, draft.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// Get retrieves a draft by id for its owner
func (r *DraftRepository) Get(ctx context.Context, ownerID, id string) (*models.DraftRecord, error) {
	query := `
		SELECT id, owner_id, snapshot, created_at, updated_at
		FROM checklist_drafts
		WHERE id = $1 AND owner_id = $2
	`

	draft := &models.DraftRecord{}
	var snapshot []byte
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&draft.ID,
		&draft.OwnerID,
		&snapshot,
		&draft.CreatedAt,
		&draft.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}
	if err := json.Unmarshal(snapshot, &draft.Checklist); err != nil {
		return nil, fmt.Errorf("failed to decode draft %s: %w", id, err)
	}
	return draft, nil
}

// ListByOwner returns an owner's drafts, most recently edited first
func (r *DraftRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.DraftRecord, error) {
	query := `
		SELECT id, owner_id, snapshot, created_at, updated_at
		FROM checklist_drafts
		WHERE owner_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []models.DraftRecord{}
	for rows.Next() {
		var draft models.DraftRecord
		var snapshot []byte
		if err := rows.Scan(&draft.ID, &draft.OwnerID, &snapshot, &draft.CreatedAt, &draft.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		if err := json.Unmarshal(snapshot, &draft.Checklist); err != nil {
			return nil, fmt.Errorf("failed to decode draft %s: %w", draft.ID, err)
		}
		drafts = append(drafts, draft)
	}
	return drafts, rows.Err()
}

// Delete removes a draft owned by ownerID
func (r *DraftRepository) Delete(ctx context.Context, ownerID, id string) error {
	query := `DELETE FROM checklist_drafts WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDraftNotFound
	}
	return nil
}
