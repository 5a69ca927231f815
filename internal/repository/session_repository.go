package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Sealer encrypts tokens before they are stored
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// SessionRepository handles dashboard session database operations. Upstream
// tokens are sealed before they reach the database.
type SessionRepository struct {
	db     *sql.DB
	sealer Sealer
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB, sealer Sealer) *SessionRepository {
	return &SessionRepository{db: db, sealer: sealer}
}

// Save creates or replaces a session
func (r *SessionRepository) Save(ctx context.Context, session *models.DashboardSession) error {
	access, err := r.sealer.Seal(session.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}
	refresh, err := r.sealer.Seal(session.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}

	query := `
		INSERT INTO dashboard_sessions (id, user_id, email, role, company_id, access_token, refresh_token,
			expires_at, last_activity_at, created_at, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			last_activity_at = EXCLUDED.last_activity_at
	`

	_, err = r.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Email,
		session.Role,
		session.CompanyID,
		access,
		refresh,
		session.ExpiresAt,
		session.LastActivityAt,
		session.CreatedAt,
		session.IPAddress,
		session.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves an unexpired session by id
func (r *SessionRepository) Get(ctx context.Context, id string) (*models.DashboardSession, error) {
	query := `
		SELECT id, user_id, email, role, company_id, access_token, refresh_token,
			expires_at, last_activity_at, created_at, ip_address, user_agent
		FROM dashboard_sessions
		WHERE id = $1 AND expires_at > $2
	`

	session := &models.DashboardSession{}
	var access, refresh string
	err := r.db.QueryRowContext(ctx, query, id, time.Now()).Scan(
		&session.ID,
		&session.UserID,
		&session.Email,
		&session.Role,
		&session.CompanyID,
		&access,
		&refresh,
		&session.ExpiresAt,
		&session.LastActivityAt,
		&session.CreatedAt,
		&session.IPAddress,
		&session.UserAgent,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.AccessToken, err = r.sealer.Open(access); err != nil {
		return nil, fmt.Errorf("failed to open access token: %w", err)
	}
	if session.RefreshToken, err = r.sealer.Open(refresh); err != nil {
		return nil, fmt.Errorf("failed to open refresh token: %w", err)
	}
	return session, nil
}

// UpdateTokens stores a refreshed token pair
func (r *SessionRepository) UpdateTokens(ctx context.Context, id string, pair models.TokenPair) error {
	access, err := r.sealer.Seal(pair.AccessToken)
	if err != nil {
		return fmt.Errorf("failed to seal access token: %w", err)
	}
	refresh, err := r.sealer.Seal(pair.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to seal refresh token: %w", err)
	}

	query := `
		UPDATE dashboard_sessions
		SET access_token = $1, refresh_token = $2, last_activity_at = $3
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, access, refresh, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update session tokens: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete deletes a specific session
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM dashboard_sessions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired deletes all expired sessions and reports how many were removed
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM dashboard_sessions WHERE expires_at < $1`
	res, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
