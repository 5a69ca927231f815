// Package session holds the authenticated context of a dashboard login: the
// upstream token pair, the profile decoded from the access token, and a
// single-flight token refresh shared by every request of that login.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/auth"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/repository"
)

// ErrNoSession is wrapped by auth_expired errors raised on a cleared session
var ErrNoSession = errors.New("no active session")

// Store persists sessions between requests and restarts
type Store interface {
	Save(ctx context.Context, s *models.DashboardSession) error
	Get(ctx context.Context, id string) (*models.DashboardSession, error)
	UpdateTokens(ctx context.Context, id string, pair models.TokenPair) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// Refresher exchanges a refresh token for a new pair
type Refresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (models.TokenPair, error)
}

// Recorder counts refresh outcomes
type Recorder interface {
	TokenRefresh(ok bool)
}

// Profile is the user described by the current access token
type Profile struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CompanyID string    `json:"company_id,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

func profileFromToken(token string) (*Profile, error) {
	claims, err := auth.ParseClaims(token)
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      claims.Role,
		CompanyID: claims.CompanyID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

// Session is one dashboard login. It is safe for concurrent use and satisfies
// apiclient.TokenSource.
type Session struct {
	id        string
	store     Store
	refresher Refresher
	recorder  Recorder

	mu      sync.RWMutex
	record  models.DashboardSession
	profile *Profile

	group singleflight.Group
}

// New creates an empty session with the given id
func New(id string, store Store, refresher Refresher, recorder Recorder) *Session {
	return &Session{
		id:        id,
		store:     store,
		refresher: refresher,
		recorder:  recorder,
		record:    models.DashboardSession{ID: id},
	}
}

func (s *Session) ID() string { return s.id }

// Init installs a freshly issued token pair and persists the session
func (s *Session) Init(ctx context.Context, pair models.TokenPair, meta models.DashboardSession) error {
	profile, err := profileFromToken(pair.AccessToken)
	if err != nil {
		return apperr.Transient("upstream issued an unreadable access token", err)
	}

	s.mu.Lock()
	rec := meta
	rec.ID = s.id
	rec.UserID = profile.UserID
	rec.Email = profile.Email
	rec.Role = profile.Role
	rec.CompanyID = profile.CompanyID
	rec.AccessToken = pair.AccessToken
	rec.RefreshToken = pair.RefreshToken
	s.record = rec
	s.profile = profile
	snapshot := s.record
	s.mu.Unlock()

	if err := s.store.Save(ctx, &snapshot); err != nil {
		return err
	}
	return nil
}

// Restore loads the persisted session. A missing or expired record is an
// auth_expired error.
func (s *Session) Restore(ctx context.Context) error {
	rec, err := s.store.Get(ctx, s.ID())
	if errors.Is(err, repository.ErrSessionNotFound) {
		return apperr.AuthExpired(ErrNoSession)
	}
	if err != nil {
		return err
	}

	profile, err := profileFromToken(rec.AccessToken)
	if err != nil {
		return apperr.AuthExpired(err)
	}

	s.mu.Lock()
	s.record = *rec
	s.profile = profile
	s.mu.Unlock()
	return nil
}

// Clear drops the tokens and deletes the persisted record
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.record = models.DashboardSession{ID: s.id}
	s.profile = nil
	s.mu.Unlock()
	return s.store.Delete(ctx, s.ID())
}

func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.AccessToken
}

// Profile returns a copy of the current profile, or nil when not authenticated
func (s *Session) Profile() *Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil
	}
	p := *s.profile
	return &p
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.AccessToken != ""
}

// ExpiresAt is the end of the dashboard login, independent of token expiry
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.ExpiresAt
}

// Refresh returns a usable access token after stale was rejected. If another
// caller has already replaced stale the current token is returned without a
// network call; otherwise one refresh runs and concurrent callers share it.
// A failed refresh clears the session.
func (s *Session) Refresh(ctx context.Context, stale string) (string, error) {
	if token, done := s.current(stale); done {
		return token, s.errIfCleared(token)
	}

	v, err, _ := s.group.Do("refresh", func() (any, error) {
		return s.refresh(context.WithoutCancel(ctx), stale)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Session) current(stale string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token := s.record.AccessToken
	return token, token == "" || token != stale
}

func (s *Session) errIfCleared(token string) error {
	if token == "" {
		return apperr.AuthExpired(ErrNoSession)
	}
	return nil
}

func (s *Session) refresh(ctx context.Context, stale string) (string, error) {
	// a caller may have finished a refresh between the check and Do
	if token, done := s.current(stale); done {
		return token, s.errIfCleared(token)
	}

	s.mu.RLock()
	refreshToken := s.record.RefreshToken
	s.mu.RUnlock()

	pair, err := s.refresher.RefreshToken(ctx, refreshToken)
	if err != nil {
		s.fail(ctx, err)
		return "", apperr.AuthExpired(err)
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	profile, err := profileFromToken(pair.AccessToken)
	if err != nil {
		s.fail(ctx, err)
		return "", apperr.AuthExpired(err)
	}

	s.mu.Lock()
	s.record.AccessToken = pair.AccessToken
	s.record.RefreshToken = pair.RefreshToken
	s.profile = profile
	s.mu.Unlock()

	if err := s.store.UpdateTokens(ctx, s.ID(), pair); err != nil {
		slog.Warn("Failed to persist refreshed tokens", "session_id", s.ID(), "error", err)
	}
	s.observeRefresh(true)
	slog.Debug("Access token refreshed", "session_id", s.ID(), "user_id", profile.UserID)
	return pair.AccessToken, nil
}

func (s *Session) fail(ctx context.Context, cause error) {
	s.observeRefresh(false)
	slog.Info("Token refresh failed, clearing session", "session_id", s.ID(), "error", cause)
	if err := s.Clear(ctx); err != nil {
		slog.Warn("Failed to delete session after refresh failure", "session_id", s.ID(), "error", err)
	}
}

func (s *Session) observeRefresh(ok bool) {
	if s.recorder != nil {
		s.recorder.TokenRefresh(ok)
	}
}
