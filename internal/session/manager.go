package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/auth"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

// Authenticator performs the upstream login and refresh calls
type Authenticator interface {
	Refresher
	Login(ctx context.Context, email, password string) (models.TokenPair, error)
}

// ClientInfo describes the browser that opened a login
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// Manager owns the live sessions of the dashboard, one per login, and
// restores them from the store on demand.
type Manager struct {
	store    Store
	auth     Authenticator
	recorder Recorder
	timeout  time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager. timeout bounds the lifetime of a login.
func NewManager(store Store, authenticator Authenticator, recorder Recorder, timeout time.Duration) *Manager {
	return &Manager{
		store:    store,
		auth:     authenticator,
		recorder: recorder,
		timeout:  timeout,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Login authenticates upstream and opens a new session
func (m *Manager) Login(ctx context.Context, email, password string, info ClientInfo) (*Session, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	pair, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	id, err := auth.GenerateRandomToken(32)
	if err != nil {
		return nil, err
	}

	now := m.now()
	s := New(id, m.store, m.auth, m.recorder)
	meta := models.DashboardSession{
		ExpiresAt:      now.Add(m.timeout),
		LastActivityAt: now,
		CreatedAt:      now,
		IPAddress:      info.IPAddress,
		UserAgent:      info.UserAgent,
	}
	if err := s.Init(ctx, pair, meta); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	slog.Info("Session opened", "session_id", id, "user_id", s.Profile().UserID)
	return s, nil
}

// Get returns the live session for id, restoring it from the store if this
// process has not seen it yet. Unknown or expired ids are auth_expired.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, apperr.AuthExpired(ErrNoSession)
	}

	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()

	if ok {
		if s.Authenticated() && m.now().Before(s.ExpiresAt()) {
			return s, nil
		}
		m.forget(id)
		return nil, apperr.AuthExpired(ErrNoSession)
	}

	s = New(id, m.store, m.auth, m.recorder)
	if err := s.Restore(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	// a concurrent Get may have restored it first
	if existing, ok := m.sessions[id]; ok {
		s = existing
	} else {
		m.sessions[id] = s
	}
	m.mu.Unlock()
	return s, nil
}

// Logout clears the session and forgets it
func (m *Manager) Logout(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		s = New(id, m.store, m.auth, m.recorder)
	}
	return s.Clear(ctx)
}

// Sweep drops expired sessions from memory and from the store
func (m *Manager) Sweep(ctx context.Context) (int64, error) {
	now := m.now()
	m.mu.Lock()
	for id, s := range m.sessions {
		if !s.Authenticated() || !now.Before(s.ExpiresAt()) {
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	return m.store.DeleteExpired(ctx)
}

// Len reports the number of sessions held in memory
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) forget(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
