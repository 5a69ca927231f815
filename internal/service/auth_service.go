package service

import (
	"context"
	"strings"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/session"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/pkg/validator"
)

// Sessions opens and closes dashboard logins. *session.Manager implements it.
type Sessions interface {
	Login(ctx context.Context, email, password string, info session.ClientInfo) (*session.Session, error)
	Logout(ctx context.Context, id string) error
}

// AuthService handles dashboard login and logout
type AuthService struct {
	sessions Sessions
	audit    *AuditService
}

// NewAuthService creates a new authentication service
func NewAuthService(sessions Sessions, audit *AuditService) *AuthService {
	return &AuthService{sessions: sessions, audit: audit}
}

// Login authenticates against the upstream API and opens a session
func (s *AuthService) Login(ctx context.Context, email, password string, info session.ClientInfo) (*session.Session, error) {
	email = validator.SanitizeEmail(email)
	if err := validator.ValidateEmail(email); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	if strings.TrimSpace(password) == "" {
		return nil, apperr.Validation("password is required")
	}

	sess, err := s.sessions.Login(ctx, email, password, info)
	if err != nil {
		return nil, err
	}

	p := sess.Profile()
	s.audit.Log(ctx, Caller{
		UserID:    p.UserID,
		Email:     p.Email,
		IPAddress: info.IPAddress,
		UserAgent: info.UserAgent,
	}, ActionLogin, "session", "")
	return sess, nil
}

// Logout closes the caller's session
func (s *AuthService) Logout(ctx context.Context, c Caller, sessionID string) error {
	if err := s.sessions.Logout(ctx, sessionID); err != nil {
		return err
	}
	s.audit.Log(ctx, c, ActionLogout, "session", "")
	return nil
}
