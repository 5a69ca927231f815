package middleware

import (
	"context"
	"net/http"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apiclient"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/service"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/session"
)

type contextKey string

const (
	sessionKey contextKey = "session"
	callerKey  contextKey = "caller"
)

// SessionHeader carries the session id for clients that do not use the cookie
const SessionHeader = "X-Session-ID"

// SessionLookup resolves a session id. *session.Manager implements it.
type SessionLookup interface {
	Get(ctx context.Context, id string) (*session.Session, error)
}

// AuthMiddleware requires a live dashboard session
type AuthMiddleware struct {
	sessions   SessionLookup
	client     *apiclient.Client
	cookieName string
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(sessions SessionLookup, client *apiclient.Client, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions, client: client, cookieName: cookieName}
}

// Authenticate resolves the session from the cookie or the X-Session-ID
// header and adds it, with a Caller bound to its tokens, to the context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := m.SessionID(r)
		if id == "" {
			respondWithError(w, http.StatusUnauthorized, "Missing session")
			return
		}

		sess, err := m.sessions.Get(r.Context(), id)
		if err != nil {
			if apperr.IsAuthExpired(err) {
				respondWithError(w, http.StatusUnauthorized, "Session expired")
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to load session")
			return
		}

		p := sess.Profile()
		if p == nil {
			respondWithError(w, http.StatusUnauthorized, "Session expired")
			return
		}
		caller := service.Caller{
			UserID:    p.UserID,
			Email:     p.Email,
			Role:      p.Role,
			IPAddress: ClientIP(r),
			UserAgent: r.UserAgent(),
			API:       m.client.WithTokens(sess),
		}

		if info, ok := r.Context().Value(infoKey).(*requestInfo); ok {
			info.userID = p.UserID
		}

		ctx := context.WithValue(r.Context(), sessionKey, sess)
		ctx = context.WithValue(ctx, callerKey, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID reads the session id from the cookie, falling back to the header
func (m *AuthMiddleware) SessionID(r *http.Request) string {
	if c, err := r.Cookie(m.cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(SessionHeader)
}

// RequireRole allows only callers whose token carries one of roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, ok := GetCaller(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "User not authenticated")
				return
			}
			for _, role := range roles {
				if c.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondWithError(w, http.StatusForbidden, "Insufficient permissions")
		})
	}
}

// GetSession retrieves the session from the request context
func GetSession(r *http.Request) (*session.Session, bool) {
	s, ok := r.Context().Value(sessionKey).(*session.Session)
	return s, ok
}

// GetCaller retrieves the authenticated caller from the request context
func GetCaller(r *http.Request) (service.Caller, bool) {
	c, ok := r.Context().Value(callerKey).(service.Caller)
	return c, ok
}

// WithCaller returns ctx carrying c, for handlers exercised without the
// session middleware
func WithCaller(ctx context.Context, c service.Caller) context.Context {
	return context.WithValue(ctx, callerKey, c)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"error":"` + message + `"}`))
}
