package handlers

import (
	"net/http"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/config"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/middleware"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/service"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/session"
)

// AuthHandler handles dashboard login, logout and the current profile
type AuthHandler struct {
	authService *service.AuthService
	authMw      *middleware.AuthMiddleware
	cookie      config.SessionConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, authMw *middleware.AuthMiddleware, cookie config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		authMw:      authMw,
		cookie:      cookie,
	}
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the session id for clients that cannot use the cookie
type LoginResponse struct {
	SessionID string           `json:"session_id"`
	ExpiresAt time.Time        `json:"expires_at"`
	Profile   *session.Profile `json:"profile"`
}

// Login authenticates against the upstream API and opens a session
// @Summary Dashboard login
// @Description Authenticate against the upstream API and open a session
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 502 {object} map[string]string "Upstream unavailable"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.authService.Login(r.Context(), req.Email, req.Password, session.ClientInfo{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    sess.ID(),
		Path:     "/",
		Expires:  sess.ExpiresAt(),
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	respondWithJSON(w, http.StatusOK, LoginResponse{
		SessionID: sess.ID(),
		ExpiresAt: sess.ExpiresAt(),
		Profile:   sess.Profile(),
	})
}

// Logout closes the current session and clears the cookie
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Security SessionAuth
// @Success 200 {object} map[string]string "Logged out"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	c, ok := callerOrAbort(w, r)
	if !ok {
		return
	}

	if err := h.authService.Logout(r.Context(), c, h.authMw.SessionID(r)); err != nil {
		respondWithAppError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Me returns the profile of the current session
// @Summary Current profile
// @Tags Authentication
// @Produce json
// @Security SessionAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSession(r)
	if !ok || sess.Profile() == nil {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"profile":    sess.Profile(),
		"expires_at": sess.ExpiresAt(),
	})
}
