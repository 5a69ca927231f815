package middleware

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/config"
)

// CORSMiddleware lets the dashboard frontend call the API from its own origin
type CORSMiddleware struct {
	config *config.CORSConfig
}

// NewCORSMiddleware creates a new CORS middleware
func NewCORSMiddleware(cfg *config.CORSConfig) *CORSMiddleware {
	return &CORSMiddleware{config: cfg}
}

// Handler sets CORS headers for allowed origins and answers preflights
func (m *CORSMiddleware) Handler(next http.Handler) http.Handler {
	methods := strings.Join(m.config.AllowedMethods, ", ")
	headers := strings.Join(m.config.AllowedHeaders, ", ")
	exposed := strings.Join(m.config.ExposedHeaders, ", ")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := m.allowedOrigin(origin)
		if allowed == "" {
			next.ServeHTTP(w, r)
			return
		}

		h := w.Header()
		h.Add("Vary", "Origin")
		h.Set("Access-Control-Allow-Origin", allowed)
		if m.config.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		h.Set("Access-Control-Allow-Methods", methods)
		h.Set("Access-Control-Allow-Headers", headers)
		if exposed != "" {
			h.Set("Access-Control-Expose-Headers", exposed)
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if m.config.MaxAge > 0 {
				h.Set("Access-Control-Max-Age", strconv.Itoa(m.config.MaxAge))
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// allowedOrigin echoes the request origin when it is listed. A wildcard is
// only echoed as "*" when credentials are off.
func (m *CORSMiddleware) allowedOrigin(origin string) string {
	if origin == "" {
		return ""
	}
	if slices.Contains(m.config.AllowedOrigins, origin) {
		return origin
	}
	if slices.Contains(m.config.AllowedOrigins, "*") {
		if m.config.AllowCredentials {
			return origin
		}
		return "*"
	}
	return ""
}
