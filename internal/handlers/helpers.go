package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/middleware"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/service"
)

// maxBodyBytes bounds request bodies; a full checklist draft is well under it
const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithAppError maps the error taxonomy onto HTTP statuses. Errors
// outside the taxonomy are logged and hidden behind a 500.
func respondWithAppError(w http.ResponseWriter, err error) {
	e, ok := apperr.As(err)
	if !ok {
		slog.Error("Unhandled error", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	var code int
	switch e.Kind {
	case apperr.KindValidation:
		code = http.StatusBadRequest
	case apperr.KindConflict:
		code = http.StatusConflict
	case apperr.KindAuthExpired:
		code = http.StatusUnauthorized
	case apperr.KindNotFound:
		code = http.StatusNotFound
	case apperr.KindTransient:
		slog.Error("Upstream request failed", "error", err)
		code = http.StatusBadGateway
	default:
		code = http.StatusInternalServerError
	}

	msg := e.Message
	if msg == "" {
		msg = e.Error()
	}
	respondWithJSON(w, code, map[string]string{"error": msg, "kind": string(e.Kind)})
}

// decodeJSON reads a bounded JSON body into dst
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// queryInt returns the integer query parameter key, or def when it is absent
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", key)
	}
	return n, nil
}

func pathInt(r *http.Request, key string) (int, error) {
	n, err := strconv.Atoi(r.PathValue(key))
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", key)
	}
	return n, nil
}

// callerOrAbort returns the authenticated caller or writes a 401
func callerOrAbort(w http.ResponseWriter, r *http.Request) (service.Caller, bool) {
	c, ok := middleware.GetCaller(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
	}
	return c, ok
}
