package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
)

// StatusError is a non-2xx upstream response
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: upstream returned %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: upstream returned %d: %s", e.Op, e.Status, e.Message)
}

// statusError maps a response status onto the error taxonomy:
// 409 conflict, 404 not found, anything else transient
func statusError(op string, resp *http.Response) error {
	se := &StatusError{Op: op, Status: resp.StatusCode, Message: readMessage(resp.Body)}
	switch resp.StatusCode {
	case http.StatusConflict:
		msg := se.Message
		if msg == "" {
			msg = op + " conflicts with existing data"
		}
		return apperr.Conflict(msg, se)
	case http.StatusNotFound:
		return &apperr.Error{Kind: apperr.KindNotFound, Message: op + " not found", Err: se}
	case http.StatusUnauthorized:
		return apperr.AuthExpired(se)
	default:
		return apperr.Transient(op+" failed", se)
	}
}

// readMessage extracts {"message": ...} from an error body. The API sends
// either a string or a list of validation messages.
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 16<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return strings.TrimSpace(string(data))
	}

	var s string
	if err := json.Unmarshal(body.Message, &s); err == nil && s != "" {
		return s
	}
	var list []string
	if err := json.Unmarshal(body.Message, &list); err == nil && len(list) > 0 {
		return strings.Join(list, "; ")
	}
	return body.Error
}
