// Package anomaly drives the review of an answer flagged as anomalous.
//
// A Record starts UNRESOLVED and is moved to RESOLVED or REJECTED by an
// administrator. RESOLVED is terminal for callers; REJECTED may be reviewed
// again after a re-fetch.
package anomaly

import (
	"strings"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
)

// Status is the review state of a record
type Status string

const (
	StatusUnresolved Status = "UNRESOLVED"
	StatusResolved   Status = "RESOLVED"
	StatusRejected   Status = "REJECTED"
)

// ParseStatus accepts a status in any letter case
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case StatusUnresolved, StatusResolved, StatusRejected:
		return st, nil
	}
	return "", apperr.Validation("unknown anomaly status %q", s)
}

// Record is the resolution state for one anomalous answer
type Record struct {
	ID                   string `json:"id"`
	AnswerID             string `json:"answer_id"`
	Description          string `json:"description"`
	ImageURL             string `json:"image_url,omitempty"`
	Status               Status `json:"status"`
	ResolvedByEmployeeID string `json:"resolved_by_employee_id,omitempty"`
}

// Actionable reports whether a reviewer may still act on the record.
// Only RESOLVED is final; REJECTED stays open to review.
func (r Record) Actionable() bool {
	return r.Status != StatusResolved
}

// Transition returns the record moved to target by reviewer. It checks the
// target and reviewer only; whether the source state may be left is the
// caller's decision (see Controller).
func (r Record) Transition(target Status, reviewerID string) (Record, error) {
	if target != StatusResolved && target != StatusRejected {
		return r, apperr.Validation("cannot transition anomaly to %q", target)
	}
	if strings.TrimSpace(reviewerID) == "" {
		return r, apperr.Validation("reviewer is required")
	}
	next := r
	next.Status = target
	next.ResolvedByEmployeeID = reviewerID
	return next, nil
}
