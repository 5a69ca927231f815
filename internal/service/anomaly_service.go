package service

import (
	"context"
	"strings"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/anomaly"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
)

// AnomalyService reviews anomaly resolutions on behalf of the signed-in user
type AnomalyService struct {
	controller *anomaly.Controller
	audit      *AuditService
	recorder   Recorder
}

func NewAnomalyService(audit *AuditService, recorder Recorder) *AnomalyService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &AnomalyService{
		controller: anomaly.NewController(),
		audit:      audit,
		recorder:   recorder,
	}
}

// Find returns the resolution record of an answer, or nil if there is none
func (s *AnomalyService) Find(ctx context.Context, c Caller, answerID string) (*anomaly.Record, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(answerID) == "" {
		return nil, apperr.Validation("answer id is required")
	}
	return s.controller.Fetch(ctx, c.API, answerID)
}

// Transition moves the resolution of answerID to target, recording the
// caller as reviewer. The record is re-read first so the decision is made on
// the current upstream state.
func (s *AnomalyService) Transition(ctx context.Context, c Caller, answerID string, target anomaly.Status) (*anomaly.Record, error) {
	rec, err := s.Find(ctx, c, answerID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperr.NotFound("no anomaly resolution for answer %s", answerID)
	}

	next, err := s.controller.Transition(ctx, c.API, *rec, target, c.UserID)
	s.recorder.AnomalyTransition(string(target), err == nil)
	if err != nil {
		return rec, err
	}

	s.audit.Log(ctx, c, ActionAnomalyTransition, "anomaly:"+next.ID, string(next.Status))
	return &next, nil
}
