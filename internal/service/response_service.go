package service

import (
	"context"
	"fmt"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

// ResponseService lists submitted checklist answers
type ResponseService struct{}

func NewResponseService() *ResponseService {
	return &ResponseService{}
}

// List returns one row per (question, employee) pair, keeping the first
// answer seen for each pair in upstream order. With anomaliesOnly set only
// rows flagged as anomalies are returned.
func (s *ResponseService) List(ctx context.Context, c Caller, anomaliesOnly bool) ([]models.ResponseRow, error) {
	if err := c.valid(); err != nil {
		return nil, err
	}
	answers, err := c.API.ListAnswersWithChecklist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	return groupResponses(answers, anomaliesOnly), nil
}

func groupResponses(answers []models.Answer, anomaliesOnly bool) []models.ResponseRow {
	rows := make([]models.ResponseRow, 0, len(answers))
	seen := make(map[string]struct{}, len(answers))
	for _, a := range answers {
		key := a.QuestionID.String() + "-" + a.EmployeeID.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if anomaliesOnly && !a.HasAnomaly {
			continue
		}
		rows = append(rows, models.ResponseRow{
			AnswerID:      a.ID,
			ChecklistName: a.ChecklistName,
			CompanyName:   a.CompanyName,
			EmployeeName:  a.EmployeeName,
			HasAnomaly:    a.HasAnomaly,
			CreatedAt:     a.CreatedAt,
		})
	}
	return rows
}
