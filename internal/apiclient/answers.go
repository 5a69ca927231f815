package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/anomaly"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
)

func (c *Client) ListAnswersWithChecklist(ctx context.Context) ([]models.Answer, error) {
	items := []models.Answer{}
	err := c.do(ctx, call{
		op:     "list_answers",
		method: http.MethodGet,
		path:   "/answers/with-checklist",
		out:    &items,
	})
	return items, err
}

// resolutionWire is the upstream shape of an anomaly resolution
type resolutionWire struct {
	ID                   models.ID `json:"id"`
	AnswerID             models.ID `json:"answer_id"`
	Description          string    `json:"description"`
	ImageURL             string    `json:"imageUrl"`
	Status               string    `json:"status"`
	ResolvedByEmployeeID models.ID `json:"employee_Id"`
}

// FindAnomalyResolution returns the resolution record for an answer. An empty
// body is reported as not found.
func (c *Client) FindAnomalyResolution(ctx context.Context, answerID string) (*anomaly.Record, error) {
	var wire *resolutionWire
	err := c.do(ctx, call{
		op:     "find_anomaly_resolution",
		method: http.MethodGet,
		path:   "/anomaly-resolution",
		query:  url.Values{"answer_id": {answerID}},
		out:    &wire,
	})
	if err != nil {
		return nil, err
	}
	if wire == nil || wire.ID == "" {
		return nil, apperr.NotFound("no anomaly resolution for answer %s", answerID)
	}

	status := anomaly.StatusUnresolved
	if wire.Status != "" {
		if status, err = anomaly.ParseStatus(wire.Status); err != nil {
			return nil, apperr.Transient("upstream sent an unknown anomaly status", err)
		}
	}
	rec := &anomaly.Record{
		ID:                   wire.ID.String(),
		AnswerID:             wire.AnswerID.String(),
		Description:          wire.Description,
		ImageURL:             wire.ImageURL,
		Status:               status,
		ResolvedByEmployeeID: wire.ResolvedByEmployeeID.String(),
	}
	if rec.AnswerID == "" {
		rec.AnswerID = answerID
	}
	return rec, nil
}

func (c *Client) UpdateAnomalyResolution(ctx context.Context, id string, status anomaly.Status, reviewerID string) error {
	return c.do(ctx, call{
		op:     "update_anomaly_resolution",
		method: http.MethodPatch,
		path:   "/anomaly-resolution",
		body: map[string]string{
			"id":          id,
			"status":      string(status),
			"employee_Id": reviewerID,
		},
	})
}
