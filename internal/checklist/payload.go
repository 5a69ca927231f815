package checklist

import (
	"strings"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
)

// Answer types derived for the upstream API
const (
	AnswerTypeText  = "Text"
	AnswerTypeImage = "Image"
	AnswerTypeIA    = "IA"
)

// Payload is the body of the upstream create-checklist call
type Payload struct {
	Name         string            `json:"name"`
	ExpiresAt    *time.Time        `json:"expiries_in,omitempty"`
	QuestionList []QuestionPayload `json:"question_list"`
}

// QuestionPayload is one flattened question. CategoryName is kept locally so a
// category without a reference can be created before submission.
type QuestionPayload struct {
	Question       string          `json:"question"`
	CategoryID     string          `json:"category_id"`
	CategoryName   string          `json:"-"`
	Type           string          `json:"type"`
	IsRequired     bool            `json:"isRequired"`
	AnswerType     string          `json:"answerType"`
	IAPrompt       string          `json:"iaPrompt,omitempty"`
	MultipleChoice []ChoicePayload `json:"multiple_choice"`
}

type ChoicePayload struct {
	Choice        string `json:"choice"`
	AnomalyStatus string `json:"anomalyStatus,omitempty"`
}

// ToSubmissionPayload flattens the draft into the upstream payload. Questions
// with blank text and options with blank value are dropped.
func (d *Draft) ToSubmissionPayload() (Payload, error) {
	if strings.TrimSpace(d.name) == "" {
		return Payload{}, apperr.Validation("checklist name is required")
	}

	p := Payload{Name: strings.TrimSpace(d.name), QuestionList: []QuestionPayload{}}
	if d.expiresAt != nil {
		t := *d.expiresAt
		p.ExpiresAt = &t
	}

	for _, cid := range d.order {
		c := d.categories[cid]
		for _, qid := range c.questions {
			q := d.questions[qid]
			text := strings.TrimSpace(q.text)
			if text == "" {
				continue
			}
			entry := QuestionPayload{
				Question:       text,
				CategoryID:     c.refID,
				CategoryName:   strings.TrimSpace(c.name),
				Type:           q.qtype.WireLabel(),
				IsRequired:     q.required,
				AnswerType:     answerType(q),
				IAPrompt:       strings.TrimSpace(q.iaPrompt),
				MultipleChoice: []ChoicePayload{},
			}
			if q.qtype == TypeMultipleChoice {
				for _, oid := range q.options {
					o := d.options[oid]
					value := strings.TrimSpace(o.value)
					if value == "" {
						continue
					}
					entry.MultipleChoice = append(entry.MultipleChoice, ChoicePayload{
						Choice:        value,
						AnomalyStatus: o.level.anomalyStatus(),
					})
				}
			}
			p.QuestionList = append(p.QuestionList, entry)
		}
	}

	if len(p.QuestionList) == 0 {
		return Payload{}, apperr.Validation("checklist must contain at least one question with text")
	}
	return p, nil
}

// UnresolvedCategories returns the distinct names of categories that have
// questions in the payload but no upstream reference, in payload order
func (p Payload) UnresolvedCategories() []string {
	var names []string
	seen := make(map[string]bool)
	for _, q := range p.QuestionList {
		if q.CategoryID != "" || seen[q.CategoryName] {
			continue
		}
		seen[q.CategoryName] = true
		names = append(names, q.CategoryName)
	}
	return names
}

func answerType(q *questionRecord) string {
	switch {
	case q.qtype == TypeFileUpload:
		return AnswerTypeImage
	case strings.TrimSpace(q.iaPrompt) != "":
		return AnswerTypeIA
	default:
		return AnswerTypeText
	}
}
