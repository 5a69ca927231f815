// Package checklist holds the in-memory model of a checklist being authored:
// ordered categories of ordered questions, multiple-choice options tagged with
// an anomaly level, and the normalised payload sent upstream on submission.
package checklist

import (
	"encoding/json"
	"time"
)

// QuestionType is the kind of answer a question expects
type QuestionType string

const (
	TypeText           QuestionType = "TEXT"
	TypeMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	TypeFileUpload     QuestionType = "FILE_UPLOAD"
)

// Valid reports whether t is one of the known question types
func (t QuestionType) Valid() bool {
	switch t {
	case TypeText, TypeMultipleChoice, TypeFileUpload:
		return true
	}
	return false
}

// WireLabel is the label the upstream API stores for the type
func (t QuestionType) WireLabel() string {
	switch t {
	case TypeMultipleChoice:
		return "Múltipla escolha"
	case TypeFileUpload:
		return "Upload de arquivo"
	default:
		return "Texto"
	}
}

// AnomalyLevel is the severity an option flags when chosen.
// RESTRICTIVE and NON_RESTRICTIVE are exclusive by construction.
type AnomalyLevel string

const (
	LevelNone           AnomalyLevel = "NONE"
	LevelRestrictive    AnomalyLevel = "RESTRICTIVE"
	LevelNonRestrictive AnomalyLevel = "NON_RESTRICTIVE"
)

func (l AnomalyLevel) Valid() bool {
	switch l {
	case LevelNone, LevelRestrictive, LevelNonRestrictive:
		return true
	}
	return false
}

// anomalyStatus maps a level to the upstream anomalyStatus value; "" means absent
func (l AnomalyLevel) anomalyStatus() string {
	switch l {
	case LevelRestrictive:
		return "ANOMALIA_RESTRITIVA"
	case LevelNonRestrictive:
		return "ANOMALIA"
	default:
		return ""
	}
}

// Option is a snapshot of one multiple-choice option
type Option struct {
	ID    string       `json:"id"`
	Value string       `json:"value"`
	Level AnomalyLevel `json:"anomaly_level"`
}

// IsAnomaly is derived from the level and cannot disagree with it
func (o Option) IsAnomaly() bool {
	return o.Level != LevelNone && o.Level != ""
}

// MarshalJSON adds the derived is_anomaly flag for the UI
func (o Option) MarshalJSON() ([]byte, error) {
	type plain Option
	return json.Marshal(struct {
		plain
		IsAnomaly bool `json:"is_anomaly"`
	}{plain(o), o.IsAnomaly()})
}

// Question is a snapshot of one question
type Question struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Type     QuestionType `json:"type"`
	Required bool         `json:"is_required"`
	Position int          `json:"position"`
	IAPrompt string       `json:"ia_prompt,omitempty"`
	Options  []Option     `json:"options"`
}

// Category is a snapshot of one category. RefID points at an existing upstream
// category; when empty the category is created by Name on submission.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	RefID     string     `json:"ref_id,omitempty"`
	Questions []Question `json:"questions"`
}

// Checklist is an immutable snapshot of a draft
type Checklist struct {
	Name        string     `json:"name"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompanyIDs  []int      `json:"company_ids"`
	EmployeeIDs []string   `json:"employee_ids"`
	Categories  []Category `json:"categories"`
}

// arena records

type optionRecord struct {
	id       string
	question string
	value    string
	level    AnomalyLevel
}

type questionRecord struct {
	id       string
	category string
	text     string
	qtype    QuestionType
	required bool
	position int
	iaPrompt string
	options  []string
}

type categoryRecord struct {
	id        string
	name      string
	refID     string
	questions []string
}
