package checklist

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
)

// Command is one structural or field edit. The concrete types below are the
// only implementations; Apply dispatches on them.
type Command interface {
	command()
}

type SetName struct{ Name string }
type SetExpiry struct{ ExpiresAt *time.Time }
type SetCompanies struct{ CompanyIDs []int }
type SetEmployees struct{ EmployeeIDs []string }

type AddCategory struct{}
type RemoveCategory struct{ CategoryID string }
type SetCategoryName struct{ CategoryID, Name string }
type SetCategoryRef struct{ CategoryID, RefID string }

type AddQuestion struct{ CategoryID string }
type RemoveQuestion struct{ QuestionID string }
type SetText struct{ QuestionID, Text string }
type SetType struct {
	QuestionID string
	Type       QuestionType
}
type SetRequired struct {
	QuestionID string
	Required   bool
}

// SetPosition carries the raw position as entered; Apply parses it.
type SetPosition struct {
	QuestionID string
	Position   string
}
type SetIAPrompt struct{ QuestionID, Prompt string }

type AddOption struct{ QuestionID string }
type RemoveOption struct{ OptionID string }
type SetOptionValue struct{ OptionID, Value string }
type SetOptionLevel struct {
	OptionID string
	Level    AnomalyLevel
}

func (SetName) command()         {}
func (SetExpiry) command()       {}
func (SetCompanies) command()    {}
func (SetEmployees) command()    {}
func (AddCategory) command()     {}
func (RemoveCategory) command()  {}
func (SetCategoryName) command() {}
func (SetCategoryRef) command()  {}
func (AddQuestion) command()     {}
func (RemoveQuestion) command()  {}
func (SetText) command()         {}
func (SetType) command()         {}
func (SetRequired) command()     {}
func (SetPosition) command()     {}
func (SetIAPrompt) command()     {}
func (AddOption) command()       {}
func (RemoveOption) command()    {}
func (SetOptionValue) command()  {}
func (SetOptionLevel) command()  {}

// Result reports what a command produced. CreatedID is set by the Add* commands;
// Position is the final slot after a SetPosition.
type Result struct {
	CreatedID string `json:"created_id,omitempty"`
	Position  int    `json:"position,omitempty"`
}

// Apply is the single reducer for all edits
func (d *Draft) Apply(cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case SetName:
		d.SetName(c.Name)
	case SetExpiry:
		d.SetExpiry(c.ExpiresAt)
	case SetCompanies:
		return Result{}, d.SetCompanies(c.CompanyIDs)
	case SetEmployees:
		return Result{}, d.SetEmployees(c.EmployeeIDs)
	case AddCategory:
		return Result{CreatedID: d.AddCategory()}, nil
	case RemoveCategory:
		return Result{}, d.RemoveCategory(c.CategoryID)
	case SetCategoryName:
		return Result{}, d.SetCategoryName(c.CategoryID, c.Name)
	case SetCategoryRef:
		return Result{}, d.SetCategoryRef(c.CategoryID, c.RefID)
	case AddQuestion:
		id, err := d.AddQuestion(c.CategoryID)
		return Result{CreatedID: id}, err
	case RemoveQuestion:
		return Result{}, d.RemoveQuestion(c.QuestionID)
	case SetText:
		return Result{}, d.SetQuestionText(c.QuestionID, c.Text)
	case SetType:
		return Result{}, d.SetQuestionType(c.QuestionID, c.Type)
	case SetRequired:
		return Result{}, d.SetQuestionRequired(c.QuestionID, c.Required)
	case SetPosition:
		target, err := strconv.Atoi(strings.TrimSpace(c.Position))
		if err != nil || target <= 0 {
			return Result{}, apperr.Validation("position must be a positive integer, got %q", c.Position)
		}
		if err := d.MoveQuestion(c.QuestionID, target); err != nil {
			return Result{}, err
		}
		return Result{Position: d.questions[c.QuestionID].position}, nil
	case SetIAPrompt:
		return Result{}, d.SetQuestionIAPrompt(c.QuestionID, c.Prompt)
	case AddOption:
		id, err := d.AddOption(c.QuestionID)
		return Result{CreatedID: id}, err
	case RemoveOption:
		return Result{}, d.RemoveOption(c.OptionID)
	case SetOptionValue:
		return Result{}, d.SetOptionValue(c.OptionID, c.Value)
	case SetOptionLevel:
		return Result{}, d.SetOptionLevel(c.OptionID, c.Level)
	default:
		return Result{}, apperr.Validation("unsupported command %T", cmd)
	}
	return Result{}, nil
}

// envelope is the JSON shape of a command
type envelope struct {
	Op          string          `json:"op"`
	CategoryID  string          `json:"category_id"`
	QuestionID  string          `json:"question_id"`
	OptionID    string          `json:"option_id"`
	Name        string          `json:"name"`
	RefID       string          `json:"ref_id"`
	Text        string          `json:"text"`
	Type        QuestionType    `json:"type"`
	Required    bool            `json:"required"`
	Position    json.RawMessage `json:"position"`
	Prompt      string          `json:"prompt"`
	Value       string          `json:"value"`
	Level       AnomalyLevel    `json:"level"`
	ExpiresAt   *time.Time      `json:"expires_at"`
	CompanyIDs  []int           `json:"company_ids"`
	EmployeeIDs []string        `json:"employee_ids"`
}

// DecodeCommand decodes {"op": "...", ...} into a Command
func DecodeCommand(data []byte) (Command, error) {
	var e envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, apperr.Validation("invalid command body: %v", err)
	}

	switch e.Op {
	case "set_name":
		return SetName{Name: e.Name}, nil
	case "set_expiry":
		return SetExpiry{ExpiresAt: e.ExpiresAt}, nil
	case "set_companies":
		return SetCompanies{CompanyIDs: e.CompanyIDs}, nil
	case "set_employees":
		return SetEmployees{EmployeeIDs: e.EmployeeIDs}, nil
	case "add_category":
		return AddCategory{}, nil
	case "remove_category":
		return RemoveCategory{CategoryID: e.CategoryID}, nil
	case "set_category_name":
		return SetCategoryName{CategoryID: e.CategoryID, Name: e.Name}, nil
	case "set_category_ref":
		return SetCategoryRef{CategoryID: e.CategoryID, RefID: e.RefID}, nil
	case "add_question":
		return AddQuestion{CategoryID: e.CategoryID}, nil
	case "remove_question":
		return RemoveQuestion{QuestionID: e.QuestionID}, nil
	case "set_text":
		return SetText{QuestionID: e.QuestionID, Text: e.Text}, nil
	case "set_type":
		return SetType{QuestionID: e.QuestionID, Type: e.Type}, nil
	case "set_required":
		return SetRequired{QuestionID: e.QuestionID, Required: e.Required}, nil
	case "set_position":
		return SetPosition{QuestionID: e.QuestionID, Position: rawPosition(e.Position)}, nil
	case "set_ia_prompt":
		return SetIAPrompt{QuestionID: e.QuestionID, Prompt: e.Prompt}, nil
	case "add_option":
		return AddOption{QuestionID: e.QuestionID}, nil
	case "remove_option":
		return RemoveOption{OptionID: e.OptionID}, nil
	case "set_option_value":
		return SetOptionValue{OptionID: e.OptionID, Value: e.Value}, nil
	case "set_option_level":
		return SetOptionLevel{OptionID: e.OptionID, Level: e.Level}, nil
	case "":
		return nil, apperr.Validation("command op is required")
	default:
		return nil, apperr.Validation("unknown command op %q", e.Op)
	}
}

// rawPosition accepts both 3 and "3"
func rawPosition(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}
