package checklist

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
)

// Draft is a checklist being authored. It is not safe for concurrent use;
// callers serialise access (see service.ChecklistService).
//
// Every operation validates its arguments before touching state, so a failed
// call leaves the draft exactly as it was.
type Draft struct {
	name        string
	expiresAt   *time.Time
	companyIDs  []int
	employeeIDs []string

	order      []string
	categories map[string]*categoryRecord
	questions  map[string]*questionRecord
	options    map[string]*optionRecord

	newID func() string
}

// New returns a draft in its fresh default state
func New() *Draft {
	d := &Draft{newID: uuid.NewString}
	d.Reset()
	return d
}

// Reset returns the draft to its fresh default state: no name and one
// unnamed category holding a single required TEXT question
func (d *Draft) Reset() {
	d.clear()
	c := d.categories[d.AddCategory()]
	d.questions[c.questions[0]].required = true
}

func (d *Draft) clear() {
	d.name = ""
	d.expiresAt = nil
	d.companyIDs = nil
	d.employeeIDs = nil
	d.order = nil
	d.categories = make(map[string]*categoryRecord)
	d.questions = make(map[string]*questionRecord)
	d.options = make(map[string]*optionRecord)
}

func (d *Draft) Name() string { return d.name }

func (d *Draft) ExpiresAt() *time.Time {
	if d.expiresAt == nil {
		return nil
	}
	t := *d.expiresAt
	return &t
}

func (d *Draft) CompanyIDs() []int { return slices.Clone(d.companyIDs) }

func (d *Draft) EmployeeIDs() []string { return slices.Clone(d.employeeIDs) }

func (d *Draft) SetName(name string) {
	d.name = name
}

func (d *Draft) SetExpiry(t *time.Time) {
	if t == nil {
		d.expiresAt = nil
		return
	}
	v := t.UTC()
	d.expiresAt = &v
}

// SetCompanies replaces the associated company set
func (d *Draft) SetCompanies(ids []int) error {
	for _, id := range ids {
		if id <= 0 {
			return apperr.Validation("invalid company id %d", id)
		}
	}
	d.companyIDs = uniqueSorted(ids)
	return nil
}

// SetEmployees replaces the associated employee set
func (d *Draft) SetEmployees(ids []string) error {
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return apperr.Validation("employee id must not be empty")
		}
	}
	d.employeeIDs = uniqueSorted(ids)
	return nil
}

// CategoryIDAt returns the id of the category at index
func (d *Draft) CategoryIDAt(index int) (string, bool) {
	if index < 0 || index >= len(d.order) {
		return "", false
	}
	return d.order[index], true
}

// QuestionIDAt returns the id of the question at index within a category
func (d *Draft) QuestionIDAt(categoryID string, index int) (string, bool) {
	c, ok := d.categories[categoryID]
	if !ok || index < 0 || index >= len(c.questions) {
		return "", false
	}
	return c.questions[index], true
}

// AddCategory appends a category holding one default TEXT question
func (d *Draft) AddCategory() string {
	c := &categoryRecord{id: d.newID()}
	d.categories[c.id] = c
	d.order = append(d.order, c.id)
	d.appendQuestion(c)
	return c.id
}

// RemoveCategory removes a category with all of its questions and options
func (d *Draft) RemoveCategory(id string) error {
	c, err := d.category(id)
	if err != nil {
		return err
	}
	for _, qid := range c.questions {
		d.dropQuestion(qid)
	}
	delete(d.categories, id)
	d.order = slices.DeleteFunc(d.order, func(s string) bool { return s == id })
	return nil
}

func (d *Draft) SetCategoryName(id, name string) error {
	c, err := d.category(id)
	if err != nil {
		return err
	}
	c.name = name
	return nil
}

// SetCategoryRef points the category at an existing upstream category
func (d *Draft) SetCategoryRef(id, refID string) error {
	c, err := d.category(id)
	if err != nil {
		return err
	}
	c.refID = strings.TrimSpace(refID)
	return nil
}

// ResolveCategoryName points every unreferenced category called name at refID
// and reports how many were updated
func (d *Draft) ResolveCategoryName(name, refID string) int {
	n := 0
	for _, cid := range d.order {
		c := d.categories[cid]
		if c.refID == "" && strings.TrimSpace(c.name) == name {
			c.refID = refID
			n++
		}
	}
	return n
}

// AddQuestion appends a TEXT question at position count+1
func (d *Draft) AddQuestion(categoryID string) (string, error) {
	c, err := d.category(categoryID)
	if err != nil {
		return "", err
	}
	return d.appendQuestion(c), nil
}

// RemoveQuestion removes a question and renumbers its siblings 1..N
func (d *Draft) RemoveQuestion(id string) error {
	q, err := d.question(id)
	if err != nil {
		return err
	}
	c := d.categories[q.category]
	c.questions = slices.DeleteFunc(c.questions, func(s string) bool { return s == id })
	d.dropQuestion(id)
	d.renumber(c)
	return nil
}

// MoveQuestion moves a question to target (1-based) within its category and
// renumbers every sibling. Targets past the end clamp to the last slot.
func (d *Draft) MoveQuestion(id string, target int) error {
	q, err := d.question(id)
	if err != nil {
		return err
	}
	if target <= 0 {
		return apperr.Validation("position must be a positive integer, got %d", target)
	}
	c := d.categories[q.category]
	target = min(target, len(c.questions))

	rest := slices.DeleteFunc(slices.Clone(c.questions), func(s string) bool { return s == id })
	c.questions = slices.Insert(rest, target-1, id)
	d.renumber(c)
	return nil
}

func (d *Draft) SetQuestionText(id, text string) error {
	q, err := d.question(id)
	if err != nil {
		return err
	}
	q.text = text
	return nil
}

// SetQuestionType changes the type; leaving MULTIPLE_CHOICE drops the options
func (d *Draft) SetQuestionType(id string, t QuestionType) error {
	q, err := d.question(id)
	if err != nil {
		return err
	}
	if !t.Valid() {
		return apperr.Validation("unknown question type %q", t)
	}
	if t != TypeMultipleChoice {
		for _, oid := range q.options {
			delete(d.options, oid)
		}
		q.options = nil
	}
	q.qtype = t
	return nil
}

func (d *Draft) SetQuestionRequired(id string, required bool) error {
	q, err := d.question(id)
	if err != nil {
		return err
	}
	q.required = required
	return nil
}

func (d *Draft) SetQuestionIAPrompt(id, prompt string) error {
	q, err := d.question(id)
	if err != nil {
		return err
	}
	q.iaPrompt = prompt
	return nil
}

// AddOption appends an empty, non-anomalous option to a multiple-choice question
func (d *Draft) AddOption(questionID string) (string, error) {
	q, err := d.question(questionID)
	if err != nil {
		return "", err
	}
	if q.qtype != TypeMultipleChoice {
		return "", apperr.Validation("options are only allowed on multiple choice questions")
	}
	o := &optionRecord{id: d.newID(), question: q.id, level: LevelNone}
	d.options[o.id] = o
	q.options = append(q.options, o.id)
	return o.id, nil
}

func (d *Draft) RemoveOption(id string) error {
	o, err := d.option(id)
	if err != nil {
		return err
	}
	q := d.questions[o.question]
	q.options = slices.DeleteFunc(q.options, func(s string) bool { return s == id })
	delete(d.options, id)
	return nil
}

func (d *Draft) SetOptionValue(id, value string) error {
	o, err := d.option(id)
	if err != nil {
		return err
	}
	o.value = value
	return nil
}

// SetOptionLevel sets the anomaly level. Setting one level replaces the other;
// NONE clears the anomaly flag.
func (d *Draft) SetOptionLevel(id string, level AnomalyLevel) error {
	o, err := d.option(id)
	if err != nil {
		return err
	}
	if !level.Valid() {
		return apperr.Validation("unknown anomaly level %q", level)
	}
	o.level = level
	return nil
}

// Snapshot returns an immutable copy of the draft in display order
func (d *Draft) Snapshot() Checklist {
	cl := Checklist{
		Name:        d.name,
		CompanyIDs:  slices.Clone(d.companyIDs),
		EmployeeIDs: slices.Clone(d.employeeIDs),
		Categories:  make([]Category, 0, len(d.order)),
	}
	if cl.CompanyIDs == nil {
		cl.CompanyIDs = []int{}
	}
	if cl.EmployeeIDs == nil {
		cl.EmployeeIDs = []string{}
	}
	if d.expiresAt != nil {
		t := *d.expiresAt
		cl.ExpiresAt = &t
	}
	for _, cid := range d.order {
		c := d.categories[cid]
		cat := Category{ID: c.id, Name: c.name, RefID: c.refID, Questions: make([]Question, 0, len(c.questions))}
		for _, qid := range c.questions {
			q := d.questions[qid]
			question := Question{
				ID:       q.id,
				Text:     q.text,
				Type:     q.qtype,
				Required: q.required,
				Position: q.position,
				IAPrompt: q.iaPrompt,
				Options:  make([]Option, 0, len(q.options)),
			}
			for _, oid := range q.options {
				o := d.options[oid]
				question.Options = append(question.Options, Option{ID: o.id, Value: o.value, Level: o.level})
			}
			cat.Questions = append(cat.Questions, question)
		}
		cl.Categories = append(cl.Categories, cat)
	}
	return cl
}

// FromSnapshot rebuilds a draft from a snapshot. Questions are ordered by their
// stored position (ties keep snapshot order) and renumbered densely; missing ids
// are generated.
func FromSnapshot(cl Checklist) (*Draft, error) {
	d := &Draft{newID: uuid.NewString}
	d.clear()
	d.name = cl.Name
	d.SetExpiry(cl.ExpiresAt)
	if err := d.SetCompanies(cl.CompanyIDs); err != nil {
		return nil, err
	}
	if err := d.SetEmployees(cl.EmployeeIDs); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	id := func(s string) (string, error) {
		if s == "" {
			s = d.newID()
		}
		if seen[s] {
			return "", apperr.Validation("duplicate id %q in snapshot", s)
		}
		seen[s] = true
		return s, nil
	}

	for _, cat := range cl.Categories {
		cid, err := id(cat.ID)
		if err != nil {
			return nil, err
		}
		c := &categoryRecord{id: cid, name: cat.Name, refID: cat.RefID}
		d.categories[cid] = c
		d.order = append(d.order, cid)

		questions := slices.Clone(cat.Questions)
		slices.SortStableFunc(questions, func(a, b Question) int { return a.Position - b.Position })
		for _, question := range questions {
			qid, err := id(question.ID)
			if err != nil {
				return nil, err
			}
			qtype := question.Type
			if !qtype.Valid() {
				return nil, apperr.Validation("unknown question type %q", qtype)
			}
			q := &questionRecord{
				id:       qid,
				category: cid,
				text:     question.Text,
				qtype:    qtype,
				required: question.Required,
				iaPrompt: question.IAPrompt,
			}
			if qtype == TypeMultipleChoice {
				for _, opt := range question.Options {
					oid, err := id(opt.ID)
					if err != nil {
						return nil, err
					}
					level := opt.Level
					if level == "" {
						level = LevelNone
					}
					if !level.Valid() {
						return nil, apperr.Validation("unknown anomaly level %q", level)
					}
					d.options[oid] = &optionRecord{id: oid, question: qid, value: opt.Value, level: level}
					q.options = append(q.options, oid)
				}
			}
			d.questions[qid] = q
			c.questions = append(c.questions, qid)
		}
		d.renumber(c)
	}
	return d, nil
}

func (d *Draft) appendQuestion(c *categoryRecord) string {
	q := &questionRecord{
		id:       d.newID(),
		category: c.id,
		qtype:    TypeText,
		position: len(c.questions) + 1,
	}
	d.questions[q.id] = q
	c.questions = append(c.questions, q.id)
	return q.id
}

func (d *Draft) dropQuestion(id string) {
	q := d.questions[id]
	if q == nil {
		return
	}
	for _, oid := range q.options {
		delete(d.options, oid)
	}
	delete(d.questions, id)
}

func (d *Draft) renumber(c *categoryRecord) {
	for i, qid := range c.questions {
		d.questions[qid].position = i + 1
	}
}

func (d *Draft) category(id string) (*categoryRecord, error) {
	c, ok := d.categories[id]
	if !ok {
		return nil, apperr.Validation("category %q not found", id)
	}
	return c, nil
}

func (d *Draft) question(id string) (*questionRecord, error) {
	q, ok := d.questions[id]
	if !ok {
		return nil, apperr.Validation("question %q not found", id)
	}
	return q, nil
}

func (d *Draft) option(id string) (*optionRecord, error) {
	o, ok := d.options[id]
	if !ok {
		return nil, apperr.Validation("option %q not found", id)
	}
	return o, nil
}

func uniqueSorted[T int | string](in []T) []T {
	if len(in) == 0 {
		return nil
	}
	out := slices.Clone(in)
	slices.Sort(out)
	return slices.Compact(out)
}
