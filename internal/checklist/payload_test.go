package checklist

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
)

// safetyDraft builds "Safety" with category "Gates" holding a restrictive
// multiple-choice question
func safetyDraft(t *testing.T) *Draft {
	t.Helper()
	d := New()
	d.SetName("Safety")
	cid, _ := d.CategoryIDAt(0)
	require.NoError(t, d.SetCategoryName(cid, "Gates"))
	require.NoError(t, d.SetCategoryRef(cid, "cat-1"))

	qid, _ := d.QuestionIDAt(cid, 0)
	require.NoError(t, d.SetQuestionText(qid, "Door closed?"))
	require.NoError(t, d.SetQuestionType(qid, TypeMultipleChoice))

	yes, err := d.AddOption(qid)
	require.NoError(t, err)
	require.NoError(t, d.SetOptionValue(yes, "Yes"))
	no, err := d.AddOption(qid)
	require.NoError(t, err)
	require.NoError(t, d.SetOptionValue(no, "No"))
	require.NoError(t, d.SetOptionLevel(no, LevelRestrictive))
	return d
}

func TestSubmissionPayloadSafetyChecklist(t *testing.T) {
	p, err := safetyDraft(t).ToSubmissionPayload()
	require.NoError(t, err)

	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"name": "Safety",
		"question_list": [{
			"question": "Door closed?",
			"category_id": "cat-1",
			"type": "Múltipla escolha",
			"isRequired": true,
			"answerType": "Text",
			"multiple_choice": [
				{"choice": "Yes"},
				{"choice": "No", "anomalyStatus": "ANOMALIA_RESTRITIVA"}
			]
		}]
	}`, string(data))
}

func TestSubmissionPayloadIsDeterministic(t *testing.T) {
	d := safetyDraft(t)
	exp := time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)
	d.SetExpiry(&exp)

	first, err := d.ToSubmissionPayload()
	require.NoError(t, err)
	second, err := d.ToSubmissionPayload()
	require.NoError(t, err)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	assert.Equal(t, a, b)
	assert.Contains(t, string(a), `"expiries_in":"2026-12-31T23:59:00Z"`)
}

func TestAnomalyStatusMapping(t *testing.T) {
	tests := []struct {
		level AnomalyLevel
		want  string
	}{
		{LevelRestrictive, "ANOMALIA_RESTRITIVA"},
		{LevelNonRestrictive, "ANOMALIA"},
		{LevelNone, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			d := safetyDraft(t)
			qid, _ := d.QuestionIDAt(d.order[0], 0)
			oid := d.questions[qid].options[1]
			require.NoError(t, d.SetOptionLevel(oid, tt.level))

			p, err := d.ToSubmissionPayload()
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.QuestionList[0].MultipleChoice[1].AnomalyStatus)
		})
	}
}

func TestSubmissionPayloadValidation(t *testing.T) {
	t.Run("empty name", func(t *testing.T) {
		d := safetyDraft(t)
		d.SetName("   ")
		_, err := d.ToSubmissionPayload()
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("only blank questions", func(t *testing.T) {
		d := New()
		d.SetName("Safety")
		cid := d.AddCategory()
		qid, _ := d.QuestionIDAt(cid, 0)
		require.NoError(t, d.SetQuestionText(qid, "  "))

		_, err := d.ToSubmissionPayload()
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("fresh draft", func(t *testing.T) {
		d := New()
		d.SetName("Safety")
		_, err := d.ToSubmissionPayload()
		assert.True(t, apperr.IsValidation(err))
	})

	t.Run("no categories", func(t *testing.T) {
		d := New()
		d.SetName("Safety")
		cid, _ := d.CategoryIDAt(0)
		require.NoError(t, d.RemoveCategory(cid))
		_, err := d.ToSubmissionPayload()
		assert.True(t, apperr.IsValidation(err))
	})
}

func TestSubmissionPayloadSkipsBlankEntries(t *testing.T) {
	d := safetyDraft(t)
	cid := d.order[0]
	blank, err := d.AddQuestion(cid)
	require.NoError(t, err)
	require.NoError(t, d.SetQuestionText(blank, ""))

	qid, _ := d.QuestionIDAt(cid, 0)
	_, err = d.AddOption(qid)
	require.NoError(t, err)

	p, err := d.ToSubmissionPayload()
	require.NoError(t, err)
	require.Len(t, p.QuestionList, 1)
	assert.Len(t, p.QuestionList[0].MultipleChoice, 2)
}

func TestSubmissionPayloadAnswerType(t *testing.T) {
	tests := []struct {
		name   string
		qtype  QuestionType
		prompt string
		want   string
		label  string
	}{
		{name: "text", qtype: TypeText, want: AnswerTypeText, label: "Texto"},
		{name: "text with prompt", qtype: TypeText, prompt: "Summarise", want: AnswerTypeIA, label: "Texto"},
		{name: "upload", qtype: TypeFileUpload, want: AnswerTypeImage, label: "Upload de arquivo"},
		{name: "upload with prompt", qtype: TypeFileUpload, prompt: "Check the photo", want: AnswerTypeImage, label: "Upload de arquivo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			d.SetName("Audit")
			cid := d.AddCategory()
			qid, _ := d.QuestionIDAt(cid, 0)
			require.NoError(t, d.SetQuestionText(qid, "Q"))
			require.NoError(t, d.SetQuestionType(qid, tt.qtype))
			require.NoError(t, d.SetQuestionIAPrompt(qid, tt.prompt))

			p, err := d.ToSubmissionPayload()
			require.NoError(t, err)
			q := p.QuestionList[0]
			assert.Equal(t, tt.want, q.AnswerType)
			assert.Equal(t, tt.label, q.Type)
			assert.NotNil(t, q.MultipleChoice)
		})
	}
}

func TestUnresolvedCategories(t *testing.T) {
	d := New()
	d.SetName("Audit")
	for i, name := range []string{"Gates", "Fire", "Gates"} {
		cid, ok := d.CategoryIDAt(i)
		if !ok {
			cid = d.AddCategory()
		}
		require.NoError(t, d.SetCategoryName(cid, name))
		qid, _ := d.QuestionIDAt(cid, 0)
		require.NoError(t, d.SetQuestionText(qid, name+"?"))
	}
	require.NoError(t, d.SetCategoryRef(d.order[1], "cat-fire"))

	p, err := d.ToSubmissionPayload()
	require.NoError(t, err)
	assert.Equal(t, []string{"Gates"}, p.UnresolvedCategories())

	assert.Equal(t, 2, d.ResolveCategoryName("Gates", "cat-gates"))
	p, err = d.ToSubmissionPayload()
	require.NoError(t, err)
	assert.Empty(t, p.UnresolvedCategories())
	for _, q := range p.QuestionList {
		assert.NotEmpty(t, q.CategoryID)
	}
}
