package service

import (
	"encoding/json"
	"errors"
	"testing"

	"smartpaper_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPaperJSON = `{
	"title": "Physics Paper",
	"instructions": "Answer all questions.",
	"sections": [
		{
			"name": "Section A",
			"marks": 4,
			"questions": [
				{"id": "q1", "text": "Unit of force?", "type": "mcq", "marks": 4,
				 "options": ["Newton", "Joule", "Watt", "Pascal"], "correctAnswer": "A"}
			]
		},
		{
			"name": "Section B",
			"marks": 6,
			"questions": [
				{"id": "q2", "text": "State Newton's first law.", "type": "subjective", "marks": 6,
				 "options": [], "modelAnswer": "A body remains at rest or in uniform motion unless acted upon by a force."}
			]
		}
	]
}`

func TestParsePaperResponseValid(t *testing.T) {
	paper, err := ParsePaperResponse(validPaperJSON)
	require.NoError(t, err)
	assert.Equal(t, "Physics Paper", paper.Title)
	assert.Equal(t, 2, paper.QuestionCount())
	assert.Equal(t, 10.0, paper.MarkTotal())
}

func TestParsePaperResponseStripsCodeFence(t *testing.T) {
	fenced := "```json\n" + validPaperJSON + "\n```"
	paper, err := ParsePaperResponse(fenced)
	require.NoError(t, err)
	assert.Equal(t, "Physics Paper", paper.Title)

	fenced = "```\n" + validPaperJSON + "\n```"
	paper, err = ParsePaperResponse(fenced)
	require.NoError(t, err)
	assert.Equal(t, "Physics Paper", paper.Title)
}

func TestParsePaperResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty response", ""},
		{"whitespace only", "   \n\t  "},
		{"not json", "I could not generate the paper, sorry."},
		{"truncated json", `{"title": "Paper", "sections": [`},
		{"no sections", `{"title": "Paper", "instructions": "x", "sections": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePaperResponse(tt.raw)
			var malformed *MalformedResponseError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestParsePaperResponseNormalization(t *testing.T) {
	raw := `{
		"title": "P", "instructions": "x",
		"sections": [{
			"name": "A", "marks": 10,
			"questions": [
				{"id": "q1", "text": "t", "type": "MCQ (Multiple Choice)", "marks": 5,
				 "options": ["w", "x", "y", "z"], "correctAnswer": " b "},
				{"id": "q2", "text": "t", "type": "Short Answer", "marks": 5,
				 "options": [], "modelAnswer": "ref", "correctAnswer": "A"}
			]
		}]
	}`

	paper, err := ParsePaperResponse(raw)
	require.NoError(t, err)

	q1 := paper.Sections[0].Questions[0]
	assert.Equal(t, "mcq", q1.Type, "declared type containing mcq is classified as mcq")
	assert.Equal(t, "B", q1.CorrectAnswer, "answer key is trimmed and upper-cased")

	q2 := paper.Sections[0].Questions[1]
	assert.Equal(t, "subjective", q2.Type)
	assert.Empty(t, q2.Options, "subjective questions carry no options")
	assert.Empty(t, q2.CorrectAnswer, "stray answer keys on subjective questions are dropped")
}

func TestParsePaperResponseOptionsImplyMCQ(t *testing.T) {
	// 声明类型是乱的，但带了选项列表，按选择题处理并走选择题校验
	raw := `{
		"title": "P", "instructions": "x",
		"sections": [{
			"name": "A", "marks": 5,
			"questions": [
				{"id": "q1", "text": "t", "type": "unknown", "marks": 5,
				 "options": ["w", "x", "y", "z"], "correctAnswer": "C"}
			]
		}]
	}`

	paper, err := ParsePaperResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, "mcq", paper.Sections[0].Questions[0].Type)
}

func TestParsePaperResponseIdempotent(t *testing.T) {
	first, err := ParsePaperResponse(validPaperJSON)
	require.NoError(t, err)

	blob, err := json.Marshal(first)
	require.NoError(t, err)

	second, err := ParsePaperResponse(string(blob))
	require.NoError(t, err)
	assert.Equal(t, first, second, "re-parsing normalized output must not change the paper")
}

func TestParsePaperResponseSchemaViolations(t *testing.T) {
	tests := []struct {
		name       string
		question   string
		questionID string
	}{
		{
			"mcq with three options",
			`{"id": "q9", "text": "t", "type": "mcq", "marks": 5, "options": ["a", "b", "c"], "correctAnswer": "A"}`,
			"q9",
		},
		{
			"mcq with duplicate options",
			`{"id": "q9", "text": "t", "type": "mcq", "marks": 5, "options": ["a", "a", "c", "d"], "correctAnswer": "A"}`,
			"q9",
		},
		{
			"mcq answer outside key range",
			`{"id": "q9", "text": "t", "type": "mcq", "marks": 5, "options": ["a", "b", "c", "d"], "correctAnswer": "E"}`,
			"q9",
		},
		{
			"subjective missing model answer",
			`{"id": "q9", "text": "t", "type": "subjective", "marks": 5, "options": []}`,
			"q9",
		},
		{
			"non positive marks",
			`{"id": "q9", "text": "t", "type": "subjective", "marks": 0, "options": [], "modelAnswer": "ref"}`,
			"q9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := `{"title": "P", "instructions": "x", "sections": [{"name": "A", "marks": 5, "questions": [` + tt.question + `]}]}`
			_, err := ParsePaperResponse(raw)
			var violation *SchemaViolationError
			require.ErrorAs(t, err, &violation)
			assert.Equal(t, tt.questionID, violation.QuestionID, "violation must name the offending question")
		})
	}
}

func TestParsePaperResponseDuplicateQuestionID(t *testing.T) {
	raw := `{
		"title": "P", "instructions": "x",
		"sections": [
			{"name": "A", "marks": 5, "questions": [
				{"id": "q1", "text": "t", "type": "subjective", "marks": 5, "options": [], "modelAnswer": "ref"}
			]},
			{"name": "B", "marks": 5, "questions": [
				{"id": "q1", "text": "t", "type": "subjective", "marks": 5, "options": [], "modelAnswer": "ref"}
			]}
		]
	}`

	_, err := ParsePaperResponse(raw)
	var violation *SchemaViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "q1", violation.QuestionID)
}

func TestParsePaperResponseWholeRejection(t *testing.T) {
	// 一题违规整卷拒绝，不存在只丢弃坏题的部分接受
	raw := `{
		"title": "P", "instructions": "x",
		"sections": [{"name": "A", "marks": 10, "questions": [
			{"id": "q1", "text": "good", "type": "mcq", "marks": 5, "options": ["a", "b", "c", "d"], "correctAnswer": "A"},
			{"id": "q2", "text": "bad", "type": "mcq", "marks": 5, "options": ["a"], "correctAnswer": "A"}
		]}]
	}`

	paper, err := ParsePaperResponse(raw)
	assert.Nil(t, paper)
	assert.Error(t, err)
}

func TestEffectiveType(t *testing.T) {
	tests := []struct {
		declared string
		options  []string
		want     model.QuestionType
	}{
		{"mcq", nil, model.QuestionMCQ},
		{"MCQ", nil, model.QuestionMCQ},
		{"Multiple Choice (mcq)", nil, model.QuestionMCQ},
		{"subjective", nil, model.QuestionSubjective},
		{"essay", nil, model.QuestionSubjective},
		{"", nil, model.QuestionSubjective},
		{"weird", []string{"a", "b", "c", "d"}, model.QuestionMCQ},
	}

	for _, tt := range tests {
		q := model.Question{Type: tt.declared, Options: tt.options}
		assert.Equal(t, tt.want, q.EffectiveType(), "type=%q options=%v", tt.declared, tt.options)
	}
}

func TestMalformedResponseErrorUnwrap(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &MalformedResponseError{Cause: cause}
	assert.ErrorIs(t, err, cause)
}
