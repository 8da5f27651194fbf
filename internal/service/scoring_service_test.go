package service

import (
	"testing"

	"smartpaper_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func mixedPaper() *model.QuestionPaper {
	return &model.QuestionPaper{
		Title: "Mathematics Paper",
		Sections: []model.Section{
			{
				Name:  "Section A",
				Marks: 6,
				Questions: []model.Question{
					{ID: "q1", Text: "2+2=?", Type: "mcq", Marks: 6, Options: []string{"3", "4", "5", "6"}, CorrectAnswer: "B"},
				},
			},
			{
				Name:  "Section B",
				Marks: 4,
				Questions: []model.Question{
					{ID: "q2", Text: "Explain fractions.", Type: "subjective", Marks: 4, ModelAnswer: "A fraction represents a part of a whole."},
				},
			},
		},
	}
}

func TestScorePaper(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]string
		want    model.Score
	}{
		{
			name:    "correct answer earns full marks",
			answers: map[string]string{"q1": "B", "q2": "my essay"},
			want:    model.Score{Obtained: 6, Total: 6, Percentage: 100},
		},
		{
			name:    "wrong answer earns zero",
			answers: map[string]string{"q1": "A"},
			want:    model.Score{Obtained: 0, Total: 6, Percentage: 0},
		},
		{
			name:    "unanswered counts as zero",
			answers: map[string]string{},
			want:    model.Score{Obtained: 0, Total: 6, Percentage: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScorePaper(mixedPaper(), tt.answers)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScorePaperSubjectiveExcludedFromTotal(t *testing.T) {
	// 主观题不进分母：总分 10 的卷子，选择题只占 6
	score := ScorePaper(mixedPaper(), map[string]string{"q1": "B"})
	assert.Equal(t, 6.0, score.Total)
	assert.Equal(t, 100, score.Percentage)
}

func TestScorePaperNoMCQ(t *testing.T) {
	paper := &model.QuestionPaper{
		Sections: []model.Section{
			{
				Name: "Essays",
				Questions: []model.Question{
					{ID: "q1", Type: "subjective", Marks: 10, ModelAnswer: "ref"},
				},
			},
		},
	}
	score := ScorePaper(paper, map[string]string{"q1": "anything"})
	assert.Equal(t, model.Score{Obtained: 0, Total: 0, Percentage: 0}, score)
}

func TestScorePaperPercentageRounding(t *testing.T) {
	paper := &model.QuestionPaper{
		Sections: []model.Section{
			{
				Name: "A",
				Questions: []model.Question{
					{ID: "q1", Type: "mcq", Marks: 1, Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "A"},
					{ID: "q2", Type: "mcq", Marks: 1, Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "A"},
					{ID: "q3", Type: "mcq", Marks: 1, Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "A"},
				},
			},
		},
	}
	// 1/3 -> 33.33 四舍五入到 33
	score := ScorePaper(paper, map[string]string{"q1": "A"})
	assert.Equal(t, 33, score.Percentage)
	// 2/3 -> 66.67 四舍五入到 67
	score = ScorePaper(paper, map[string]string{"q1": "A", "q2": "A"})
	assert.Equal(t, 67, score.Percentage)
}

func TestScorePaperDeterministic(t *testing.T) {
	answers := map[string]string{"q1": "B"}
	first := ScorePaper(mixedPaper(), answers)
	second := ScorePaper(mixedPaper(), answers)
	assert.Equal(t, first, second)
}

func TestScoreForConfig(t *testing.T) {
	paper := mixedPaper()
	answers := map[string]string{"q1": "B"}

	score := ScoreForConfig(model.PaperConfig{Type: model.PaperSubjective}, paper, answers)
	assert.Nil(t, score, "pure subjective papers are self-assessed, no score")

	score = ScoreForConfig(model.PaperConfig{Type: model.PaperMixed}, paper, answers)
	assert.NotNil(t, score)
	assert.Equal(t, 100, score.Percentage)
}

func TestReviewPaper(t *testing.T) {
	reviews := ReviewPaper(mixedPaper(), map[string]string{"q1": "B"})
	assert.Len(t, reviews, 2)

	assert.Equal(t, "q1", reviews[0].QuestionID)
	assert.Equal(t, "mcq", reviews[0].Type)
	assert.True(t, reviews[0].Answered)
	assert.True(t, reviews[0].Correct)
	assert.Equal(t, "B", reviews[0].CorrectAnswer)

	assert.Equal(t, "q2", reviews[1].QuestionID)
	assert.Equal(t, "subjective", reviews[1].Type)
	assert.False(t, reviews[1].Answered)
	assert.False(t, reviews[1].Correct, "subjective questions never count as correct")
	assert.Equal(t, "A fraction represents a part of a whole.", reviews[1].ModelAnswer)
}
