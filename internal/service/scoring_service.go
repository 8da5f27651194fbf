package service

import (
	"math"

	"smartpaper_backend/internal/model"
)

// ScorePaper 对一份试卷判分。只累计选择题：答案与 correctAnswer 完全一致得满分，
// 其余（含未作答）计零分；主观题既不进分子也不进分母。
// 纯函数，相同输入必得相同输出。
func ScorePaper(paper *model.QuestionPaper, answers map[string]string) model.Score {
	var obtained, total float64

	for _, sec := range paper.Sections {
		for _, q := range sec.Questions {
			if !q.IsMCQ() {
				continue
			}
			total += q.Marks
			if answer, ok := answers[q.ID]; ok && answer == q.CorrectAnswer {
				obtained += q.Marks
			}
		}
	}

	return model.Score{
		Obtained:   obtained,
		Total:      total,
		Percentage: percentage(obtained, total),
	}
}

// ScoreForConfig 按配置决定是否判分：纯主观卷走自评模式，不产生分数
func ScoreForConfig(cfg model.PaperConfig, paper *model.QuestionPaper, answers map[string]string) *model.Score {
	if cfg.Type == model.PaperSubjective {
		return nil
	}
	score := ScorePaper(paper, answers)
	return &score
}

// percentage 四舍五入取整；没有选择题时定义为 0，不产生 NaN
func percentage(obtained, total float64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(obtained / total * 100))
}

// QuestionReview 单题回顾视图，选择题给出对错，主观题给参考答案自评
type QuestionReview struct {
	QuestionID    string  `json:"questionId"`
	Type          string  `json:"type"`
	Marks         float64 `json:"marks"`
	UserAnswer    string  `json:"userAnswer"`
	CorrectAnswer string  `json:"correctAnswer,omitempty"`
	ModelAnswer   string  `json:"modelAnswer,omitempty"`
	Answered      bool    `json:"answered"`
	Correct       bool    `json:"correct"` // 主观题恒为 false，自评不计入
}

// ReviewPaper 生成逐题回顾，题型判定与判分引擎共用同一套容错逻辑
func ReviewPaper(paper *model.QuestionPaper, answers map[string]string) []QuestionReview {
	reviews := make([]QuestionReview, 0, paper.QuestionCount())

	for _, sec := range paper.Sections {
		for _, q := range sec.Questions {
			answer, answered := answers[q.ID]
			review := QuestionReview{
				QuestionID: q.ID,
				Type:       string(q.EffectiveType()),
				Marks:      q.Marks,
				UserAnswer: answer,
				Answered:   answered,
			}
			if q.IsMCQ() {
				review.CorrectAnswer = q.CorrectAnswer
				review.Correct = answered && answer == q.CorrectAnswer
			} else {
				review.ModelAnswer = q.ModelAnswer
			}
			reviews = append(reviews, review)
		}
	}

	return reviews
}
