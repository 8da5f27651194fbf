package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"smartpaper_backend/internal/model"
)

// ParsePaperResponse 解析并归一化生成器的原始输出。
// 三步走：语法解析、容错题型归一、结构约束校验。任何一步失败都整卷拒绝，
// 不接受部分合法的试卷。对已归一化的输出重复调用结果不变。
func ParsePaperResponse(raw string) (*model.QuestionPaper, error) {
	text := stripCodeFence(strings.TrimSpace(raw))
	if text == "" {
		return nil, &MalformedResponseError{Cause: fmt.Errorf("empty response")}
	}

	var paper model.QuestionPaper
	if err := json.Unmarshal([]byte(text), &paper); err != nil {
		return nil, &MalformedResponseError{Cause: err}
	}
	if len(paper.Sections) == 0 {
		return nil, &MalformedResponseError{Cause: fmt.Errorf("paper has no sections")}
	}

	normalizePaper(&paper)

	if err := validatePaper(&paper); err != nil {
		return nil, err
	}

	return &paper, nil
}

// stripCodeFence 去掉生成器偶尔包裹的 markdown 代码块标记
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// normalizePaper 把容错判定的题型写回 type 字段，统一答案键大小写。
// 归一化必须幂等，否则重复解析会产生不同的试卷。
func normalizePaper(paper *model.QuestionPaper) {
	for si := range paper.Sections {
		for qi := range paper.Sections[si].Questions {
			q := &paper.Sections[si].Questions[qi]
			effective := q.EffectiveType()
			q.Type = string(effective)
			if effective == model.QuestionMCQ {
				q.CorrectAnswer = strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
			} else {
				q.Options = nil
				q.CorrectAnswer = ""
			}
		}
	}
}

// validatePaper 逐题校验结构约束，第一处违规即失败并带出题目 id
func validatePaper(paper *model.QuestionPaper) error {
	seen := make(map[string]bool)

	for _, sec := range paper.Sections {
		for _, q := range sec.Questions {
			if q.ID == "" {
				return &SchemaViolationError{Reason: "question id is empty"}
			}
			if seen[q.ID] {
				return &SchemaViolationError{QuestionID: q.ID, Reason: "duplicate question id"}
			}
			seen[q.ID] = true

			if q.Marks <= 0 {
				return &SchemaViolationError{QuestionID: q.ID, Reason: fmt.Sprintf("marks must be positive, got %g", q.Marks)}
			}

			if q.IsMCQ() {
				if err := validateMCQ(&q); err != nil {
					return err
				}
			} else if strings.TrimSpace(q.ModelAnswer) == "" {
				return &SchemaViolationError{QuestionID: q.ID, Reason: "subjective question is missing a model answer"}
			}
		}
	}

	return nil
}

func validateMCQ(q *model.Question) error {
	if len(q.Options) != model.MCQOptionCount {
		return &SchemaViolationError{
			QuestionID: q.ID,
			Reason:     fmt.Sprintf("expected exactly %d options, got %d", model.MCQOptionCount, len(q.Options)),
		}
	}

	distinct := make(map[string]bool, len(q.Options))
	for _, opt := range q.Options {
		if distinct[opt] {
			return &SchemaViolationError{QuestionID: q.ID, Reason: "options are not distinct"}
		}
		distinct[opt] = true
	}

	for _, key := range model.MCQOptionKeys {
		if q.CorrectAnswer == key {
			return nil
		}
	}
	return &SchemaViolationError{
		QuestionID: q.ID,
		Reason:     fmt.Sprintf("correctAnswer must be one of A-D, got %q", q.CorrectAnswer),
	}
}
