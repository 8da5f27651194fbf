package model

import "time"

// HistoryCapacity 历史记录上限，超出后淘汰最旧的一条
const HistoryCapacity = 5

// TestHistoryEntry 一次完整的答题记录，写入后不可变。
// 纯主观卷不自动判分，Score 为空（自评模式）。
type TestHistoryEntry struct {
	ID          string            `json:"id"`
	Timestamp   time.Time         `json:"timestamp"`
	Config      PaperConfig       `json:"config"`
	Paper       QuestionPaper     `json:"paper"`
	UserAnswers map[string]string `json:"userAnswers"` // questionId -> 答案（选择题为 A-D，主观题为自由文本）
	Score       *Score            `json:"score,omitempty"`
}
