package model

import "strings"

// PaperType 试卷整体类型
type PaperType string

const (
	PaperMCQ        PaperType = "mcq"
	PaperSubjective PaperType = "subjective"
	PaperMixed      PaperType = "mixed"
)

// QuestionType 单题类型，只允许 mcq / subjective 两种小写标记
type QuestionType string

const (
	QuestionMCQ        QuestionType = "mcq"
	QuestionSubjective QuestionType = "subjective"
)

// MCQOptionKeys 选择题答案键，正确答案必须是其中之一
var MCQOptionKeys = []string{"A", "B", "C", "D"}

// MCQOptionCount 每道选择题固定的选项数量
const MCQOptionCount = 4

// PaperConfig 生成试卷的配置，提交生成后不再变更
// swagger:model PaperConfig
type PaperConfig struct {
	Type          PaperType `json:"type" validate:"required,oneof=mcq subjective mixed"`
	Duration      int       `json:"duration" validate:"required,gt=0"`      // 考试时长（分钟）
	QuestionCount int       `json:"questionCount" validate:"required,gt=0"` // 题目数量
	TotalMarks    float64   `json:"totalMarks" validate:"required,gt=0"`    // 总分
	ClassLevel    string    `json:"classLevel" validate:"required"`         // 年级/学段
	Region        string    `json:"region" validate:"required"`             // 地区，题目需符合该地区课标
	Difficulty    int       `json:"difficulty" validate:"required,min=1,max=5"`
	Topics        string    `json:"topics" validate:"required"` // 逗号分隔的知识点
}

// Question 单道题目。type 字段来自生成器输出，不保证干净，
// 所有类型相关的逻辑必须通过 EffectiveType 判定，不能直接比较 Type。
type Question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Marks         float64  `json:"marks"`
	Options       []string `json:"options,omitempty"`
	CorrectAnswer string   `json:"correctAnswer,omitempty"` // 选择题：A/B/C/D
	ModelAnswer   string   `json:"modelAnswer,omitempty"`   // 主观题：参考答案
}

// EffectiveType 容错的题型判定：声明类型包含 mcq（不区分大小写）
// 或者带有非空选项列表的一律按选择题处理，其余按主观题处理。
func (q *Question) EffectiveType() QuestionType {
	if strings.Contains(strings.ToLower(q.Type), string(QuestionMCQ)) || len(q.Options) > 0 {
		return QuestionMCQ
	}
	return QuestionSubjective
}

// IsMCQ 是否按选择题判分
func (q *Question) IsMCQ() bool {
	return q.EffectiveType() == QuestionMCQ
}

// Section 试卷分区，marks 为生成器声明的分区总分（仅展示用，不做复核）
type Section struct {
	Name      string     `json:"name"`
	Marks     float64    `json:"marks"`
	Questions []Question `json:"questions"`
}

// QuestionPaper 完整试卷
type QuestionPaper struct {
	Title        string    `json:"title"`
	Instructions string    `json:"instructions"`
	Sections     []Section `json:"sections"`
}

// MarkTotal 全卷题目分值之和
func (p *QuestionPaper) MarkTotal() float64 {
	var total float64
	for _, sec := range p.Sections {
		for _, q := range sec.Questions {
			total += q.Marks
		}
	}
	return total
}

// QuestionCount 全卷题目数量
func (p *QuestionPaper) QuestionCount() int {
	count := 0
	for _, sec := range p.Sections {
		count += len(sec.Questions)
	}
	return count
}

// Score 客观题判分结果。Total 只累计选择题分值，主观题不进分母。
type Score struct {
	Obtained   float64 `json:"obtained"`
	Total      float64 `json:"total"`
	Percentage int     `json:"percentage"`
}
