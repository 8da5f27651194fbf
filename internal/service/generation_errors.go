package service

import (
	"errors"
	"fmt"
)

// 生成流水线的三类终态错误：传输失败、响应无法解析、结构不合规。
// 三类都作为单次失败上抛，不做自动重试，由用户手动重新生成。
var ErrGeneratorUnavailable = errors.New("generator unavailable")

// MalformedResponseError 生成器输出无法解析为结构化数据
type MalformedResponseError struct {
	Cause error
}

func (e *MalformedResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed generator response: %v", e.Cause)
	}
	return "malformed generator response"
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}

// SchemaViolationError 输出能解析但违反结构约束，带上出错题目的 id 便于排查
type SchemaViolationError struct {
	QuestionID string
	Reason     string
}

func (e *SchemaViolationError) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("schema violation: %s", e.Reason)
	}
	return fmt.Sprintf("schema violation in question %q: %s", e.QuestionID, e.Reason)
}
