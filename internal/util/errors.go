package util

import "errors"

var (
	ErrUserNotFound         = errors.New("用户不存在")
	ErrEmailRegistered      = errors.New("该邮箱已被注册")
	ErrInvalidPaperConfig   = errors.New("invalid paper config")
	ErrGenerationInFlight   = errors.New("a generation request is already in flight")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrHistoryEntryNotFound = errors.New("history entry not found")
)
