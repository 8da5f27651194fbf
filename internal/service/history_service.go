package service

import (
	"context"
	"encoding/json"

	"smartpaper_backend/internal/model"
	"smartpaper_backend/internal/util"
	"smartpaper_backend/pkg/logger"

	"go.uber.org/zap"
)

// HistoryStore 历史账本的持久化端口：每个用户一个不透明 blob，
// 只要求 get/set/clear 语义，核心逻辑不直接接触任何具体存储。
type HistoryStore interface {
	Get(ctx context.Context, userID uint) ([]byte, error)
	Set(ctx context.Context, userID uint, blob []byte) error
	Clear(ctx context.Context, userID uint) error
}

// HistoryService 有界的答题历史账本，最近在前，超出容量淘汰最旧的记录
type HistoryService struct {
	store HistoryStore
}

func NewHistoryService(store HistoryStore) *HistoryService {
	return &HistoryService{store: store}
}

// Record 头插一条记录并截断到容量上限。同一 id 重复提交是幂等的：
// 已存在的记录原样返回，不会产生第二条（避免手动提交和倒计时自动提交竞争）。
func (s *HistoryService) Record(ctx context.Context, userID uint, entry model.TestHistoryEntry) (*model.TestHistoryEntry, error) {
	entries := s.load(ctx, userID)

	for i := range entries {
		if entries[i].ID == entry.ID {
			return &entries[i], nil
		}
	}

	entries = append([]model.TestHistoryEntry{entry}, entries...)
	if len(entries) > model.HistoryCapacity {
		entries = entries[:model.HistoryCapacity]
	}

	blob, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	if err := s.store.Set(ctx, userID, blob); err != nil {
		return nil, err
	}

	return &entry, nil
}

// List 按最近在前返回全部记录，没有历史时返回空切片
func (s *HistoryService) List(ctx context.Context, userID uint) ([]model.TestHistoryEntry, error) {
	return s.load(ctx, userID), nil
}

// Find 按 id 查找单条记录
func (s *HistoryService) Find(ctx context.Context, userID uint, entryID string) (*model.TestHistoryEntry, error) {
	for _, entry := range s.load(ctx, userID) {
		if entry.ID == entryID {
			return &entry, nil
		}
	}
	return nil, util.ErrHistoryEntryNotFound
}

// Clear 清空整个账本，单条删除不支持
func (s *HistoryService) Clear(ctx context.Context, userID uint) error {
	return s.store.Clear(ctx, userID)
}

// load 读取并反序列化账本。blob 损坏按空账本处理，
// 只记一条告警，后续写入会覆盖坏数据，不让历史功能整体瘫痪。
func (s *HistoryService) load(ctx context.Context, userID uint) []model.TestHistoryEntry {
	blob, err := s.store.Get(ctx, userID)
	if err != nil {
		logger.Log.Warn("failed to read history blob", zap.Uint("userID", userID), zap.Error(err))
		return []model.TestHistoryEntry{}
	}
	if len(blob) == 0 {
		return []model.TestHistoryEntry{}
	}

	var entries []model.TestHistoryEntry
	if err := json.Unmarshal(blob, &entries); err != nil {
		logger.Log.Warn("corrupt history blob, treating as empty", zap.Uint("userID", userID), zap.Error(err))
		return []model.TestHistoryEntry{}
	}
	return entries
}
