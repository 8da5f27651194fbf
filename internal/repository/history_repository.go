package repository

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// HistoryRepository 基于 Redis 的历史账本存储，每个用户一个 JSON blob
type HistoryRepository struct {
	RDB *redis.Client
}

func NewHistoryRepository(rdb *redis.Client) *HistoryRepository {
	return &HistoryRepository{RDB: rdb}
}

func historyKey(userID uint) string {
	return fmt.Sprintf("paper:history:%d", userID)
}

func (r *HistoryRepository) Get(ctx context.Context, userID uint) ([]byte, error) {
	blob, err := r.RDB.Get(ctx, historyKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return blob, err
}

func (r *HistoryRepository) Set(ctx context.Context, userID uint, blob []byte) error {
	return r.RDB.Set(ctx, historyKey(userID), blob, 0).Err()
}

func (r *HistoryRepository) Clear(ctx context.Context, userID uint) error {
	return r.RDB.Del(ctx, historyKey(userID)).Err()
}
