package repository

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// AttemptRepository 进行中考试会话的存储，带 TTL，过期自动清理
type AttemptRepository struct {
	RDB *redis.Client
}

func NewAttemptRepository(rdb *redis.Client) *AttemptRepository {
	return &AttemptRepository{RDB: rdb}
}

func attemptKey(attemptID string) string {
	return "paper:attempt:" + attemptID
}

func (r *AttemptRepository) Put(ctx context.Context, attemptID string, blob []byte, ttl time.Duration) error {
	return r.RDB.Set(ctx, attemptKey(attemptID), blob, ttl).Err()
}

func (r *AttemptRepository) Get(ctx context.Context, attemptID string) ([]byte, error) {
	blob, err := r.RDB.Get(ctx, attemptKey(attemptID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return blob, err
}
