package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"smartpaper_backend/internal/model"
	"smartpaper_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistoryStore 内存版 HistoryStore，测试用
type fakeHistoryStore struct {
	blobs  map[uint][]byte
	getErr error
}

func newFakeHistoryStore() *fakeHistoryStore {
	return &fakeHistoryStore{blobs: make(map[uint][]byte)}
}

func (s *fakeHistoryStore) Get(ctx context.Context, userID uint) ([]byte, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.blobs[userID], nil
}

func (s *fakeHistoryStore) Set(ctx context.Context, userID uint, blob []byte) error {
	s.blobs[userID] = blob
	return nil
}

func (s *fakeHistoryStore) Clear(ctx context.Context, userID uint) error {
	delete(s.blobs, userID)
	return nil
}

func historyEntry(id string) model.TestHistoryEntry {
	return model.TestHistoryEntry{
		ID:        id,
		Timestamp: time.Now(),
		Config:    model.PaperConfig{Type: model.PaperMCQ, TotalMarks: 10},
		Paper:     model.QuestionPaper{Title: "Paper " + id},
	}
}

func TestHistoryRecordAndList(t *testing.T) {
	svc := NewHistoryService(newFakeHistoryStore())
	ctx := context.Background()

	_, err := svc.Record(ctx, 1, historyEntry("a"))
	require.NoError(t, err)
	_, err = svc.Record(ctx, 1, historyEntry("b"))
	require.NoError(t, err)

	entries, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID, "most recent entry comes first")
	assert.Equal(t, "a", entries[1].ID)
}

func TestHistoryCapacityEviction(t *testing.T) {
	svc := NewHistoryService(newFakeHistoryStore())
	ctx := context.Background()

	for i := 0; i < model.HistoryCapacity+1; i++ {
		_, err := svc.Record(ctx, 1, historyEntry(fmt.Sprintf("e%d", i)))
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, model.HistoryCapacity)
	assert.Equal(t, "e5", entries[0].ID, "newest survives")
	assert.Equal(t, "e1", entries[model.HistoryCapacity-1].ID)
	for _, e := range entries {
		assert.NotEqual(t, "e0", e.ID, "oldest entry is evicted")
	}
}

func TestHistoryRecordIdempotent(t *testing.T) {
	svc := NewHistoryService(newFakeHistoryStore())
	ctx := context.Background()

	first := historyEntry("dup")
	first.UserAnswers = map[string]string{"q1": "A"}
	_, err := svc.Record(ctx, 1, first)
	require.NoError(t, err)

	// 同一 id 再次提交：返回已有记录，不追加
	second := historyEntry("dup")
	second.UserAnswers = map[string]string{"q1": "B"}
	got, err := svc.Record(ctx, 1, second)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"q1": "A"}, got.UserAnswers, "existing entry wins")

	entries, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHistoryEmpty(t *testing.T) {
	svc := NewHistoryService(newFakeHistoryStore())

	entries, err := svc.List(context.Background(), 42)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestHistoryCorruptBlobTreatedAsEmpty(t *testing.T) {
	store := newFakeHistoryStore()
	store.blobs[1] = []byte("{not valid json")
	svc := NewHistoryService(store)
	ctx := context.Background()

	entries, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// 坏数据会被后续写入覆盖
	_, err = svc.Record(ctx, 1, historyEntry("fresh"))
	require.NoError(t, err)
	entries, err = svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "fresh", entries[0].ID)
}

func TestHistoryStoreErrorTreatedAsEmpty(t *testing.T) {
	store := newFakeHistoryStore()
	store.getErr = errors.New("connection refused")
	svc := NewHistoryService(store)

	entries, err := svc.List(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistoryFind(t *testing.T) {
	svc := NewHistoryService(newFakeHistoryStore())
	ctx := context.Background()

	_, err := svc.Record(ctx, 1, historyEntry("x"))
	require.NoError(t, err)

	entry, err := svc.Find(ctx, 1, "x")
	require.NoError(t, err)
	assert.Equal(t, "x", entry.ID)

	_, err = svc.Find(ctx, 1, "missing")
	assert.ErrorIs(t, err, util.ErrHistoryEntryNotFound)

	// 历史按用户隔离
	_, err = svc.Find(ctx, 2, "x")
	assert.ErrorIs(t, err, util.ErrHistoryEntryNotFound)
}

func TestHistoryClear(t *testing.T) {
	svc := NewHistoryService(newFakeHistoryStore())
	ctx := context.Background()

	_, err := svc.Record(ctx, 1, historyEntry("a"))
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, 1))

	entries, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
