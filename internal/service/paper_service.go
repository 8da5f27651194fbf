package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"smartpaper_backend/internal/model"
	"smartpaper_backend/internal/util"
	"smartpaper_backend/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var validate = validator.New()

// Attempt 一次进行中的考试会话：生成的试卷连同原始配置留在服务端，
// 提交时据此判分，答案键不会下发给前端。
type Attempt struct {
	ID        string              `json:"id"`
	UserID    uint                `json:"userId"`
	Config    model.PaperConfig   `json:"config"`
	Paper     model.QuestionPaper `json:"paper"`
	StartedAt time.Time           `json:"startedAt"`
}

// AttemptStore 会话的持久化端口，带过期时间的 blob 存取
type AttemptStore interface {
	Put(ctx context.Context, attemptID string, blob []byte, ttl time.Duration) error
	Get(ctx context.Context, attemptID string) ([]byte, error)
}

// PaperService 生成流水线的编排：配置校验 → 生成请求 → 解析归一 → 会话保存，
// 以及提交判分和历史落账。每个用户同一时刻只允许一次生成在途。
type PaperService struct {
	Generator *GeneratorService
	Attempts  AttemptStore
	History   *HistoryService

	mu       sync.Mutex
	inflight map[uint]bool
}

func NewPaperService(generator *GeneratorService, attempts AttemptStore, history *HistoryService) *PaperService {
	return &PaperService{
		Generator: generator,
		Attempts:  attempts,
		History:   history,
		inflight:  make(map[uint]bool),
	}
}

// attemptGrace 会话在考试时长之外额外保留的时间，容忍交卷前后的网络抖动
const attemptGrace = 30 * time.Minute

// Generate 校验配置并走完整个生成流水线。失败不重试，整卷拒绝，
// 调用方拿到的要么是一份通过全部校验的试卷，要么是单个终态错误。
func (s *PaperService) Generate(ctx context.Context, userID uint, cfg model.PaperConfig) (*Attempt, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, util.ErrInvalidPaperConfig
	}

	if !s.acquire(userID) {
		return nil, util.ErrGenerationInFlight
	}
	defer s.release(userID)

	raw, err := s.Generator.GeneratePaper(ctx, cfg)
	if err != nil {
		return nil, err
	}

	paper, err := ParsePaperResponse(raw)
	if err != nil {
		return nil, err
	}

	// 总分与配置不符只告警不拒绝：该约束由提示词要求生成器保证，
	// 轻微偏差的试卷仍然可用，判分以题目实际分值为准。
	if total := paper.MarkTotal(); total != cfg.TotalMarks {
		logger.Log.Warn("generated paper mark total differs from config",
			zap.Float64("expected", cfg.TotalMarks),
			zap.Float64("actual", total),
			zap.Uint("userID", userID))
	}

	attempt := &Attempt{
		ID:        uuid.New().String(),
		UserID:    userID,
		Config:    cfg,
		Paper:     *paper,
		StartedAt: time.Now(),
	}

	blob, err := json.Marshal(attempt)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(cfg.Duration)*time.Minute + attemptGrace
	if err := s.Attempts.Put(ctx, attempt.ID, blob, ttl); err != nil {
		return nil, err
	}

	return attempt, nil
}

// Submit 交卷：判分并写入历史。同一会话重复提交（手动交卷与倒计时
// 自动交卷竞争）只会产生一条历史记录，返回的是同一条。
func (s *PaperService) Submit(ctx context.Context, userID uint, attemptID string, answers map[string]string) (*model.TestHistoryEntry, error) {
	blob, err := s.Attempts.Get(ctx, attemptID)
	if err != nil || len(blob) == 0 {
		return nil, util.ErrAttemptNotFound
	}

	var attempt Attempt
	if err := json.Unmarshal(blob, &attempt); err != nil {
		return nil, util.ErrAttemptNotFound
	}
	if attempt.UserID != userID {
		return nil, util.ErrAttemptNotFound
	}

	if answers == nil {
		answers = map[string]string{}
	}

	entry := model.TestHistoryEntry{
		ID:          attempt.ID,
		Timestamp:   time.Now(),
		Config:      attempt.Config,
		Paper:       attempt.Paper,
		UserAnswers: answers,
		Score:       ScoreForConfig(attempt.Config, &attempt.Paper, answers),
	}

	return s.History.Record(ctx, userID, entry)
}

func (s *PaperService) acquire(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[userID] {
		return false
	}
	s.inflight[userID] = true
	return true
}

func (s *PaperService) release(userID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, userID)
}

// StudentQuestion 下发给考生的题目视图，答案键被剥离
type StudentQuestion struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"`
	Marks   float64  `json:"marks"`
	Options []string `json:"options,omitempty"`
}

type StudentSection struct {
	Name      string            `json:"name"`
	Marks     float64           `json:"marks"`
	Questions []StudentQuestion `json:"questions"`
}

type StudentPaper struct {
	AttemptID    string           `json:"attemptId"`
	Title        string           `json:"title"`
	Instructions string           `json:"instructions"`
	Duration     int              `json:"duration"`
	Sections     []StudentSection `json:"sections"`
}

// StudentView 把会话转成可下发的试卷视图
func StudentView(attempt *Attempt) StudentPaper {
	view := StudentPaper{
		AttemptID:    attempt.ID,
		Title:        attempt.Paper.Title,
		Instructions: attempt.Paper.Instructions,
		Duration:     attempt.Config.Duration,
		Sections:     make([]StudentSection, 0, len(attempt.Paper.Sections)),
	}

	for _, sec := range attempt.Paper.Sections {
		sv := StudentSection{
			Name:      sec.Name,
			Marks:     sec.Marks,
			Questions: make([]StudentQuestion, 0, len(sec.Questions)),
		}
		for _, q := range sec.Questions {
			sv.Questions = append(sv.Questions, StudentQuestion{
				ID:      q.ID,
				Text:    q.Text,
				Type:    q.Type,
				Marks:   q.Marks,
				Options: q.Options,
			})
		}
		view.Sections = append(view.Sections, sv)
	}

	return view
}
