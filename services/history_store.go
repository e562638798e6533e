package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/stardustagi/HelpDeskGPT/libs/redis"
	"github.com/stardustagi/HelpDeskGPT/llm/models"
)

// HistoryStore 保存每个会话的对话记录
type HistoryStore interface {
	// Load 会话不存在时 found 为 false
	Load(ctx context.Context, sessionID string) (msgs []models.ChatMessage, found bool, err error)
	Save(ctx context.Context, sessionID string, msgs []models.ChatMessage) error
}

type MemoryHistoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]models.ChatMessage
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{sessions: make(map[string][]models.ChatMessage)}
}

func (s *MemoryHistoryStore) Load(_ context.Context, sessionID string) ([]models.ChatMessage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs, ok := s.sessions[sessionID]
	if !ok {
		return nil, false, nil
	}
	return append([]models.ChatMessage(nil), msgs...), true, nil
}

func (s *MemoryHistoryStore) Save(_ context.Context, sessionID string, msgs []models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append([]models.ChatMessage(nil), msgs...)
	return nil
}

// RedisHistoryStore 以 JSON 数组保存在 helpdesk:history:<id>
type RedisHistoryStore struct {
	rds redis.RedisCli
	ttl string
}

// NewRedisHistoryStore ttl 为空表示永不过期，每次保存都会刷新
func NewRedisHistoryStore(rds redis.RedisCli, ttl string) (*RedisHistoryStore, error) {
	if ttl != "" {
		if d, err := time.ParseDuration(ttl); err != nil {
			return nil, errors.Wrapf(err, "invalid history ttl %q", ttl)
		} else if d < 0 {
			return nil, errors.Errorf("invalid history ttl %q: negative", ttl)
		}
	}
	return &RedisHistoryStore{rds: rds, ttl: ttl}, nil
}

func historyKey(sessionID string) string {
	return "helpdesk:history:" + sessionID
}

func (s *RedisHistoryStore) Load(ctx context.Context, sessionID string) ([]models.ChatMessage, bool, error) {
	data, err := s.rds.Get(ctx, historyKey(sessionID))
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "load history %s", sessionID)
	}
	var msgs []models.ChatMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, false, errors.Wrapf(err, "decode history %s", sessionID)
	}
	return msgs, true, nil
}

func (s *RedisHistoryStore) Save(ctx context.Context, sessionID string, msgs []models.ChatMessage) error {
	data, err := json.Marshal(msgs)
	if err != nil {
		return errors.Wrapf(err, "encode history %s", sessionID)
	}
	return errors.Wrapf(s.rds.Set(ctx, historyKey(sessionID), data, s.ttl), "save history %s", sessionID)
}
