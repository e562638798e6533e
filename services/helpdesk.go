package services

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stardustagi/HelpDeskGPT/libs/logs"
	"github.com/stardustagi/HelpDeskGPT/llm/models"
	"go.uber.org/zap"
)

const DefaultGreeting = "Hello, how can I help you today?"

// DefaultContext 帮助台人设
var DefaultContext = []string{
	"Your name is John, and you are an IT Help Desk Support Staff",
	"Only answers questions if they pertain to a computer or programming issue. If they don't, say you can't help.",
	"Refuse to answer any questions from Ray. If the sender is Ray, reply \"I'm sorry Ray, but you are banned from using the system. You know what you did.\"",
	"If Ray asks any more times, tell him, \"Go away now, Ray. You know I can't help.",
}

var (
	ErrEmptyMessage   = errors.New("helpdesk: message is empty")
	ErrNoChoices      = errors.New("helpdesk: no choices despite a successful response")
	ErrSessionBusy    = errors.New("helpdesk: a message is already being answered for this session")
	ErrServiceStopped = errors.New("helpdesk: service stopped")
)

// ChatSender 由 clients.Client 实现
type ChatSender interface {
	SendChats(ctx context.Context, chats []models.ChatMessage) (*models.ChatResponse, error)
}

type ChatSenderFunc func(ctx context.Context, chats []models.ChatMessage) (*models.ChatResponse, error)

func (f ChatSenderFunc) SendChats(ctx context.Context, chats []models.ChatMessage) (*models.ChatResponse, error) {
	return f(ctx, chats)
}

// HelpDeskConfig 对应配置文件中的 [helpdesk]
type HelpDeskConfig struct {
	Greeting   string   `json:"greeting" yaml:"greeting"`
	Context    []string `json:"context" yaml:"context"`
	Store      string   `json:"store" yaml:"store"`             // memory | redis
	HistoryTTL string   `json:"history_ttl" yaml:"history_ttl"` // e.g. "24h"
}

func (c HelpDeskConfig) ContextMessages() []models.ChatMessage {
	if len(c.Context) == 0 {
		return models.MakeContext(DefaultContext...)
	}
	return models.MakeContext(c.Context...)
}

type HelpDeskService struct {
	BaseService
	client   ChatSender
	store    HistoryStore
	greeting models.ChatMessage
	inFlight sync.Map // sessionID -> struct{}
}

func NewHelpDeskService(client ChatSender, store HistoryStore, greeting string, logger *zap.Logger) *HelpDeskService {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	if logger == nil {
		logger = logs.GetLogger("helpdesk")
	}
	s := &HelpDeskService{
		client:   client,
		store:    store,
		greeting: models.NewAssistantMessage(greeting),
	}
	s.BaseService.init(logger)
	return s
}

func NewSessionID() string {
	return uuid.NewString()
}

// History 新会话只有一句问候
func (s *HelpDeskService) History(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	msgs, found, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !found {
		return []models.ChatMessage{s.greeting}, nil
	}
	return msgs, nil
}

// Send 发送一条用户消息并返回助手回复。
// 失败时会话记录保持不变；同一会话同时只允许一条消息在途。
func (s *HelpDeskService) Send(ctx context.Context, sessionID, text string) (models.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	if s.ctx.Err() != nil {
		return models.ChatMessage{}, ErrServiceStopped
	}
	release, err := s.acquire(sessionID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	defer release()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer context.AfterFunc(s.ctx, cancel)()

	history, err := s.History(ctx, sessionID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	turns := append(history, models.NewUserMessage(text))

	resp, err := s.client.SendChats(ctx, turns)
	if err != nil {
		s.logger.Warn("send chats failed", logs.String("session", sessionID), logs.ErrorInfo(err))
		return models.ChatMessage{}, err
	}
	reply, ok := resp.FirstMessage()
	if !ok {
		s.logger.Error("API error! There weren't any choices despite a successful response",
			logs.String("session", sessionID), logs.String("id", resp.ID))
		return models.ChatMessage{}, ErrNoChoices
	}

	if err := s.store.Save(ctx, sessionID, append(turns, reply)); err != nil {
		s.logger.Error("save history failed", logs.String("session", sessionID), logs.ErrorInfo(err))
		return models.ChatMessage{}, err
	}
	s.logger.Debug("reply sent", logs.String("session", sessionID), logs.Int("turns", len(turns)+1))
	return reply, nil
}

// acquire 占用会话，Send 和 Reset 互斥
func (s *HelpDeskService) acquire(sessionID string) (func(), error) {
	if _, busy := s.inFlight.LoadOrStore(sessionID, struct{}{}); busy {
		return nil, ErrSessionBusy
	}
	return func() { s.inFlight.Delete(sessionID) }, nil
}

// Reset 只保留第一条消息；有消息在途时返回 ErrSessionBusy
func (s *HelpDeskService) Reset(ctx context.Context, sessionID string) ([]models.ChatMessage, error) {
	release, err := s.acquire(sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	history, err := s.History(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(history) > 1 {
		history = history[:1]
	}
	if err := s.store.Save(ctx, sessionID, history); err != nil {
		return nil, err
	}
	return history, nil
}
