package services

import (
	stderrors "errors"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/stardustagi/HelpDeskGPT/libs/errors"
	"github.com/stardustagi/HelpDeskGPT/libs/server"
	"github.com/stardustagi/HelpDeskGPT/llm/clients"
	"github.com/stardustagi/HelpDeskGPT/llm/models"
	"github.com/stardustagi/HelpDeskGPT/protocol"
)

const ChatGroup = "chat"

type SendReq struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text" validate:"required"`
}

type SendResp struct {
	SessionID string             `json:"session_id"`
	Reply     models.ChatMessage `json:"reply"`
}

type SessionReq struct {
	SessionID string `json:"session_id" validate:"required"`
}

type HistoryResp struct {
	SessionID string               `json:"session_id"`
	Messages  []models.ChatMessage `json:"messages"`
}

// RegisterRoutes 挂到 /api/chat 下
func (s *HelpDeskService) RegisterRoutes(bk *server.Backend) {
	bk.AddGroup(ChatGroup)
	hs := server.NewHandlers()
	hs.AddHandlers(server.NewHandler("send", []string{"chat"}, s.handleSend))
	hs.AddHandlers(server.NewHandler("reset", []string{"chat"}, s.handleReset))
	hs.AddHandlers(server.NewHandler("history", []string{"chat"}, s.handleHistory))
	bk.AddHandlers(ChatGroup, hs)
}

func (s *HelpDeskService) handleSend(c echo.Context, req SendReq, resp SendResp) error {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = server.NewContext(c).ClientId
	}
	if sessionID == "" {
		sessionID = NewSessionID()
	}
	reply, err := s.Send(c.Request().Context(), sessionID, req.Text)
	if err != nil {
		return protocol.Response(c, toStackError(err), nil)
	}
	resp.SessionID = sessionID
	resp.Reply = reply
	return protocol.Response(c, nil, resp)
}

func (s *HelpDeskService) handleReset(c echo.Context, req SessionReq, resp HistoryResp) error {
	msgs, err := s.Reset(c.Request().Context(), req.SessionID)
	if err != nil {
		return protocol.Response(c, toStackError(err), nil)
	}
	resp.SessionID = req.SessionID
	resp.Messages = msgs
	return protocol.Response(c, nil, resp)
}

func (s *HelpDeskService) handleHistory(c echo.Context, req SessionReq, resp HistoryResp) error {
	msgs, err := s.History(c.Request().Context(), req.SessionID)
	if err != nil {
		return protocol.Response(c, toStackError(err), nil)
	}
	resp.SessionID = req.SessionID
	resp.Messages = msgs
	return protocol.Response(c, nil, resp)
}

// toStackError 把客户端错误映射为业务错误码
func toStackError(err error) *errors.StackError {
	var (
		netErr    *clients.NetworkError
		statusErr *clients.StatusError
		decodeErr *clients.DecodeError
	)
	switch {
	case stderrors.Is(err, ErrEmptyMessage):
		return errors.Wrap(errors.CodeBadRequest, err, "message is empty")
	case stderrors.Is(err, ErrSessionBusy):
		return errors.Wrap(errors.CodeBusy, err, "previous message is still being answered")
	case stderrors.Is(err, ErrNoChoices):
		return errors.Wrap(errors.CodeNoChoices, err, "assistant returned no reply")
	case stderrors.As(err, &netErr):
		return errors.Wrap(errors.CodeNetwork, err, "assistant is unreachable")
	case stderrors.As(err, &statusErr):
		if detail, ok := statusErr.Detail(); ok {
			return errors.Wrap(errors.CodeUpstream, err, detail.Message)
		}
		return errors.Wrap(errors.CodeUpstream, err, fmt.Sprintf("assistant returned status %d", statusErr.StatusCode))
	case stderrors.As(err, &decodeErr):
		return errors.Wrap(errors.CodeDecode, err, "assistant reply is malformed")
	default:
		return errors.Wrap(errors.CodeInternal, err, "internal error")
	}
}
