package server

import (
	"github.com/labstack/echo/v4"
	"github.com/stardustagi/HelpDeskGPT/libs/errors"
	"github.com/stardustagi/HelpDeskGPT/protocol"
)

type Handler[Req any, Resp any] struct {
	Name string
	Tags []string
	Func func(echo.Context, Req, Resp) error
}

// 抽象接口
type IHandler interface {
	GetName() string
	GetTags() []string
	GetFunc() func(echo.Context) error
}

func NewHandler[Req any, Resp any](
	name string,
	tags []string,
	f func(echo.Context, Req, Resp) error,
) *Handler[Req, Resp] {
	return &Handler[Req, Resp]{
		Name: name,
		Tags: tags,
		Func: f,
	}
}

func (h *Handler[Req, Resp]) GetName() string {
	return h.Name
}

func (h *Handler[Req, Resp]) GetTags() []string {
	return h.Tags
}

// GetFunc 每次请求新建 Req/Resp，handler 本身可并发复用
func (h *Handler[Req, Resp]) GetFunc() func(echo.Context) error {
	return func(c echo.Context) error {
		var req Req
		var resp Resp
		// 绑定
		if err := c.Bind(&req); err != nil {
			return protocol.Response(c, errors.Wrap(errors.CodeBadRequest, err, "invalid request body"), nil)
		}
		// 验证
		if err := c.Validate(&req); err != nil {
			return protocol.Response(c, errors.Wrap(errors.CodeBadRequest, err, err.Error()), nil)
		}
		// 执行体
		return h.Func(c, req, resp)
	}
}

// 句柄管理器抽象接口
type IHandlers interface {
	GetHandlers() []IHandler
	AddHandlers(handler IHandler)
	GetHandlersLen() int
}

// 句柄管理器
type Handlers struct {
	handlers []IHandler
}

func NewHandlers() IHandlers {
	return &Handlers{
		handlers: make([]IHandler, 0),
	}
}

func (h *Handlers) GetHandlers() []IHandler {
	return h.handlers
}

func (h *Handlers) AddHandlers(handler IHandler) {
	h.handlers = append(h.handlers, handler)
}

func (h *Handlers) GetHandlersLen() int {
	return len(h.handlers)
}

type StarDustGroup struct {
	Prefix string
	Group  *echo.Group
}

func NewStarDustGroup(prefix string, group *echo.Group) *StarDustGroup {
	return &StarDustGroup{
		Prefix: prefix,
		Group:  group,
	}
}
