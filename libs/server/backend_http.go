package server

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Backend struct {
	config     HttpServerConfig
	Logger     *zap.Logger
	httpServer *HttpServer
}

func NewBackend(config HttpServerConfig, logger *zap.Logger) (*Backend, error) {
	httpServer, err := NewHttpServer(config, logger)
	if err != nil {
		return nil, err
	}
	return &Backend{
		config:     config,
		Logger:     httpServer.logger,
		httpServer: httpServer,
	}, nil
}

func (m *Backend) Engine() *echo.Echo {
	return m.httpServer.Engine()
}

func (m *Backend) AddGroup(group string, middleware ...echo.MiddlewareFunc) {
	m.httpServer.AddGroup(group, middleware...)
}

func (m *Backend) AddPostHandler(group string, h IHandler) {
	m.httpServer.Post(h.GetName(), group, h)
}

func (m *Backend) AddGetHandler(group string, h IHandler) {
	m.httpServer.Get(h.GetName(), group, h)
}

// AddHandlers 批量注册为 POST
func (m *Backend) AddHandlers(group string, hs IHandlers) {
	for _, h := range hs.GetHandlers() {
		m.AddPostHandler(group, h)
	}
}

func (m *Backend) Start() error {
	return m.httpServer.Startup()
}

func (m *Backend) Stop(ctx context.Context) {
	m.httpServer.Stop(ctx)
}
