package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stardustagi/HelpDeskGPT/libs/logs"
	"go.uber.org/zap"
)

type HttpServer struct {
	addr   string
	path   string
	logger *zap.Logger
	engine *echo.Echo
	group  map[string]*StarDustGroup
}

func NewHttpServer(config HttpServerConfig, logger *zap.Logger) (*HttpServer, error) {
	config = config.WithDefaults()
	if config.Path != "" && config.Path[0] != '/' {
		return nil, errors.New("the http.path must start with a /")
	}
	if logger == nil {
		logger = logs.GetLogger("httpServer")
	}

	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	engine.Validator = NewCustomValidator()
	engine.Use(middleware.Recover())
	if config.Cors {
		engine.Use(Cors())
	}
	if config.RequestLog {
		engine.Use(Request(logger))
	}
	if config.Access {
		engine.Use(Access(logger))
	}

	return &HttpServer{
		logger: logger,
		engine: engine,
		group:  make(map[string]*StarDustGroup),
		addr:   fmt.Sprintf("%s:%d", config.Address, config.Port),
		path:   config.Path,
	}, nil
}

func (m *HttpServer) Engine() *echo.Echo {
	return m.engine
}

func (m *HttpServer) Addr() string {
	return m.addr
}

// Startup 阻塞直到服务关闭
func (m *HttpServer) Startup() error {
	m.logger.Info("http server listened on:", zap.String("addr", m.addr))
	for _, route := range m.engine.Routes() {
		m.logger.Info("http route registered:", logs.String("method", route.Method), logs.String("path", route.Path))
	}
	if err := m.engine.Start(m.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (m *HttpServer) Stop(ctx context.Context) {
	if err := m.engine.Shutdown(ctx); err != nil {
		m.logger.Error("shutdown http server:", zap.Error(err))
	}
}

// Handle registers a new route with the HTTP server.
func (m *HttpServer) Handle(method string, path string, handler IHandler) {
	path, _ = url.JoinPath(m.path, "api", path)
	m.engine.Add(method, path, handler.GetFunc())
}

func (m *HttpServer) AddGroup(path string, middleware ...echo.MiddlewareFunc) {
	urlPath, _ := url.JoinPath(m.path, "api", path)
	m.group[path] = NewStarDustGroup(path, m.engine.Group(urlPath, middleware...))
	m.logger.Info("http group registered:", logs.String("path", urlPath))
}

func (m *HttpServer) Get(path string, group string, handler IHandler) {
	m.add(http.MethodGet, path, group, handler)
}

func (m *HttpServer) Post(path string, group string, handler IHandler) {
	m.add(http.MethodPost, path, group, handler)
}

func (m *HttpServer) add(method, path, group string, handler IHandler) {
	if group == "" {
		m.Handle(method, path, handler)
		return
	}
	g, exists := m.group[group]
	if !exists {
		m.logger.Error("group not found", logs.String("group", group))
		return
	}
	g.Group.Add(method, "/"+path, handler.GetFunc())
	m.logger.Info("http handler registered to group:", logs.String("path", path), logs.String("prefix", g.Prefix))
}
