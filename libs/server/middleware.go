package server

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/stardustagi/HelpDeskGPT/libs/logs"
	"go.uber.org/zap"
)

func Cors() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, ClientIDKey},
	})
}

// Request 每个请求一行日志
func Request(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogRemoteIP: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("http request",
				logs.String("method", v.Method),
				logs.String("uri", v.URI),
				logs.Int("status", v.Status),
				logs.String("remote", v.RemoteIP),
				logs.Duration("latency", v.Latency),
				logs.ErrorInfo(v.Error))
			return nil
		},
	})
}

// Access 记录会话 ID 与来源地址
func Access(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := NewContext(c)
			logger.Debug("http access",
				logs.String("path", c.Path()),
				logs.String("remote", ctx.RemoteAddr),
				logs.String("session", ctx.ClientId))
			return next(c)
		}
	}
}
