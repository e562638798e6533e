package server

import (
	"context"

	"github.com/stardustagi/HelpDeskGPT/libs/logs"
	"github.com/stardustagi/HelpDeskGPT/utils"
	"go.uber.org/zap"
)

// Server 进程级生命周期，收到退出信号后取消 Ctx
type Server struct {
	Ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	doneCh chan struct{}
}

func NewServer() *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		Ctx:    ctx,
		cancel: cancel,
		logger: logs.GetLogger("Server"),
		doneCh: utils.MakeShutdownCh(),
	}
}

// HandleSignal 阻塞到收到信号或 Ctx 被取消
func (m *Server) HandleSignal() {
	select {
	case <-m.doneCh:
	case <-m.Ctx.Done():
	}
	m.cancel()
	m.logger.Info("server shutting...")
}

func (m *Server) Shutdown() {
	m.cancel()
}
