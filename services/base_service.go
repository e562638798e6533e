package services

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Service 统一所有服务的生命周期
type Service interface {
	Start()
	Stop()
	IsRunning() bool
}

type BaseService struct {
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	isRun  atomic.Bool
}

func (bs *BaseService) init(logger *zap.Logger) {
	bs.logger = logger
	bs.ctx, bs.cancel = context.WithCancel(context.Background())
}

func (bs *BaseService) Start() {
	bs.isRun.Store(true)
	bs.logger.Info("service started")
}

// Stop 取消服务级 ctx，正在进行的请求随之结束
func (bs *BaseService) Stop() {
	if bs.isRun.CompareAndSwap(true, false) {
		bs.cancel()
		bs.logger.Info("service stopped")
	}
}

func (bs *BaseService) IsRunning() bool { return bs.isRun.Load() }
