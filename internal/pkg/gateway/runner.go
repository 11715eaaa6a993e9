package gateway

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/contxt"
)

var ErrNotRunning = errors.New("runner is not running")

type Service interface {
	Run(ctx context.Context) error
}

// Builder creates the service for one configuration.
type Builder func(cfg *config.Config) Service

// Runner keeps exactly one gateway running and swaps it when the configuration changes.
type Runner struct {
	build  Builder
	mu     sync.Mutex
	parent context.Context
	cfg    *config.Config
	cancel context.CancelFunc
	done   chan struct{}

	retryDelay time.Duration
	logger     *zap.Logger
}

func NewRunner(build Builder) *Runner {
	return &Runner{
		build:      build,
		retryDelay: reconnectDelay,
		logger:     zap.L(),
	}
}

// Run starts a gateway for cfg and blocks until ctx ends and the gateway has stopped.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) error {
	r.mu.Lock()
	r.parent = ctx
	r.start(cfg)
	r.mu.Unlock()

	<-ctx.Done()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.stop()
	return nil
}

// RestartWithConfig stops the running gateway, waits for every task to exit and starts a new one.
// Concurrent calls are serialized so two gateways never run at once.
func (r *Runner) RestartWithConfig(cfg *config.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.parent == nil || r.parent.Err() != nil {
		return ErrNotRunning
	}
	r.logger.Info("restarting with new configuration", zap.Strings("devices", cfg.DeviceIDs()))
	r.stop()
	r.start(cfg)
	return nil
}

// Config is the configuration of the running gateway.
func (r *Runner) Config() *config.Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

// start runs a fresh service for cfg, building a new one for every retry.
func (r *Runner) start(cfg *config.Config) {
	ctx, cancel := context.WithCancel(r.parent)
	done := make(chan struct{})
	r.cfg = cfg
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		for {
			err := r.build(cfg).Run(ctx)
			if ctx.Err() != nil {
				return
			}
			r.logger.Error("gateway stopped, restarting", zap.Error(err), zap.Duration("retry_in", r.retryDelay))
			if !contxt.Sleep(ctx, r.retryDelay) {
				return
			}
		}
	}()
}

func (r *Runner) stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
}
