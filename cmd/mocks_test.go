package cmd

import (
	"context"
	"sync"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
)

// MockRunner is a mock implementation of the Runner interface.
type MockRunner struct {
	RunFunc               func(ctx context.Context, cfg *config.Config) error
	RestartWithConfigFunc func(cfg *config.Config) error

	mu       sync.Mutex
	cfg      *config.Config
	restarts []*config.Config
}

func (m *MockRunner) Run(ctx context.Context, cfg *config.Config) error {
	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, cfg)
	}
	<-ctx.Done()
	return nil
}

func (m *MockRunner) RestartWithConfig(cfg *config.Config) error {
	m.mu.Lock()
	m.restarts = append(m.restarts, cfg)
	m.cfg = cfg
	m.mu.Unlock()
	if m.RestartWithConfigFunc != nil {
		return m.RestartWithConfigFunc(cfg)
	}
	return nil
}

func (m *MockRunner) Config() *config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

func (m *MockRunner) Restarts() []*config.Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*config.Config(nil), m.restarts...)
}

// MockHTTPServer is a mock implementation of the HTTPServer interface.
type MockHTTPServer struct {
	ListenAndServeFunc func(ctx context.Context, addr string) error
}

func (m *MockHTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	if m.ListenAndServeFunc != nil {
		return m.ListenAndServeFunc(ctx, addr)
	}
	<-ctx.Done()
	return nil
}

// MockConfigWatcher is a mock implementation of the ConfigWatcher interface.
type MockConfigWatcher struct {
	RunFunc func(ctx context.Context) error
}

func (m *MockConfigWatcher) Run(ctx context.Context) error {
	if m.RunFunc != nil {
		return m.RunFunc(ctx)
	}
	<-ctx.Done()
	return nil
}
