package cmd

import (
	"context"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
)

// Runner keeps one gateway running and swaps it on reload.
type Runner interface {
	Run(ctx context.Context, cfg *config.Config) error
	RestartWithConfig(cfg *config.Config) error
	Config() *config.Config
}

type HTTPServer interface {
	ListenAndServe(ctx context.Context, addr string) error
}

type ConfigWatcher interface {
	Run(ctx context.Context) error
}
