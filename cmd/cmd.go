package cmd

import (
	"context"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/gateway"
	"github.com/anicoll/nspanel-gateway/internal/pkg/hass"
	"github.com/anicoll/nspanel-gateway/internal/pkg/mqtt"
	"github.com/anicoll/nspanel-gateway/internal/pkg/navigator"
	"github.com/anicoll/nspanel-gateway/internal/pkg/publisher"
	"github.com/anicoll/nspanel-gateway/internal/pkg/server"
	"github.com/anicoll/nspanel-gateway/internal/pkg/state"
	"github.com/anicoll/nspanel-gateway/internal/pkg/translator"
	"github.com/anicoll/nspanel-gateway/internal/pkg/watcher"
)

func GatewayCommand(ctx *cli.Context) error {
	flags := config.Flags{
		Paths: config.Paths{
			Dir:          ctx.String("config-dir"),
			Config:       ctx.String("config"),
			Connectivity: ctx.String("connectivity"),
			Icons:        ctx.String("icons"),
		},
		LogLevel:    ctx.String("log-level"),
		HTTPAddr:    ctx.String("http-addr"),
		WatchConfig: ctx.Bool("watch"),
	}

	return run(ctx.Context, flags)
}

func run(ctx context.Context, flags config.Flags) error {
	logCfg := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(flags.LogLevel)
	if err != nil {
		return err
	}
	logCfg.Level = level
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load(flags.Paths)
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		return err
	}
	logger.Info("loaded configuration", zap.String("config", cfg.Redacted()))

	// The stores outlive every gateway so a reload keeps page history and cached weather.
	store := state.NewStore()
	weather := state.NewWeatherCache()
	runner := gateway.NewRunner(newGatewayBuilder(store, weather))

	svcs := services{
		runner: runner,
		http:   server.New(store, runner),
	}
	if flags.WatchConfig {
		svcs.watcher = watcher.New(flags.Paths, reloader(flags.Paths, runner))
	}
	return serve(ctx, flags, cfg, svcs)
}

type services struct {
	runner  Runner
	http    HTTPServer
	watcher ConfigWatcher
}

// serve runs every long lived task until ctx ends or one of them fails.
func serve(ctx context.Context, flags config.Flags, cfg *config.Config, svcs services) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return svcs.runner.Run(ctx, cfg)
	})

	if svcs.watcher != nil {
		eg.Go(func() error {
			return svcs.watcher.Run(ctx)
		})
	}

	eg.Go(func() error {
		return svcs.http.ListenAndServe(ctx, flags.HTTPAddr)
	})

	return eg.Wait()
}

// reloader loads the configuration again and swaps the running gateway. A configuration
// that fails to load leaves the running one in place.
func reloader(paths config.Paths, runner Runner) func() {
	return func() {
		logger := zap.L()
		cfg, err := config.Load(paths)
		if err != nil {
			logger.Error("ignoring invalid configuration", zap.Error(err))
			return
		}
		logger.Info("reloaded configuration", zap.String("config", cfg.Redacted()))
		if err := runner.RestartWithConfig(cfg); err != nil {
			logger.Error("failed to restart gateway", zap.Error(err))
		}
	}
}

func newGatewayBuilder(store *state.Store, weather *state.WeatherCache) gateway.Builder {
	return func(cfg *config.Config) gateway.Service {
		client := mqtt.New(mqtt.NewClient(cfg.Connectivity.MQTT))
		return gateway.New(
			cfg,
			translator.New(cfg.Icons, store, weather),
			navigator.New(store),
			client,
			publisher.New(client),
			newHubSession,
		)
	}
}

func newHubSession(cfg config.Hass, entities map[string][]string, handler hass.Handler) gateway.HubSession {
	return hass.New(cfg, entities, handler)
}
