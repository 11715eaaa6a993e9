package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/anicoll/nspanel-gateway/cmd"
)

func main() {
	app := &cli.App{
		Name:   "nspanel-gateway",
		Usage:  "bridges Home Assistant and NSPanel displays over MQTT",
		Action: cmd.GatewayCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				EnvVars: []string{"CONFIG_DIR"},
				Value:   "./config",
			},
			&cli.StringFlag{
				Name:    "config",
				EnvVars: []string{"CONFIG"},
				Value:   "config.yaml",
			},
			&cli.StringFlag{
				Name:    "connectivity",
				EnvVars: []string{"CONNECTIVITY"},
				Value:   "connectivity.yaml",
			},
			&cli.StringFlag{
				Name:    "icons",
				EnvVars: []string{"ICONS"},
				Value:   "icons.yaml",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
			&cli.StringFlag{
				Name:    "http-addr",
				EnvVars: []string{"HTTP_ADDR"},
				Value:   "0.0.0.0:8000",
			},
			&cli.BoolFlag{
				Name:    "watch",
				EnvVars: []string{"WATCH_CONFIG"},
				Value:   true,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}
