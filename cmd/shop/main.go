package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/shopcore/adapter/cli"
	"github.com/felixgeelhaar/shopcore/adapter/cli/order"
	"github.com/felixgeelhaar/shopcore/adapter/cli/user"
	"github.com/felixgeelhaar/shopcore/internal/app"
	"github.com/felixgeelhaar/shopcore/pkg/config"
	"github.com/felixgeelhaar/shopcore/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Logs go to stderr so command output stays clean.
	logCfg := observability.DefaultLogConfig()
	if cfg.LogLevel != "" {
		logCfg.Level = observability.LogLevel(cfg.LogLevel)
	}
	if cfg.LogFormat != "" {
		logCfg.Format = observability.LogFormat(cfg.LogFormat)
	}
	logCfg.ServiceName = "shop-cli"
	logger := observability.NewLogger(logCfg)
	cli.SetLogger(logger)

	container, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize container", "error", err)
		os.Exit(1)
	}

	cli.SetApp(cli.NewApp(container.Users, container.Orders, container.Health))
	cli.AddCommand(user.Cmd)
	cli.AddCommand(order.Cmd)

	code := 0
	if err := cli.ExecuteContext(ctx); err != nil {
		code = 1
	}
	// Close drains the local task queue before exit.
	container.Close()
	os.Exit(code)
}
