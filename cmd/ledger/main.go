package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/simonkvalheim/hm9-ledger/internal/bootstrap"
	"github.com/simonkvalheim/hm9-ledger/internal/cli"
	"github.com/simonkvalheim/hm9-ledger/internal/config"
	"github.com/simonkvalheim/hm9-ledger/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return 1
	}

	logger, cleanup, err := logging.New(logging.Config{
		Environment: cfg.LogEnv,
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		return 1
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Initialize(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize ledger", zap.Error(err))
		return 1
	}
	defer app.Close()

	cmd := cli.NewApp(app.Service, os.Stdin, os.Stdout, logger)
	if err := cmd.Run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, cli.ErrUsage) {
			logger.Error("command failed", zap.Error(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}
