package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brensch/snekgrid/config"
	"github.com/brensch/snekgrid/logging"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, closeLog, err := openLogger(cfg)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.WatchURL != "" {
		err = watch(ctx, cfg, logger)
	} else {
		err = play(ctx, cfg, logger)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("snake exited", "err", err)
		closeLog()
		log.Fatalf("snake: %v", err)
	}
}

// openLogger sends logs to -log-file if set. The terminal UI owns the
// screen, so without -headless logs default to snake.log.
func openLogger(cfg config.Config) (*slog.Logger, func(), error) {
	path := cfg.LogFile
	if path == "" && !cfg.Headless {
		path = "snake.log"
	}
	var w io.Writer = os.Stderr
	closeFn := func() {}
	if path != "" {
		f, err := logging.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	return logging.New(w, logging.Options{Level: cfg.LogLevel}), closeFn, nil
}
