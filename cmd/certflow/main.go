package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logLevel := slog.LevelInfo
	if os.Getenv("CERTFLOW_DEBUG") != "" {
		logLevel = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if os.Getenv("CERTFLOW_LOG_FORMAT") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	if err := newRootCommand(slog.New(handler)).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
