// Command demo boots a minimal emberforge server against a simworld
// reference World/Entities implementation, proving out the connection
// lifecycle and tick loop end to end.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"emberforge"
)

func main() {
	configPath := flag.String("config", "demo.yaml", "path to the bootstrap YAML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	boot, err := loadBootstrapConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	cfg := newGameConfig(boot, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting emberforge demo server", "address", boot.Address, "tick_rate", boot.TickRate)
	if err := emberforge.Start(ctx, cfg, emberforge.WithLogger(logger)); err != nil && ctx.Err() == nil {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
