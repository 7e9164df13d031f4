package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tapcoin/internal/config"
	"tapcoin/internal/db"
	"tapcoin/internal/game"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadWorkerFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	svc := game.NewService(pool, logger)

	runOnce := strings.EqualFold(strings.TrimSpace(os.Getenv("TAPCOIN_WORKER_RUN_ONCE")), "true")
	if runOnce {
		if err := runMaintenance(ctx, svc, cfg, logger); err != nil {
			os.Exit(1)
		}
		logger.Info("worker run-once completed")
		return
	}

	statsTicker := time.NewTicker(cfg.StatsSnapshotEvery)
	defer statsTicker.Stop()
	pruneTicker := time.NewTicker(cfg.IdempotencyPrune)
	defer pruneTicker.Stop()

	logger.Info("worker started",
		"stats_every", cfg.StatsSnapshotEvery.String(),
		"prune_every", cfg.IdempotencyPrune.String())
	for {
		select {
		case <-ctx.Done():
			logger.Info("worker shutdown")
			return
		case <-statsTicker.C:
			if err := svc.SnapshotEconomyStats(ctx); err != nil {
				logger.Error("stats snapshot failed", "err", err)
				continue
			}
			logger.Info("stats snapshot complete")
		case <-pruneTicker.C:
			pruned, err := svc.PruneIdempotencyKeys(ctx, cfg.IdempotencyTTL)
			if err != nil {
				logger.Error("idempotency prune failed", "err", err)
				continue
			}
			logger.Info("idempotency prune complete", "pruned", pruned)
		}
	}
}

func runMaintenance(ctx context.Context, svc *game.Service, cfg config.WorkerConfig, logger *slog.Logger) error {
	if err := svc.SnapshotEconomyStats(ctx); err != nil {
		logger.Error("stats snapshot failed", "err", err)
		return err
	}
	pruned, err := svc.PruneIdempotencyKeys(ctx, cfg.IdempotencyTTL)
	if err != nil {
		logger.Error("idempotency prune failed", "err", err)
		return err
	}
	logger.Info("maintenance complete", "pruned", pruned)
	return nil
}
