package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/and161185/fill-monitor/internal/buildinfo"
	"github.com/and161185/fill-monitor/internal/config"
	"github.com/and161185/fill-monitor/internal/server"
	"github.com/and161185/fill-monitor/storage"
	"github.com/and161185/fill-monitor/storage/filelog"
	"github.com/and161185/fill-monitor/storage/inmemory"
	"github.com/and161185/fill-monitor/storage/postgres"
	"go.uber.org/zap"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	cfg, err := config.NewCollectorConfig()
	if err != nil {
		config.StartupLogger().Fatalf("config: %v", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel, "collector.log")
	if err != nil {
		config.StartupLogger().Fatalf("logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.Fatal(err)
	}
	_ = logger.Sync()
}

func run(cfg *config.CollectorConfig, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buildinfo.New(buildVersion, buildDate, buildCommit).Log(logger)

	readings, err := filelog.Open(cfg.LogPath)
	if err != nil {
		return err
	}
	defer closeLog(readings, logger)

	journal, err := openJournal(ctx, cfg.DatabaseDsn, logger)
	if err != nil {
		return err
	}
	if journal != nil {
		defer journal.Close()
	}

	logger.Infof("Collector config: Addr=%s, LogPath=%q, RefreshSeconds=%d, DatabaseDSN set=%t",
		cfg.Addr,
		cfg.LogPath,
		cfg.RefreshSeconds,
		cfg.DatabaseDsn != "",
	)

	srv := server.NewServer(inmemory.NewSlot(), readings, journal, cfg, logger)
	return srv.Run(ctx)
}

func openJournal(ctx context.Context, dsn string, logger *zap.SugaredLogger) (storage.Journal, error) {
	if dsn == "" {
		return nil, nil
	}
	j, err := postgres.NewJournal(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	if err := j.Ping(ctx); err != nil {
		logger.Warnf("journal is not reachable yet: %v", err)
	}
	return j, nil
}

func closeLog(l storage.Log, logger *zap.SugaredLogger) {
	if err := l.Close(); err != nil {
		logger.Errorf("failed to close readings log: %v", err)
	}
}
