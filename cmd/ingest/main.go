package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricehistory_backend/internal/app/di"
	pricesadapters "pricehistory_backend/internal/feature/prices/adapters"
	pricesusecase "pricehistory_backend/internal/feature/prices/usecase"
	symbolsadapters "pricehistory_backend/internal/feature/symbols/adapters"
	"pricehistory_backend/internal/platform/config"
	platformdb "pricehistory_backend/internal/platform/db"
	"pricehistory_backend/internal/platform/logger"
	platformredis "pricehistory_backend/internal/platform/redis"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg, err := config.LoadConfig("config/config.toml", os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
	slog.Info("ingest ok")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, time.Hour)
	defer cancel()

	db, err := platformdb.Open(cfg.Database)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}

	window, err := di.NewMarketWindow(cfg.Market)
	if err != nil {
		return err
	}

	// 取り込み後にカバレッジ集計のキャッシュを破棄する
	var invalidator pricesusecase.CacheInvalidator
	if cfg.Redis.Host != "" {
		rdb, err := platformredis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("Redis unavailable. Coverage cache will expire on its own.")
		} else {
			defer func() { _ = rdb.Close() }()
			stats, err := di.NewStatsCache(cfg.Coverage, db, rdb)
			if err != nil {
				return err
			}
			invalidator = stats
		}
	}

	symbolRepo := symbolsadapters.NewSymbolRepository(db)
	uc := pricesusecase.NewIngestUsecase(
		di.NewMarket(cfg.TwelveData),
		pricesadapters.NewPriceRepository(db),
		di.NewIngestLimiter(cfg.TwelveData),
		window,
		invalidator,
	)

	symbols, err := symbolRepo.ListActiveCodes(ctx)
	if err != nil {
		return err
	}
	slog.Info("ingest started", "symbols", len(symbols))
	return uc.IngestAll(ctx, symbols)
}
