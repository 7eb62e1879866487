package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"pricehistory_backend/internal/app/di"
	"pricehistory_backend/internal/app/router"
	coveragehandler "pricehistory_backend/internal/feature/coverage/transport/handler"
	pricesadapters "pricehistory_backend/internal/feature/prices/adapters"
	priceshandler "pricehistory_backend/internal/feature/prices/transport/handler"
	pricesusecase "pricehistory_backend/internal/feature/prices/usecase"
	symbolsadapters "pricehistory_backend/internal/feature/symbols/adapters"
	symbolshandler "pricehistory_backend/internal/feature/symbols/transport/handler"
	symbolsusecase "pricehistory_backend/internal/feature/symbols/usecase"
	"pricehistory_backend/internal/platform/config"
	platformdb "pricehistory_backend/internal/platform/db"
	platformhandler "pricehistory_backend/internal/platform/http/handler"
	"pricehistory_backend/internal/platform/logger"
	platformredis "pricehistory_backend/internal/platform/redis"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		slog.Info(".env not found; using system environment variables")
	}

	cfg, err := config.LoadConfig("config/config.toml", os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if missing := cfg.ValidateRequired(); len(missing) > 0 {
		slog.Warn("required configuration is missing", "fields", missing)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	db, err := platformdb.Open(cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		slog.Error("failed to get sql.DB", "error", err)
		os.Exit(1)
	}
	defer func() { _ = sqlDB.Close() }()

	// Redis（なくても動く）
	var rdb *redisv9.Client
	if cfg.Redis.Host != "" {
		if tmp, err := platformredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			slog.Warn("Redis unavailable. Running without cache.")
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					slog.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	// クエリ計測
	var pool *pgxpool.Pool
	if cfg.PerfLog.Sink == "pgx" {
		pool, err = platformdb.NewPgxPool(ctx, platformdb.BuildDSN(cfg.Database), 2)
		if err != nil {
			slog.Error("failed to open pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}
	recorder, closeRecorder, err := di.NewRecorder(ctx, cfg.PerfLog, pool)
	if err != nil {
		slog.Error("failed to set up query metrics", "error", err)
		os.Exit(1)
	}
	defer closeRecorder()

	// Repository
	symbolRepo := symbolsadapters.NewSymbolRepository(db)
	priceRepo := pricesadapters.NewPriceRepository(db)
	stats, err := di.NewStatsCache(cfg.Coverage, db, rdb)
	if err != nil {
		slog.Error("failed to set up coverage cache", "error", err)
		os.Exit(1)
	}

	// Usecase
	symbolUC := symbolsusecase.NewSymbolUsecase(symbolRepo)
	pricesUC := pricesusecase.NewPricesUsecase(priceRepo, symbolRepo)
	coverageUC := di.NewCoverageUsecase(cfg.Coverage, symbolRepo, stats, recorder)

	// ルータ生成
	r := router.NewRouter(
		platformhandler.NewHealth(sqlDB),
		symbolshandler.NewSymbolHandler(symbolUC),
		priceshandler.NewPricesHandler(pricesUC),
		coveragehandler.NewCoverageHandler(coverageUC),
		cfg.Coverage.ExportPerMinute,
	)

	srv := &http.Server{Addr: cfg.Server.Addr(), Handler: r}
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
