package di

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	coverageadapters "pricehistory_backend/internal/feature/coverage/adapters"
	coverageusecase "pricehistory_backend/internal/feature/coverage/usecase"
	"pricehistory_backend/internal/platform/cache"
	"pricehistory_backend/internal/platform/config"
)

// NewStatsCache wraps the gorm price-stats reader with a Redis cache that expires
// at the configured daily refresh hour. A nil rdb disables caching.
func NewStatsCache(cfg config.CoverageConfig, db *gorm.DB, rdb *redis.Client) (*cache.CachingStatsReader, error) {
	loc, err := time.LoadLocation(cfg.CacheTimezone)
	if err != nil {
		return nil, fmt.Errorf("load cache timezone %q: %w", cfg.CacheTimezone, err)
	}
	inner := coverageadapters.NewPriceStatsRepository(db)
	return cache.NewCachingStatsReader(rdb, cache.UntilNextRefresh(cfg.CacheRefreshHour, loc), inner, "coverage"), nil
}

// NewRecorder selects the query-metric sink. The returned close func flushes
// pending metrics and must be called on shutdown.
func NewRecorder(ctx context.Context, cfg config.PerfLogConfig, pool *pgxpool.Pool) (coverageusecase.Recorder, func(), error) {
	var sink coverageusecase.MetricSink
	switch cfg.Sink {
	case "pgx":
		if pool == nil {
			return nil, nil, fmt.Errorf("perf_log sink %q requires a database pool", cfg.Sink)
		}
		pg := coverageadapters.NewPerfLogSink(pool)
		if err := pg.EnsureTable(ctx); err != nil {
			return nil, nil, err
		}
		sink = pg
	case "slog", "":
		sink = coverageadapters.NewSlogSink(slog.Default())
	case "none":
		return coverageusecase.NopRecorder{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown perf_log sink %q", cfg.Sink)
	}

	rec := coverageusecase.NewAsyncRecorder(sink, cfg.BufferSize)
	return rec, rec.Close, nil
}

// NewCoverageUsecase assembles the aggregator and planner from configuration.
func NewCoverageUsecase(cfg config.CoverageConfig, symbols coverageusecase.SymbolLister, stats coverageusecase.PriceStatsReader, rec coverageusecase.Recorder) *coverageusecase.CoverageUsecase {
	agg := coverageusecase.NewAggregator(symbols, stats, cfg.GapRatio)
	planner := coverageusecase.NewPlanner(cfg.MaxPageSize, cfg.ExportMaxRows)
	return coverageusecase.NewCoverageUsecase(agg, planner, rec, cfg.LookbackYears)
}
