package usecase

import (
	"context"
	"log/slog"
	"time"

	"pricehistory_backend/internal/feature/prices/domain/entity"
	"pricehistory_backend/internal/feature/prices/domain/timerange"
	"pricehistory_backend/internal/shared/ratelimiter"
)

const (
	ingestOutputSize = 200 // 1回のリクエストで取得するデータ件数
	ingestSource     = "twelvedata"
)

// MarketRepository は株価データを取得するリポジトリのインターフェイスです。
// 外部 API の実装を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	GetDailySeries(ctx context.Context, symbol string, outputsize int) ([]entity.PriceRow, error)
}

// PriceWriter は日足データの書き込みを抽象化します。
type PriceWriter interface {
	UpsertBatch(ctx context.Context, rows []entity.PriceRow) error
}

// CacheInvalidator は取り込み後に古くなった集計キャッシュを破棄します。
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// IngestUsecase は外部APIからデータを取得し、データベースに永続化するユースケースを定義します。
type IngestUsecase struct {
	market      MarketRepository
	prices      PriceWriter
	rateLimiter ratelimiter.RateLimiterInterface
	window      MarketWindow
	invalidator CacheInvalidator
	now         func() time.Time
}

// NewIngestUsecase は新しい IngestUsecase を作成します。invalidator は nil でも構いません。
func NewIngestUsecase(market MarketRepository, prices PriceWriter, rateLimiter ratelimiter.RateLimiterInterface, window MarketWindow, invalidator CacheInvalidator) *IngestUsecase {
	return &IngestUsecase{
		market:      market,
		prices:      prices,
		rateLimiter: rateLimiter,
		window:      window,
		invalidator: invalidator,
		now:         time.Now,
	}
}

// ingestOne は指定された銘柄の日足を外部リポジトリから取得し、データベースに一括で挿入（または更新）します。
// 取り込んだ件数を返します。
func (iu *IngestUsecase) ingestOne(ctx context.Context, symbol string, outputsize int) (int, error) {
	rows, err := iu.market.GetDailySeries(ctx, symbol, outputsize)
	if err != nil {
		return 0, err
	}

	now := iu.now()
	// 立会中の当日足は未確定なので保存しない
	var today time.Time
	if iu.window.IsOpen(now) {
		today = iu.window.SessionDate(now)
	}

	keep := make([]entity.PriceRow, 0, len(rows))
	for _, r := range rows {
		r.Symbol = symbol
		r.Date = timerange.Day(r.Date)
		r.Source = ingestSource
		r.LastUpdated = now.UTC()
		if !today.IsZero() && !r.Date.Before(today) {
			slog.Debug("skipping in-session bar", "symbol", symbol, "date", r.Date.Format(time.DateOnly))
			continue
		}
		if err := r.Validate(); err != nil {
			slog.Warn("dropping invalid bar", "symbol", symbol, "error", err)
			continue
		}
		keep = append(keep, r)
	}
	if err := iu.prices.UpsertBatch(ctx, keep); err != nil {
		return 0, err
	}
	return len(keep), nil
}

// IngestAll は指定された全銘柄の日足を取得してデータベースに永続化します。
// APIのレートリミットを考慮して、リクエスト間に適切な待機時間を設けます。
// 1銘柄の失敗では止まらず、コンテキストがキャンセルされた場合のみエラーを返します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, symbols []string) error {
	total := 0
	for _, s := range symbols {
		if err := iu.rateLimiter.Wait(ctx); err != nil {
			return err
		}
		n, err := iu.ingestOne(ctx, s, ingestOutputSize)
		if err != nil {
			// 1つの銘柄でエラーが発生しても処理を止めずにログに出力し、次の処理を続ける
			slog.Error("failed to ingest data", "symbol", s, "error", err)
			continue
		}
		total += n
	}
	slog.Info("ingest finished", "symbols", len(symbols), "rows", total)

	if iu.invalidator != nil {
		if err := iu.invalidator.Invalidate(ctx); err != nil {
			slog.Warn("failed to invalidate coverage cache", "error", err)
		}
	}
	return nil
}
