// Package usecase は銘柄ごとのデータカバレッジの集計・検索・エクスポートを実装します。
package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"pricehistory_backend/internal/feature/coverage/domain/entity"
	symbolentity "pricehistory_backend/internal/feature/symbols/domain/entity"

	"github.com/guregu/null/v6"
)

// SymbolLister は集計対象となる全銘柄（非アクティブを含む）を返します。
type SymbolLister interface {
	ListAll(ctx context.Context) ([]symbolentity.Symbol, error)
}

// PriceStatsReader は [from, to] に含まれる日足をティッカーごとに集計して返します。
type PriceStatsReader interface {
	PriceStats(ctx context.Context, from, to time.Time) ([]entity.PriceStats, error)
}

// Scope は集計対象期間です。両端を含みます。
type Scope struct {
	From time.Time
	To   time.Time
}

// Aggregator は銘柄マスタと価格統計を結合して CoverageItem を作ります。
type Aggregator struct {
	symbols  SymbolLister
	stats    PriceStatsReader
	gapRatio float64
}

// NewAggregator は Aggregator を生成します。gapRatio <= 0 の場合は entity.DefaultGapRatio を使います。
func NewAggregator(symbols SymbolLister, stats PriceStatsReader, gapRatio float64) *Aggregator {
	if gapRatio <= 0 {
		gapRatio = entity.DefaultGapRatio
	}
	return &Aggregator{symbols: symbols, stats: stats, gapRatio: gapRatio}
}

// Aggregate は登録済みの全銘柄について scope 内のカバレッジを返します。結果は銘柄コード順です。
// 読み取りに失敗した場合は ErrStorage でラップしたエラーを返し、リトライはしません。
func (a *Aggregator) Aggregate(ctx context.Context, scope Scope) ([]entity.CoverageItem, error) {
	symbols, err := a.symbols.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: list symbols: %w", ErrStorage, err)
	}
	stats, err := a.stats.PriceStats(ctx, scope.From, scope.To)
	if err != nil {
		return nil, fmt.Errorf("%w: price stats: %w", ErrStorage, err)
	}

	bySymbol := make(map[string]entity.PriceStats, len(stats))
	for _, s := range stats {
		bySymbol[s.Symbol] = s
	}

	items := make([]entity.CoverageItem, 0, len(symbols))
	for _, sym := range symbols {
		item := entity.CoverageItem{
			Symbol:   sym.Code,
			Name:     sym.Name,
			Exchange: sym.Exchange,
			Currency: sym.Currency,
			IsActive: sym.IsActive,
		}
		if st, ok := bySymbol[sym.Code]; ok && st.RowCount > 0 {
			item.DataStart = null.TimeFrom(st.DataStart)
			item.DataEnd = null.TimeFrom(st.DataEnd)
			item.DataDays = st.DataDays
			item.RowCount = st.RowCount
			item.LastUpdated = null.TimeFrom(st.LastUpdated.UTC())
			item.HasGaps = entity.HasGaps(st.DataStart, st.DataEnd, st.DataDays, a.gapRatio)
		}
		items = append(items, item)
	}

	slices.SortFunc(items, func(x, y entity.CoverageItem) int {
		return strings.Compare(x.Symbol, y.Symbol)
	})
	return items, nil
}
