// Package usecase は日足データの取得と取り込みのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"pricehistory_backend/internal/feature/prices/domain/entity"
	"pricehistory_backend/internal/feature/prices/domain/timerange"
	symbolentity "pricehistory_backend/internal/feature/symbols/domain/entity"
)

// MaxSymbolsPerRequest は1リクエストで取得できる銘柄数の上限です。
const MaxSymbolsPerRequest = 50

// PriceReader は日足データの読み取りレイヤーを抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type PriceReader interface {
	// FindRange は保存ティッカー symbol の [start, end] の日足を日付昇順で返します。
	FindRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.PriceRow, error)
}

// SymbolChangeLister は銘柄変更履歴の取得を抽象化します。
type SymbolChangeLister interface {
	ListChanges(ctx context.Context) ([]symbolentity.SymbolChange, error)
}

// PricesUsecase は銘柄変更を考慮した価格履歴の取得を提供します。
type PricesUsecase struct {
	prices  PriceReader
	changes SymbolChangeLister
}

// NewPricesUsecase はPricesUsecaseの新しいインスタンスを生成します。
func NewPricesUsecase(prices PriceReader, changes SymbolChangeLister) *PricesUsecase {
	return &PricesUsecase{prices: prices, changes: changes}
}

// Resolve は symbol の [start, end] をティッカーごとのセグメントに分割します。
func (u *PricesUsecase) Resolve(ctx context.Context, symbol string, start, end time.Time) ([]timerange.Segment, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, ErrNoSymbols
	}
	if _, err := timerange.NewInterval(start, end); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}
	changes, err := u.changes.ListChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbol changes: %w", err)
	}
	return timerange.Resolve(symbol, start, end, changes), nil
}

// GetRange は要求された各銘柄の [start, end] の日足を、改名前のティッカーに保存された
// データも含めて返します。
//
// 結果は (要求銘柄, 日付) の昇順で並び、重複しません。
// 同じ保存ティッカーへのセグメントはMergeでまとめてから1回ずつ読み出します。
func (u *PricesUsecase) GetRange(ctx context.Context, symbols []string, start, end time.Time) ([]entity.ResolvedPriceRow, error) {
	requested := normalizeSymbols(symbols)
	if len(requested) == 0 {
		return nil, ErrNoSymbols
	}
	if len(requested) > MaxSymbolsPerRequest {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManySymbols, len(requested), MaxSymbolsPerRequest)
	}
	if _, err := timerange.NewInterval(start, end); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}

	changes, err := u.changes.ListChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list symbol changes: %w", err)
	}

	plan := make(map[string][]timerange.Segment, len(requested))
	byTicker := map[string][]timerange.Interval{}
	for _, sym := range requested {
		segs := timerange.Resolve(sym, start, end, changes)
		plan[sym] = segs
		for _, s := range segs {
			byTicker[s.Symbol] = append(byTicker[s.Symbol], s.Interval())
		}
	}

	fetched := make(map[string][]entity.PriceRow, len(byTicker))
	for ticker, ivs := range byTicker {
		for _, iv := range timerange.Merge(ivs) {
			rows, err := u.prices.FindRange(ctx, ticker, iv.Start, iv.End)
			if err != nil {
				return nil, fmt.Errorf("find %s %s..%s: %w", ticker, iv.Start.Format(time.DateOnly), iv.End.Format(time.DateOnly), err)
			}
			fetched[ticker] = append(fetched[ticker], rows...)
		}
	}

	out := make([]entity.ResolvedPriceRow, 0)
	for _, sym := range requested {
		seen := map[time.Time]struct{}{}
		for _, s := range plan[sym] {
			iv := s.Interval()
			for _, row := range fetched[s.Symbol] {
				d := timerange.Day(row.Date)
				if !iv.Contains(d) {
					continue
				}
				if _, dup := seen[d]; dup {
					continue
				}
				seen[d] = struct{}{}
				out = append(out, entity.ResolvedPriceRow{QueriedSymbol: sym, PriceRow: row})
			}
		}
	}

	slices.SortFunc(out, func(a, b entity.ResolvedPriceRow) int {
		if c := strings.Compare(a.QueriedSymbol, b.QueriedSymbol); c != 0 {
			return c
		}
		return a.Date.Compare(b.Date)
	})
	return out, nil
}

// normalizeSymbols は空白を除去し、大文字化して重複を取り除きます。順序は保持します。
func normalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
