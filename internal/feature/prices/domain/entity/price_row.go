// Package entity defines the domain models for the prices feature.
package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidPriceRow is returned by Validate when a bar violates the OHLCV invariants.
var ErrInvalidPriceRow = errors.New("invalid price row")

// PriceRow represents one daily OHLCV bar stored under the ticker that was
// trading on that date. The pair (Symbol, Date) is unique.
type PriceRow struct {
	Symbol      string          // Stored ticker (e.g., "FB" before 2022-06-09, "META" after)
	Date        time.Time       // Trading date, UTC midnight
	Open        decimal.Decimal // Opening price
	High        decimal.Decimal // Highest price
	Low         decimal.Decimal // Lowest price
	Close       decimal.Decimal // Closing price
	Volume      int64           // Trading volume
	Source      string          // Feed the bar came from (e.g., "twelvedata")
	LastUpdated time.Time       // Set on every upsert
}

// Validate checks that prices are positive, that low and high bound the
// open and close, and that volume is non-negative.
func (p PriceRow) Validate() error {
	for name, v := range map[string]decimal.Decimal{"open": p.Open, "high": p.High, "low": p.Low, "close": p.Close} {
		if !v.IsPositive() {
			return fmt.Errorf("%w: %s %s on %s must be positive", ErrInvalidPriceRow, p.Symbol, name, p.Date.Format("2006-01-02"))
		}
	}
	if p.Low.GreaterThan(decimal.Min(p.Open, p.Close)) {
		return fmt.Errorf("%w: %s low %s above open/close on %s", ErrInvalidPriceRow, p.Symbol, p.Low, p.Date.Format("2006-01-02"))
	}
	if p.High.LessThan(decimal.Max(p.Open, p.Close)) {
		return fmt.Errorf("%w: %s high %s below open/close on %s", ErrInvalidPriceRow, p.Symbol, p.High, p.Date.Format("2006-01-02"))
	}
	if p.Volume < 0 {
		return fmt.Errorf("%w: %s negative volume on %s", ErrInvalidPriceRow, p.Symbol, p.Date.Format("2006-01-02"))
	}
	return nil
}

// ResolvedPriceRow is a PriceRow returned for a logical symbol request.
// QueriedSymbol is what the caller asked for. PriceRow.Symbol is the ticker
// the bar is actually stored under, which differs across a rename.
type ResolvedPriceRow struct {
	QueriedSymbol string
	PriceRow
}
