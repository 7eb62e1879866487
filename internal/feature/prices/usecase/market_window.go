package usecase

import (
	"fmt"
	"time"
)

// MarketWindow は取引所の立会時間です。タイムゾーンは設定から注入されます。
type MarketWindow struct {
	Location *time.Location
	Open     time.Duration // 現地0時からの経過時間
	Close    time.Duration
}

// NewMarketWindow は "America/New_York", "09:30", "16:00" のような設定値から MarketWindow を生成します。
func NewMarketWindow(tz, open, closeAt string) (MarketWindow, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return MarketWindow{}, fmt.Errorf("load market timezone %q: %w", tz, err)
	}
	o, err := parseClock(open)
	if err != nil {
		return MarketWindow{}, fmt.Errorf("market open: %w", err)
	}
	c, err := parseClock(closeAt)
	if err != nil {
		return MarketWindow{}, fmt.Errorf("market close: %w", err)
	}
	if c <= o {
		return MarketWindow{}, fmt.Errorf("market close %s must be after open %s", closeAt, open)
	}
	return MarketWindow{Location: loc, Open: o, Close: c}, nil
}

func parseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("parse %q as HH:MM: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// IsOpen は t が平日の立会時間中かを返します。祝日は考慮しません。
func (w MarketWindow) IsOpen(t time.Time) bool {
	local := t.In(w.location())
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, w.location())
	sinceMidnight := local.Sub(midnight)
	return sinceMidnight >= w.Open && sinceMidnight < w.Close
}

// SessionDate は t の取引所現地日付をUTC 0時で返します。
func (w MarketWindow) SessionDate(t time.Time) time.Time {
	y, m, d := t.In(w.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (w MarketWindow) location() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}
