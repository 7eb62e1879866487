package entity

import "time"

// ExpectedTradingDays は [start, end] に含まれる平日の数を返します。
// 祝日は考慮しません。start > end の場合は 0 です。
func ExpectedTradingDays(start, end time.Time) int64 {
	start = dateOnly(start)
	end = dateOnly(end)
	if start.After(end) {
		return 0
	}

	days := int64(end.Sub(start).Hours()/24) + 1
	weeks := days / 7
	count := weeks * 5

	// 端数の日だけ曜日を見る
	for d := start.AddDate(0, 0, int(weeks*7)); !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}

// HasGaps は実データ日数が想定営業日数 * ratio を下回るかを判定します。
// dataDays == 0 の場合は常に false です。ratio <= 0 の場合は DefaultGapRatio を使います。
func HasGaps(start, end time.Time, dataDays int64, ratio float64) bool {
	if dataDays == 0 {
		return false
	}
	if ratio <= 0 {
		ratio = DefaultGapRatio
	}
	expected := ExpectedTradingDays(start, end)
	return float64(dataDays) < float64(expected)*ratio
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
