// Package timerange はシンボル変更を考慮した日付範囲の計算を提供します。
//
// 日付はすべてUTCの0時に正規化した time.Time で扱い、範囲は両端を含む閉区間です。
package timerange

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvertedInterval は開始日が終了日より後の場合に返されます。
var ErrInvertedInterval = errors.New("interval start is after end")

// Interval は両端を含む日付の閉区間 [Start, End] です。
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval は正規化済みの Interval を生成します。start > end の場合はエラーを返します。
func NewInterval(start, end time.Time) (Interval, error) {
	start, end = Day(start), Day(end)
	if start.After(end) {
		return Interval{}, fmt.Errorf("%w: %s > %s", ErrInvertedInterval, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return Interval{Start: start, End: end}, nil
}

// Contains は日付 d が区間に含まれるかを返します。
func (i Interval) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(i.Start) && !d.After(i.End)
}

// Days は区間に含まれる暦日数です。
func (i Interval) Days() int {
	return int(i.End.Sub(i.Start).Hours()/24) + 1
}

// Day は t の年月日をUTCの0時に揃えます。タイムゾーンの変換は行いません。
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay は YYYY-MM-DD 形式の日付をパースします。
func ParseDay(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}
