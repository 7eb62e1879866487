package cache

import "time"

// TimeUntilNextRefresh は now から次の hour 時（loc の現地時刻）までの期間を返します。
// ちょうど hour 時の場合は翌日までの期間です。
func TimeUntilNextRefresh(now time.Time, hour int, loc *time.Location) time.Duration {
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)
	if !now.Before(next) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, loc)
	}
	return next.Sub(now)
}

// UntilNextRefresh は毎日 hour 時に失効する TTLFunc を返します。日次の取り込み後に古い集計が残らないようにします。
func UntilNextRefresh(hour int, loc *time.Location) TTLFunc {
	return func() time.Duration {
		return TimeUntilNextRefresh(time.Now(), hour, loc)
	}
}
