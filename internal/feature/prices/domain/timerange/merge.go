package timerange

import (
	"slices"
)

// Merge は区間を開始日順に並べ、重なる区間と隣接する区間を結合します。
// 入力スライスは変更しません。結果は互いに重ならず、隣接もしない昇順の区間列です。
func Merge(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return []Interval{}
	}

	sorted := make([]Interval, 0, len(intervals))
	for _, iv := range intervals {
		sorted = append(sorted, Interval{Start: Day(iv.Start), End: Day(iv.End)})
	}
	slices.SortFunc(sorted, func(a, b Interval) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		// 翌日から始まる区間も連続とみなす
		if !iv.Start.After(last.End.AddDate(0, 0, 1)) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}
