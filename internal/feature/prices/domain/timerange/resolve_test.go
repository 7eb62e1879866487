package timerange

import (
	"testing"
	"time"

	symbolentity "pricehistory_backend/internal/feature/symbols/domain/entity"

	"github.com/stretchr/testify/assert"
)

var fbToMeta = []symbolentity.SymbolChange{
	{OldSymbol: "FB", NewSymbol: "META", ChangeDate: time.Date(2022, 6, 9, 0, 0, 0, 0, time.UTC)},
}

func seg(symbol, start, end string) Segment {
	return Segment{Symbol: symbol, Start: day(start), End: day(end)}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	multiHop := []symbolentity.SymbolChange{
		{OldSymbol: "B", NewSymbol: "C", ChangeDate: day("2021-01-01")},
		{OldSymbol: "A", NewSymbol: "B", ChangeDate: day("2020-01-01")},
	}

	tests := []struct {
		name      string
		requested string
		start     string
		end       string
		changes   []symbolentity.SymbolChange
		want      []Segment
	}{
		{
			name:      "no change mentions the symbol",
			requested: "AAPL",
			start:     "2022-01-01",
			end:       "2022-12-31",
			changes:   fbToMeta,
			want:      []Segment{seg("AAPL", "2022-01-01", "2022-12-31")},
		},
		{
			name:      "no changes at all",
			requested: "AAPL",
			start:     "2022-01-01",
			end:       "2022-01-31",
			want:      []Segment{seg("AAPL", "2022-01-01", "2022-01-31")},
		},
		{
			name:      "straddling range requested as new symbol",
			requested: "META",
			start:     "2022-06-01",
			end:       "2022-06-15",
			changes:   fbToMeta,
			want:      []Segment{seg("FB", "2022-06-01", "2022-06-08"), seg("META", "2022-06-09", "2022-06-15")},
		},
		{
			name:      "straddling range requested as old symbol",
			requested: "FB",
			start:     "2022-06-01",
			end:       "2022-06-15",
			changes:   fbToMeta,
			want:      []Segment{seg("FB", "2022-06-01", "2022-06-08"), seg("META", "2022-06-09", "2022-06-15")},
		},
		{
			name:      "range entirely before change",
			requested: "META",
			start:     "2022-01-01",
			end:       "2022-06-08",
			changes:   fbToMeta,
			want:      []Segment{seg("FB", "2022-01-01", "2022-06-08")},
		},
		{
			name:      "range starting on change date",
			requested: "FB",
			start:     "2022-06-09",
			end:       "2022-07-01",
			changes:   fbToMeta,
			want:      []Segment{seg("META", "2022-06-09", "2022-07-01")},
		},
		{
			name:      "single day on change date belongs to new symbol",
			requested: "META",
			start:     "2022-06-09",
			end:       "2022-06-09",
			changes:   fbToMeta,
			want:      []Segment{seg("META", "2022-06-09", "2022-06-09")},
		},
		{
			name:      "single day before change date belongs to old symbol",
			requested: "META",
			start:     "2022-06-08",
			end:       "2022-06-08",
			changes:   fbToMeta,
			want:      []Segment{seg("FB", "2022-06-08", "2022-06-08")},
		},
		{
			name:      "multi hop range spans both changes",
			requested: "C",
			start:     "2019-06-01",
			end:       "2021-06-01",
			changes:   multiHop,
			want: []Segment{
				seg("A", "2019-06-01", "2019-12-31"),
				seg("B", "2020-01-01", "2020-12-31"),
				seg("C", "2021-01-01", "2021-06-01"),
			},
		},
		{
			name:      "multi hop requested by middle symbol",
			requested: "B",
			start:     "2019-12-01",
			end:       "2021-01-31",
			changes:   multiHop,
			want: []Segment{
				seg("A", "2019-12-01", "2019-12-31"),
				seg("B", "2020-01-01", "2020-12-31"),
				seg("C", "2021-01-01", "2021-01-31"),
			},
		},
		{
			name:      "multi hop range between changes",
			requested: "A",
			start:     "2020-03-01",
			end:       "2020-04-01",
			changes:   multiHop,
			want:      []Segment{seg("B", "2020-03-01", "2020-04-01")},
		},
		{
			name:      "inverted range is returned unchanged",
			requested: "META",
			start:     "2022-07-01",
			end:       "2022-06-01",
			changes:   fbToMeta,
			want:      []Segment{seg("META", "2022-07-01", "2022-06-01")},
		},
		{
			name:      "cyclic changes terminate",
			requested: "X",
			start:     "2020-01-01",
			end:       "2020-12-31",
			changes: []symbolentity.SymbolChange{
				{OldSymbol: "X", NewSymbol: "Y", ChangeDate: day("2020-03-01")},
				{OldSymbol: "Y", NewSymbol: "X", ChangeDate: day("2020-09-01")},
			},
			want: []Segment{
				seg("Y", "2020-01-01", "2020-08-31"),
				seg("X", "2020-09-01", "2020-12-31"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(tt.requested, day(tt.start), day(tt.end), tt.changes)
			assert.Equal(t, tt.want, got)
		})
	}
}

// セグメントは時系列順に隙間なく並び、和集合が要求範囲と一致する。
func TestResolve_Totality(t *testing.T) {
	t.Parallel()

	changes := []symbolentity.SymbolChange{
		{OldSymbol: "FB", NewSymbol: "META", ChangeDate: day("2022-06-09")},
		{OldSymbol: "A", NewSymbol: "B", ChangeDate: day("2020-01-01")},
		{OldSymbol: "B", NewSymbol: "C", ChangeDate: day("2021-01-01")},
	}
	symbols := []string{"FB", "META", "A", "B", "C", "AAPL"}
	base := day("2019-06-01")

	for _, sym := range symbols {
		for offset := 0; offset < 1500; offset += 97 {
			for length := 0; length < 900; length += 131 {
				start := base.AddDate(0, 0, offset)
				end := start.AddDate(0, 0, length)

				segs := Resolve(sym, start, end, changes)

				if assert.NotEmpty(t, segs) {
					assert.Equal(t, start, segs[0].Start)
					assert.Equal(t, end, segs[len(segs)-1].End)
				}
				for i, s := range segs {
					assert.False(t, s.Start.After(s.End), "segment %d of %s inverted", i, sym)
					if i > 0 {
						assert.Equal(t, segs[i-1].End.AddDate(0, 0, 1), s.Start, "segments of %s must be contiguous", sym)
					}
				}
			}
		}
	}
}
