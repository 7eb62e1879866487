package timerange

import (
	"time"

	symbolentity "pricehistory_backend/internal/feature/symbols/domain/entity"
)

// Segment は日付範囲の一部と、その期間に実際に取引されていたティッカーの組です。
type Segment struct {
	Symbol string
	Start  time.Time
	End    time.Time
}

// Interval はセグメントの日付範囲を返します。
func (s Segment) Interval() Interval {
	return Interval{Start: s.Start, End: s.End}
}

// Resolve は requested の [start, end] を、期間中に使われていたティッカーごとの
// セグメント列に分割します。
//
// 変更日 C は新ティッカーに属し、旧ティッカーは C の前日までを担当します。
// A→B→C のような多段の改名は系譜をたどってすべて展開します。
// 結果は時系列順で、隙間なく連続し、和集合は [start, end] に一致します。
// start > end の場合は入力をそのまま1セグメントで返します(検証は呼び出し側の責務)。
func Resolve(requested string, start, end time.Time, changes []symbolentity.SymbolChange) []Segment {
	start, end = Day(start), Day(end)
	identity := []Segment{{Symbol: requested, Start: start, End: end}}
	if start.After(end) {
		return identity
	}

	chain := lineage(requested, changes)
	if len(chain) == 0 {
		return identity
	}

	segs := make([]Segment, 0, len(chain)+1)
	cur := start
	for _, ch := range chain {
		c := Day(ch.ChangeDate)
		if !c.After(cur) {
			// 範囲の開始時点ですでに改名済み
			continue
		}
		if c.After(end) {
			return append(segs, Segment{Symbol: ch.OldSymbol, Start: cur, End: end})
		}
		segs = append(segs, Segment{Symbol: ch.OldSymbol, Start: cur, End: c.AddDate(0, 0, -1)})
		cur = c
	}
	return append(segs, Segment{Symbol: chain[len(chain)-1].NewSymbol, Start: cur, End: end})
}

// lineage は requested を含む改名の連鎖を古い順に返します。
// new→old を遡り、old→new を辿ります。循環は最初に再訪した時点で打ち切ります。
// 同じ旧ティッカーから複数の改名がある場合は入力順で最初のものを採用します。
func lineage(requested string, changes []symbolentity.SymbolChange) []symbolentity.SymbolChange {
	byNew := make(map[string]symbolentity.SymbolChange, len(changes))
	byOld := make(map[string]symbolentity.SymbolChange, len(changes))
	for _, ch := range changes {
		if _, ok := byNew[ch.NewSymbol]; !ok {
			byNew[ch.NewSymbol] = ch
		}
		if _, ok := byOld[ch.OldSymbol]; !ok {
			byOld[ch.OldSymbol] = ch
		}
	}

	visited := map[string]bool{requested: true}

	var back []symbolentity.SymbolChange
	for cur := requested; ; {
		ch, ok := byNew[cur]
		if !ok || visited[ch.OldSymbol] {
			break
		}
		back = append(back, ch)
		visited[ch.OldSymbol] = true
		cur = ch.OldSymbol
	}

	chain := make([]symbolentity.SymbolChange, 0, len(back))
	for i := len(back) - 1; i >= 0; i-- {
		chain = append(chain, back[i])
	}

	for cur := requested; ; {
		ch, ok := byOld[cur]
		if !ok || visited[ch.NewSymbol] {
			break
		}
		chain = append(chain, ch)
		visited[ch.NewSymbol] = true
		cur = ch.NewSymbol
	}
	return chain
}
