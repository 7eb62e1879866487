// Package entity defines the coverage read model.
package entity

import (
	"time"

	"github.com/guregu/null/v6"
)

// DefaultGapRatio は営業日に対する実データ日数の下限比率です。
// これを下回ると has_gaps=true になります。祝日分の欠けはこの比率で吸収します。
const DefaultGapRatio = 0.9

// PriceStats は保存ティッカー1つ分の集計値です。行がないティッカーは含まれません。
type PriceStats struct {
	Symbol      string    `json:"symbol"`
	DataStart   time.Time `json:"data_start"`
	DataEnd     time.Time `json:"data_end"`
	DataDays    int64     `json:"data_days"`
	RowCount    int64     `json:"row_count"`
	LastUpdated time.Time `json:"last_updated"`
}

// CoverageItem は銘柄ごとのデータカバレッジです。永続化はされず、都度集計されます。
//
// 不変条件:
//   - RowCount == 0 なら DataDays == 0、DataStart/DataEnd/LastUpdated は null、HasGaps は false
//   - DataDays > 0 なら DataStart <= DataEnd
type CoverageItem struct {
	Symbol   string
	Name     string
	Exchange string
	Currency string
	IsActive bool

	DataStart   null.Time
	DataEnd     null.Time
	DataDays    int64
	RowCount    int64
	LastUpdated null.Time
	HasGaps     bool
}

// HasData はこの銘柄に少なくとも1行の価格データがあるかを返します。
func (c CoverageItem) HasData() bool {
	return c.DataStart.Valid
}
