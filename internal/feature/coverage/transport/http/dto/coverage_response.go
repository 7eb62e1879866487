package dto

import "github.com/guregu/null/v6"

// CoverageItem は銘柄1件分のカバレッジのレスポンスDTOです。
// データがない銘柄では data_start / data_end / last_updated が null になります。
type CoverageItem struct {
	Symbol      string      `json:"symbol"`
	Name        string      `json:"name"`
	Exchange    string      `json:"exchange"`
	Currency    string      `json:"currency"`
	IsActive    bool        `json:"is_active"`
	DataStart   null.String `json:"data_start"`   // YYYY-MM-DD
	DataEnd     null.String `json:"data_end"`     // YYYY-MM-DD
	DataDays    int64       `json:"data_days"`    // 実データのある日数
	RowCount    int64       `json:"row_count"`    // 行数
	LastUpdated null.Time   `json:"last_updated"` // RFC 3339 (UTC)
	HasGaps     bool        `json:"has_gaps"`
}

// CoveragePage はページング済みのカバレッジ一覧です。
type CoveragePage struct {
	Items      []CoverageItem `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// ErrorResponse はエラー時のレスポンスDTOです。検証エラーでは原因の詳細を含みます。
type ErrorResponse struct {
	Error      string   `json:"error"`
	Field      string   `json:"field,omitempty"`
	Allowed    []string `json:"allowed,omitempty"`
	StartAfter string   `json:"start_after,omitempty"`
	EndBefore  string   `json:"end_before,omitempty"`
}
