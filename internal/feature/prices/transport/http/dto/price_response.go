package dto

import "github.com/shopspring/decimal"

// PriceResponse は日足データのレスポンスDTOです。
// 価格は丸め誤差を避けるため文字列でシリアライズされます。
type PriceResponse struct {
	Symbol       string          `json:"symbol"`                  // 要求された銘柄
	SourceSymbol string          `json:"source_symbol,omitempty"` // 実際に保存されていたティッカー（異なる場合のみ）
	Date         string          `json:"date"`                    // 日付
	Open         decimal.Decimal `json:"open"`                    // 始値
	High         decimal.Decimal `json:"high"`                    // 高値
	Low          decimal.Decimal `json:"low"`                     // 安値
	Close        decimal.Decimal `json:"close"`                   // 終値
	Volume       int64           `json:"volume"`                  // 出来高
}

// SegmentResponse は銘柄解決結果の1区間です。
type SegmentResponse struct {
	Symbol string `json:"symbol"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
