// Package dto defines data transfer objects for the symbols HTTP API.
package dto

// SymbolItem represents a symbol in the API response.
// It contains only the public-facing fields needed by clients.
type SymbolItem struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Exchange string `json:"exchange"`
	Currency string `json:"currency"`
}

// SymbolChangeItem は銘柄変更履歴の1件を表します。
type SymbolChangeItem struct {
	OldSymbol  string `json:"old_symbol"`
	NewSymbol  string `json:"new_symbol"`
	ChangeDate string `json:"change_date"` // YYYY-MM-DD, 新銘柄での初日
	Reason     string `json:"reason,omitempty"`
}
