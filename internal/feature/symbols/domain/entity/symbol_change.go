package entity

import "time"

// SymbolChange records a ticker rename (e.g. FB -> META on 2022-06-09).
//
// ChangeDate is the first trading day under NewSymbol. The day before it is
// the last day that belongs to OldSymbol. NewSymbol is unique: a ticker can
// only be introduced by one rename.
type SymbolChange struct {
	ID         uint      `gorm:"primaryKey"`
	OldSymbol  string    `gorm:"size:20;not null;index"`
	NewSymbol  string    `gorm:"size:20;not null;uniqueIndex"`
	ChangeDate time.Time `gorm:"type:date;not null"`
	Reason     string    `gorm:"size:255;not null;default:''"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (SymbolChange) TableName() string {
	return "symbol_changes"
}
