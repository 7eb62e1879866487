// Package entity defines the domain models for the symbols feature.
package entity

import "time"

// Symbol represents a ticker registered in the system.
// Symbols are soft-deactivated via IsActive and never deleted, so price
// history stored under a retired ticker stays reachable.
type Symbol struct {
	ID        uint       `gorm:"primaryKey"`
	Code      string     `gorm:"size:20;not null;uniqueIndex"`
	Name      string     `gorm:"size:255;not null"`
	Exchange  string     `gorm:"size:50;not null;default:''"`
	Currency  string     `gorm:"size:3;not null;default:''"`
	IsActive  bool       `gorm:"not null"`
	FirstDate *time.Time `gorm:"type:date"`
	LastDate  *time.Time `gorm:"type:date"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (Symbol) TableName() string {
	return "symbols"
}
