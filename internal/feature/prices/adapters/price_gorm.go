// Package adapters はpricesフィーチャーの永続化実装を提供します。
package adapters

import (
	"context"
	"time"

	"pricehistory_backend/internal/feature/prices/domain/entity"
	"pricehistory_backend/internal/feature/prices/usecase"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type priceGorm struct {
	db *gorm.DB
}

var (
	_ usecase.PriceReader = (*priceGorm)(nil)
	_ usecase.PriceWriter = (*priceGorm)(nil)
)

func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// PriceRowModel は日足1本を表すテーブル行です。(symbol, trade_date) が一意キーです。
type PriceRowModel struct {
	ID        uint      `gorm:"primaryKey"`
	Symbol    string    `gorm:"size:20;not null;uniqueIndex:daily_prices_sym_date,priority:1"`
	TradeDate time.Time `gorm:"type:date;not null;uniqueIndex:daily_prices_sym_date,priority:2;index:daily_prices_date"`

	Open   decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	High   decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Low    decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Close  decimal.Decimal `gorm:"type:numeric(20,6);not null"`
	Volume int64           `gorm:"not null;default:0"`

	Source      string    `gorm:"size:32;not null;default:''"`
	LastUpdated time.Time `gorm:"not null"`
}

func (PriceRowModel) TableName() string {
	return "daily_prices"
}

func toModel(e entity.PriceRow) PriceRowModel {
	return PriceRowModel{
		Symbol:      e.Symbol,
		TradeDate:   e.Date,
		Open:        e.Open,
		High:        e.High,
		Low:         e.Low,
		Close:       e.Close,
		Volume:      e.Volume,
		Source:      e.Source,
		LastUpdated: e.LastUpdated,
	}
}

func toEntity(m PriceRowModel) entity.PriceRow {
	return entity.PriceRow{
		Symbol:      m.Symbol,
		Date:        m.TradeDate.UTC(),
		Open:        m.Open,
		High:        m.High,
		Low:         m.Low,
		Close:       m.Close,
		Volume:      m.Volume,
		Source:      m.Source,
		LastUpdated: m.LastUpdated.UTC(),
	}
}

// UpsertBatch は (symbol, trade_date) が衝突した場合に価格と last_updated を上書きします。
func (r *priceGorm) UpsertBatch(ctx context.Context, rows []entity.PriceRow) error {
	if len(rows) == 0 {
		return nil
	}
	ms := make([]PriceRowModel, 0, len(rows))
	for _, e := range rows {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "trade_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "source", "last_updated"}),
	}).CreateInBatches(&ms, 500).Error
}

// FindRange は保存されているティッカー symbol の [start, end] の日足を日付昇順で返します。
func (r *priceGorm) FindRange(ctx context.Context, symbol string, start, end time.Time) ([]entity.PriceRow, error) {
	var rows []PriceRowModel
	if err := r.db.WithContext(ctx).
		Where("symbol = ? AND trade_date BETWEEN ? AND ?", symbol, start, end).
		Order("trade_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.PriceRow, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
