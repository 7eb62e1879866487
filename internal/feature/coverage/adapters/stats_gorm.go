// Package adapters はcoverageフィーチャーの集計元と計測の書き込み先を提供します。
package adapters

import (
	"context"
	"fmt"
	"time"

	"pricehistory_backend/internal/feature/coverage/domain/entity"
	"pricehistory_backend/internal/feature/coverage/usecase"

	"gorm.io/gorm"
)

// dailyPricesTable は prices フィーチャーが書き込む日足テーブルです。
const dailyPricesTable = "daily_prices"

type statsGorm struct {
	db *gorm.DB
}

var _ usecase.PriceStatsReader = (*statsGorm)(nil)

func NewPriceStatsRepository(db *gorm.DB) *statsGorm {
	return &statsGorm{db: db}
}

// PriceStats は [from, to] の日足をティッカーごとに1クエリで集計します。
// 期間内に行がないティッカーは結果に含まれません。
func (r *statsGorm) PriceStats(ctx context.Context, from, to time.Time) ([]entity.PriceStats, error) {
	rows, err := r.db.WithContext(ctx).
		Table(dailyPricesTable).
		Select(`symbol,
			MIN(trade_date) AS data_start,
			MAX(trade_date) AS data_end,
			COUNT(DISTINCT trade_date) AS data_days,
			COUNT(*) AS row_count,
			MAX(last_updated) AS last_updated`).
		Where("trade_date BETWEEN ? AND ?", from, to).
		Group("symbol").
		Order("symbol").
		Rows()
	if err != nil {
		return nil, fmt.Errorf("query price stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entity.PriceStats
	for rows.Next() {
		var (
			s                  entity.PriceStats
			start, end, update sqlTime
		)
		if err := rows.Scan(&s.Symbol, &start, &end, &s.DataDays, &s.RowCount, &update); err != nil {
			return nil, fmt.Errorf("scan price stats: %w", err)
		}
		s.DataStart = dateOf(start.Time)
		s.DataEnd = dateOf(end.Time)
		s.LastUpdated = update.Time.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price stats: %w", err)
	}
	return out, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sqlTime は集約関数の戻り値を time.Time として読み取ります。
// PostgreSQL は time.Time を返しますが、SQLite は MIN/MAX の結果を文字列で返します。
type sqlTime struct {
	Time time.Time
}

var sqliteTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	time.DateOnly,
}

func (t *sqlTime) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	}
	return fmt.Errorf("unsupported time value %T", src)
}

func (t *sqlTime) parse(s string) error {
	for _, layout := range sqliteTimeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unparseable time %q", s)
}
