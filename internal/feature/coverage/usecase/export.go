package usecase

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"pricehistory_backend/internal/feature/coverage/domain/entity"

	"github.com/guregu/null/v6"
)

// CSVColumns はエクスポートCSVの列順です。変更すると下流の取り込みが壊れます。
var CSVColumns = []string{
	"symbol", "name", "exchange", "currency", "is_active",
	"data_start", "data_end", "data_days", "row_count", "last_updated", "has_gaps",
}

// WriteCSV はヘッダー行に続けて items を1行ずつ書き出します。
// 日付は YYYY-MM-DD、タイムスタンプは RFC 3339 (UTC)、欠損値は空文字です。
func WriteCSV(w io.Writer, items []entity.CoverageItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		record := []string{
			it.Symbol,
			it.Name,
			it.Exchange,
			it.Currency,
			strconv.FormatBool(it.IsActive),
			formatDate(it.DataStart),
			formatDate(it.DataEnd),
			strconv.FormatInt(it.DataDays, 10),
			strconv.FormatInt(it.RowCount, 10),
			formatTimestamp(it.LastUpdated),
			strconv.FormatBool(it.HasGaps),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", it.Symbol, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatDate(t null.Time) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(time.DateOnly)
}

func formatTimestamp(t null.Time) string {
	if !t.Valid {
		return ""
	}
	return t.Time.UTC().Format(time.RFC3339)
}
