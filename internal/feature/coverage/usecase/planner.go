package usecase

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"pricehistory_backend/internal/feature/coverage/domain/entity"
)

const (
	// DefaultPageSize はページサイズ未指定時の件数です。
	DefaultPageSize = 50
	// DefaultMaxPageSize は1ページに返せる最大件数です。
	DefaultMaxPageSize = 500
	// DefaultExportRows はエクスポート件数未指定時の上限です。
	DefaultExportRows = 10000

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ソート可能なフィールドです。
const (
	SortSymbol      = "symbol"
	SortName        = "name"
	SortExchange    = "exchange"
	SortCurrency    = "currency"
	SortIsActive    = "is_active"
	SortDataStart   = "data_start"
	SortDataEnd     = "data_end"
	SortDataDays    = "data_days"
	SortRowCount    = "row_count"
	SortLastUpdated = "last_updated"
)

// SortFields は sort_by に指定できる値の一覧です。
var SortFields = []string{
	SortSymbol, SortName, SortExchange, SortCurrency, SortIsActive,
	SortDataStart, SortDataEnd, SortDataDays, SortRowCount, SortLastUpdated,
}

// QueryParams はカバレッジ一覧の検索条件です。nil のフィルタは適用されません。
type QueryParams struct {
	Page     int
	PageSize int

	Search       string     // 銘柄コードまたは名称の部分一致（大文字小文字を区別しない）
	HasData      *bool      // true: データあり / false: データなし
	StartAfter   *time.Time // data_start >= StartAfter
	EndBefore    *time.Time // data_end <= EndBefore
	UpdatedAfter *time.Time // last_updated >= UpdatedAfter

	SortBy string // 必須。SortFields のいずれか
	Order  string
}

// Page はページング済みの検索結果です。
type Page struct {
	Items      []entity.CoverageItem
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Planner はカバレッジ一覧のフィルタ・ソート・ページングを行います。
type Planner struct {
	maxPageSize   int
	exportCeiling int
}

// NewPlanner は Planner を生成します。0 以下の値は既定値になります。
func NewPlanner(maxPageSize, exportCeiling int) *Planner {
	if maxPageSize <= 0 {
		maxPageSize = DefaultMaxPageSize
	}
	if exportCeiling <= 0 {
		exportCeiling = DefaultExportRows
	}
	return &Planner{maxPageSize: maxPageSize, exportCeiling: exportCeiling}
}

// Validate はストレージに触れる前に検出できる呼び出し側の誤りを検査します。
func (p *Planner) Validate(q QueryParams) error {
	if err := validateFilters(q); err != nil {
		return err
	}
	if q.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", ErrInvalidPagination, q.Page)
	}
	if q.PageSize < 1 || q.PageSize > p.maxPageSize {
		return fmt.Errorf("%w: page_size must be between 1 and %d, got %d", ErrInvalidPagination, p.maxPageSize, q.PageSize)
	}
	return nil
}

func validateFilters(q QueryParams) error {
	if !slices.Contains(SortFields, sortField(q)) {
		return &SortFieldError{Field: q.SortBy, Allowed: slices.Clone(SortFields)}
	}
	if o := sortOrder(q); o != OrderAsc && o != OrderDesc {
		return fmt.Errorf("%w: %q must be asc or desc", ErrInvalidSortOrder, q.Order)
	}
	if q.StartAfter != nil && q.EndBefore != nil && q.StartAfter.After(*q.EndBefore) {
		return &DateRangeError{StartAfter: *q.StartAfter, EndBefore: *q.EndBefore}
	}
	return nil
}

// Query は items をフィルタ・ソートし、要求されたページを返します。
// 範囲外のページは空の Items を返します。items は変更しません。
func (p *Planner) Query(items []entity.CoverageItem, q QueryParams) (Page, error) {
	if err := p.Validate(q); err != nil {
		return Page{}, err
	}

	matched := filterItems(items, q)
	sortItems(matched, sortField(q), sortOrder(q) == OrderDesc)

	total := len(matched)
	totalPages := max(1, (total+q.PageSize-1)/q.PageSize)

	// 乗算前に範囲外ページを判定し、巨大な page での桁あふれを防ぐ
	from := total
	if q.Page <= totalPages {
		from = (q.Page - 1) * q.PageSize
	}
	to := min(from+q.PageSize, total)

	return Page{
		Items:      matched[from:to],
		Total:      total,
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Export はページングせずにフィルタ・ソート済みの items を最大 maxRows 件返します。
// maxRows <= 0 は既定値、上限を超える値は上限に丸めます。
func (p *Planner) Export(items []entity.CoverageItem, q QueryParams, maxRows int) ([]entity.CoverageItem, error) {
	if err := validateFilters(q); err != nil {
		return nil, err
	}
	if maxRows <= 0 {
		maxRows = DefaultExportRows
	}
	maxRows = min(maxRows, p.exportCeiling)

	matched := filterItems(items, q)
	sortItems(matched, sortField(q), sortOrder(q) == OrderDesc)
	if len(matched) > maxRows {
		matched = matched[:maxRows]
	}
	return matched, nil
}

// sortField は既定値を補いません。未指定時の既定 (SortSymbol) は呼び出し側で設定します。
func sortField(q QueryParams) string {
	return q.SortBy
}

func sortOrder(q QueryParams) string {
	if q.Order == "" {
		return OrderAsc
	}
	return strings.ToLower(q.Order)
}

func filterItems(items []entity.CoverageItem, q QueryParams) []entity.CoverageItem {
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]entity.CoverageItem, 0, len(items))
	for _, it := range items {
		if needle != "" &&
			!strings.Contains(strings.ToLower(it.Symbol), needle) &&
			!strings.Contains(strings.ToLower(it.Name), needle) {
			continue
		}
		if q.HasData != nil && it.HasData() != *q.HasData {
			continue
		}
		if q.StartAfter != nil && (!it.DataStart.Valid || it.DataStart.Time.Before(*q.StartAfter)) {
			continue
		}
		if q.EndBefore != nil && (!it.DataEnd.Valid || it.DataEnd.Time.After(*q.EndBefore)) {
			continue
		}
		if q.UpdatedAfter != nil && (!it.LastUpdated.Valid || it.LastUpdated.Time.Before(*q.UpdatedAfter)) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// sortItems は field で並べ替えます。null は昇順・降順のどちらでも末尾に置き、
// 同値の場合は銘柄コードの昇順で並べます。
func sortItems(items []entity.CoverageItem, field string, desc bool) {
	slices.SortStableFunc(items, func(a, b entity.CoverageItem) int {
		an, bn := isNull(a, field), isNull(b, field)
		switch {
		case an && !bn:
			return 1
		case !an && bn:
			return -1
		case !an && !bn:
			c := compareField(a, b, field)
			if desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(a.Symbol, b.Symbol)
	})
}

func isNull(it entity.CoverageItem, field string) bool {
	switch field {
	case SortDataStart:
		return !it.DataStart.Valid
	case SortDataEnd:
		return !it.DataEnd.Valid
	case SortLastUpdated:
		return !it.LastUpdated.Valid
	}
	return false
}

func compareField(a, b entity.CoverageItem, field string) int {
	switch field {
	case SortSymbol:
		return strings.Compare(a.Symbol, b.Symbol)
	case SortName:
		return strings.Compare(a.Name, b.Name)
	case SortExchange:
		return strings.Compare(a.Exchange, b.Exchange)
	case SortCurrency:
		return strings.Compare(a.Currency, b.Currency)
	case SortIsActive:
		return compareBool(a.IsActive, b.IsActive)
	case SortDataStart:
		return a.DataStart.Time.Compare(b.DataStart.Time)
	case SortDataEnd:
		return a.DataEnd.Time.Compare(b.DataEnd.Time)
	case SortDataDays:
		return cmp.Compare(a.DataDays, b.DataDays)
	case SortRowCount:
		return cmp.Compare(a.RowCount, b.RowCount)
	case SortLastUpdated:
		return a.LastUpdated.Time.Compare(b.LastUpdated.Time)
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
