package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidSortField は sort_by が許可されたフィールド以外の場合に返されます。
	ErrInvalidSortField = errors.New("invalid sort field")
	// ErrInvalidSortOrder は order が asc/desc 以外の場合に返されます。
	ErrInvalidSortOrder = errors.New("invalid sort order")
	// ErrInvalidDateRange は start_after が end_before より後の場合に返されます。
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrInvalidPagination は page または page_size が範囲外の場合に返されます。
	ErrInvalidPagination = errors.New("invalid pagination")
	// ErrStorage は集計元の読み取りに失敗した場合に返されます。呼び出し側の誤りではありません。
	ErrStorage = errors.New("coverage storage failure")
)

// SortFieldError は不正なソートフィールドと許可されたフィールドの一覧を保持します。
type SortFieldError struct {
	Field   string
	Allowed []string
}

func (e *SortFieldError) Error() string {
	return fmt.Sprintf("invalid sort field %q: must be one of %s", e.Field, strings.Join(e.Allowed, ", "))
}

func (e *SortFieldError) Unwrap() error {
	return ErrInvalidSortField
}

// DateRangeError は矛盾した日付フィルタの両端を保持します。
type DateRangeError struct {
	StartAfter time.Time
	EndBefore  time.Time
}

func (e *DateRangeError) Error() string {
	return fmt.Sprintf("invalid date range: start_after %s is after end_before %s",
		e.StartAfter.Format(time.DateOnly), e.EndBefore.Format(time.DateOnly))
}

func (e *DateRangeError) Unwrap() error {
	return ErrInvalidDateRange
}
