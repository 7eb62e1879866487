package usecase

import (
	"context"
	"io"
	"strconv"
	"time"

	"pricehistory_backend/internal/feature/coverage/domain/entity"
)

// DefaultLookbackYears は集計対象期間の既定の長さです。
const DefaultLookbackYears = 5

// CoverageUsecase はカバレッジ一覧の取得とCSVエクスポートを提供します。
type CoverageUsecase struct {
	aggregator    *Aggregator
	planner       *Planner
	recorder      Recorder
	lookbackYears int
	now           func() time.Time
}

// NewCoverageUsecase は CoverageUsecase を生成します。recorder が nil の場合は計測しません。
func NewCoverageUsecase(aggregator *Aggregator, planner *Planner, recorder Recorder, lookbackYears int) *CoverageUsecase {
	if recorder == nil {
		recorder = NopRecorder{}
	}
	if lookbackYears <= 0 {
		lookbackYears = DefaultLookbackYears
	}
	return &CoverageUsecase{
		aggregator:    aggregator,
		planner:       planner,
		recorder:      recorder,
		lookbackYears: lookbackYears,
		now:           time.Now,
	}
}

// scope は今日から lookbackYears 年前までの期間を返します。
func (u *CoverageUsecase) scope() Scope {
	y, m, d := u.now().UTC().Date()
	to := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Scope{From: to.AddDate(-u.lookbackYears, 0, 0), To: to}
}

// List は条件に合うカバレッジ一覧の1ページを返します。
func (u *CoverageUsecase) List(ctx context.Context, q QueryParams) (Page, error) {
	if err := u.planner.Validate(q); err != nil {
		return Page{}, err
	}

	started := time.Now()
	items, err := u.aggregator.Aggregate(ctx, u.scope())
	if err != nil {
		return Page{}, err
	}
	page, err := u.planner.Query(items, q)
	if err != nil {
		return Page{}, err
	}

	u.recorder.Record(ctx, QueryMetric{
		Name:     "coverage.list",
		Duration: time.Since(started),
		RowCount: page.Total,
		Params:   metricParams(q),
	})
	return page, nil
}

// Export は条件に合うカバレッジを最大 maxRows 件CSVとして w に書き出し、書き出した件数を返します。
func (u *CoverageUsecase) Export(ctx context.Context, w io.Writer, q QueryParams, maxRows int) (int, error) {
	if err := validateFilters(q); err != nil {
		return 0, err
	}

	started := time.Now()
	items, err := u.aggregator.Aggregate(ctx, u.scope())
	if err != nil {
		return 0, err
	}
	rows, err := u.planner.Export(items, q, maxRows)
	if err != nil {
		return 0, err
	}
	if err := WriteCSV(w, rows); err != nil {
		return 0, err
	}

	params := metricParams(q)
	params["max_rows"] = strconv.Itoa(maxRows)
	u.recorder.Record(ctx, QueryMetric{
		Name:     "coverage.export",
		Duration: time.Since(started),
		RowCount: len(rows),
		Params:   params,
	})
	return len(rows), nil
}

// Items はフィルタ前の全カバレッジを返します。CLIからの確認用です。
func (u *CoverageUsecase) Items(ctx context.Context) ([]entity.CoverageItem, error) {
	return u.aggregator.Aggregate(ctx, u.scope())
}

func metricParams(q QueryParams) map[string]string {
	p := map[string]string{
		"page":      strconv.Itoa(q.Page),
		"page_size": strconv.Itoa(q.PageSize),
		"sort_by":   sortField(q),
		"order":     sortOrder(q),
	}
	if q.Search != "" {
		p["q"] = q.Search
	}
	if q.HasData != nil {
		p["has_data"] = strconv.FormatBool(*q.HasData)
	}
	if q.StartAfter != nil {
		p["start_after"] = q.StartAfter.Format(time.DateOnly)
	}
	if q.EndBefore != nil {
		p["end_before"] = q.EndBefore.Format(time.DateOnly)
	}
	if q.UpdatedAfter != nil {
		p["updated_after"] = q.UpdatedAfter.UTC().Format(time.RFC3339)
	}
	return p
}
