package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"pricehistory_backend/internal/feature/prices/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ErrMarketAPI = errors.New("market API error")
	ErrDB        = errors.New("database error")
)

// mockMarketRepository is a mock implementation of the MarketRepository interface.
type mockMarketRepository struct {
	GetDailySeriesFunc  func(ctx context.Context, symbol string, outputsize int) ([]entity.PriceRow, error)
	GetDailySeriesCalls int
}

func (m *mockMarketRepository) GetDailySeries(ctx context.Context, symbol string, outputsize int) ([]entity.PriceRow, error) {
	m.GetDailySeriesCalls++
	if m.GetDailySeriesFunc != nil {
		return m.GetDailySeriesFunc(ctx, symbol, outputsize)
	}
	return nil, errors.New("GetDailySeriesFunc is not implemented")
}

type mockPriceWriter struct {
	UpsertBatchFunc func(ctx context.Context, rows []entity.PriceRow) error
	upserted        []entity.PriceRow
}

func (m *mockPriceWriter) UpsertBatch(ctx context.Context, rows []entity.PriceRow) error {
	m.upserted = append(m.upserted, rows...)
	if m.UpsertBatchFunc != nil {
		return m.UpsertBatchFunc(ctx, rows)
	}
	return nil
}

// mockRateLimiter is a mock implementation of the RateLimiterInterface.
type mockRateLimiter struct {
	WaitCalls int
	err       error
}

func (m *mockRateLimiter) Wait(ctx context.Context) error {
	m.WaitCalls++
	return m.err
}

type mockInvalidator struct {
	calls int
	err   error
}

func (m *mockInvalidator) Invalidate(ctx context.Context) error {
	m.calls++
	return m.err
}

func mustWindow(t *testing.T) MarketWindow {
	t.Helper()
	w, err := NewMarketWindow("America/New_York", "09:30", "16:00")
	require.NoError(t, err)
	return w
}

func dailyBar(date string, open, high, low, closePrice int64) entity.PriceRow {
	d, _ := time.Parse(time.DateOnly, date)
	return entity.PriceRow{
		Date:   d,
		Open:   decimal.NewFromInt(open),
		High:   decimal.NewFromInt(high),
		Low:    decimal.NewFromInt(low),
		Close:  decimal.NewFromInt(closePrice),
		Volume: 1000,
	}
}

func TestIngestUsecase_ingestOne(t *testing.T) {
	ctx := context.Background()
	// 2024-01-10 (水) 12:00 America/New_York = 17:00 UTC, 立会中
	inSession := time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC)
	// 2024-01-10 (水) 20:00 America/New_York, 引け後
	afterClose := time.Date(2024, 1, 11, 1, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		now         time.Time
		series      []entity.PriceRow
		marketErr   error
		upsertErr   error
		wantErr     error
		wantDates   []string
		wantWritten int
	}{
		{
			name: "success: bars are stamped and stored",
			now:  afterClose,
			series: []entity.PriceRow{
				dailyBar("2024-01-09", 100, 110, 90, 105),
				dailyBar("2024-01-10", 105, 115, 95, 110),
			},
			wantDates:   []string{"2024-01-09", "2024-01-10"},
			wantWritten: 2,
		},
		{
			name: "success: today's bar is skipped while market is open",
			now:  inSession,
			series: []entity.PriceRow{
				dailyBar("2024-01-09", 100, 110, 90, 105),
				dailyBar("2024-01-10", 105, 115, 95, 110),
			},
			wantDates:   []string{"2024-01-09"},
			wantWritten: 1,
		},
		{
			name: "success: invalid bars are dropped",
			now:  afterClose,
			series: []entity.PriceRow{
				dailyBar("2024-01-08", 100, 90, 95, 105), // high < close
				dailyBar("2024-01-09", 100, 110, 90, 105),
			},
			wantDates:   []string{"2024-01-09"},
			wantWritten: 1,
		},
		{
			name:      "error: MarketRepository returns error",
			now:       afterClose,
			marketErr: ErrMarketAPI,
			wantErr:   ErrMarketAPI,
		},
		{
			name:      "error: PriceWriter returns error",
			now:       afterClose,
			series:    []entity.PriceRow{dailyBar("2024-01-09", 100, 110, 90, 105)},
			upsertErr: ErrDB,
			wantErr:   ErrDB,
			wantDates: []string{"2024-01-09"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			market := &mockMarketRepository{
				GetDailySeriesFunc: func(ctx context.Context, symbol string, outputsize int) ([]entity.PriceRow, error) {
					assert.Equal(t, "AAPL", symbol)
					assert.Equal(t, 200, outputsize)
					return tt.series, tt.marketErr
				},
			}
			writer := &mockPriceWriter{UpsertBatchFunc: func(ctx context.Context, rows []entity.PriceRow) error {
				return tt.upsertErr
			}}

			uc := NewIngestUsecase(market, writer, &mockRateLimiter{}, mustWindow(t), nil)
			uc.now = func() time.Time { return tt.now }

			n, err := uc.ingestOne(ctx, "AAPL", 200)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantWritten, n)
			}

			var dates []string
			for _, r := range writer.upserted {
				dates = append(dates, r.Date.Format(time.DateOnly))
				assert.Equal(t, "AAPL", r.Symbol)
				assert.Equal(t, "twelvedata", r.Source)
				assert.Equal(t, tt.now.UTC(), r.LastUpdated)
			}
			assert.Equal(t, tt.wantDates, dates)
			assert.Equal(t, 1, market.GetDailySeriesCalls)
		})
	}
}

func TestIngestUsecase_IngestAll(t *testing.T) {
	ctx := context.Background()

	t.Run("continues after a failing symbol and invalidates cache", func(t *testing.T) {
		market := &mockMarketRepository{
			GetDailySeriesFunc: func(ctx context.Context, symbol string, outputsize int) ([]entity.PriceRow, error) {
				if symbol == "BAD" {
					return nil, ErrMarketAPI
				}
				return []entity.PriceRow{dailyBar("2024-01-09", 100, 110, 90, 105)}, nil
			},
		}
		writer := &mockPriceWriter{}
		rl := &mockRateLimiter{}
		inv := &mockInvalidator{}

		uc := NewIngestUsecase(market, writer, rl, mustWindow(t), inv)
		uc.now = func() time.Time { return time.Date(2024, 1, 13, 12, 0, 0, 0, time.UTC) } // 土曜

		err := uc.IngestAll(ctx, []string{"AAPL", "BAD", "MSFT"})

		assert.NoError(t, err)
		assert.Equal(t, 3, market.GetDailySeriesCalls)
		assert.Equal(t, 3, rl.WaitCalls)
		assert.Len(t, writer.upserted, 2)
		assert.Equal(t, 1, inv.calls)
	})

	t.Run("invalidation failure is not an error", func(t *testing.T) {
		market := &mockMarketRepository{
			GetDailySeriesFunc: func(ctx context.Context, symbol string, outputsize int) ([]entity.PriceRow, error) {
				return nil, nil
			},
		}
		inv := &mockInvalidator{err: errors.New("redis down")}
		uc := NewIngestUsecase(market, &mockPriceWriter{}, &mockRateLimiter{}, mustWindow(t), inv)

		assert.NoError(t, uc.IngestAll(ctx, []string{"AAPL"}))
		assert.Equal(t, 1, inv.calls)
	})

	t.Run("rate limiter cancellation stops the run", func(t *testing.T) {
		market := &mockMarketRepository{}
		rl := &mockRateLimiter{err: context.Canceled}
		uc := NewIngestUsecase(market, &mockPriceWriter{}, rl, mustWindow(t), nil)

		err := uc.IngestAll(ctx, []string{"AAPL", "MSFT"})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, market.GetDailySeriesCalls)
	})
}
