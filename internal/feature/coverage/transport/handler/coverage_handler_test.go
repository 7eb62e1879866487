package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pricehistory_backend/internal/feature/coverage/domain/entity"
	"pricehistory_backend/internal/feature/coverage/transport/handler"
	"pricehistory_backend/internal/feature/coverage/usecase"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCoverageUsecase はCoverageUsecaseインターフェースのモック実装です。
type mockCoverageUsecase struct {
	ListFunc   func(ctx context.Context, q usecase.QueryParams) (usecase.Page, error)
	ExportFunc func(ctx context.Context, w io.Writer, q usecase.QueryParams, maxRows int) (int, error)
}

func (m *mockCoverageUsecase) List(ctx context.Context, q usecase.QueryParams) (usecase.Page, error) {
	return m.ListFunc(ctx, q)
}

func (m *mockCoverageUsecase) Export(ctx context.Context, w io.Writer, q usecase.QueryParams, maxRows int) (int, error) {
	return m.ExportFunc(ctx, w, q, maxRows)
}

func newRouter(uc *mockCoverageUsecase) *gin.Engine {
	h := handler.NewCoverageHandler(uc)
	r := gin.New()
	r.GET("/coverage", h.List)
	r.GET("/coverage/export", h.Export)
	return r
}

func TestCoverageHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	aapl := entity.CoverageItem{
		Symbol: "AAPL", Name: "Apple Inc.", Exchange: "NASDAQ", Currency: "USD", IsActive: true,
		DataStart:   null.TimeFrom(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
		DataEnd:     null.TimeFrom(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)),
		DataDays:    4,
		RowCount:    4,
		LastUpdated: null.TimeFrom(time.Date(2024, 1, 6, 1, 0, 0, 0, time.UTC)),
	}
	zzz := entity.CoverageItem{Symbol: "ZZZ", Name: "Zeta", Exchange: "NYSE", Currency: "USD"}

	tests := []struct {
		name           string
		url            string
		mockList       func(ctx context.Context, q usecase.QueryParams) (usecase.Page, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: defaults applied",
			url:  "/coverage",
			mockList: func(ctx context.Context, q usecase.QueryParams) (usecase.Page, error) {
				assert.Equal(t, 1, q.Page)
				assert.Equal(t, usecase.DefaultPageSize, q.PageSize)
				assert.Equal(t, usecase.SortSymbol, q.SortBy)
				assert.Nil(t, q.HasData)
				return usecase.Page{Items: []entity.CoverageItem{aapl}, Total: 1, Page: 1, PageSize: 50, TotalPages: 1}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"items":[{"symbol":"AAPL","name":"Apple Inc.","exchange":"NASDAQ","currency":"USD","is_active":true,` +
				`"data_start":"2024-01-02","data_end":"2024-01-05","data_days":4,"row_count":4,` +
				`"last_updated":"2024-01-06T01:00:00Z","has_gaps":false}],"total":1,"page":1,"page_size":50,"total_pages":1}`,
		},
		{
			name: "success: filters bound and nulls rendered",
			url:  "/coverage?page=2&page_size=10&q=zz&sort_by=data_end&order=desc&has_data=false&start_after=2020-01-01&end_before=2024-12-31&updated_after=2024-01-01T00:00:00Z",
			mockList: func(ctx context.Context, q usecase.QueryParams) (usecase.Page, error) {
				assert.Equal(t, 2, q.Page)
				assert.Equal(t, 10, q.PageSize)
				assert.Equal(t, "zz", q.Search)
				assert.Equal(t, "data_end", q.SortBy)
				assert.Equal(t, "desc", q.Order)
				require.NotNil(t, q.HasData)
				assert.False(t, *q.HasData)
				require.NotNil(t, q.StartAfter)
				assert.Equal(t, "2020-01-01", q.StartAfter.Format(time.DateOnly))
				require.NotNil(t, q.EndBefore)
				assert.Equal(t, "2024-12-31", q.EndBefore.Format(time.DateOnly))
				require.NotNil(t, q.UpdatedAfter)
				return usecase.Page{Items: []entity.CoverageItem{zzz}, Total: 11, Page: 2, PageSize: 10, TotalPages: 2}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"items":[{"symbol":"ZZZ","name":"Zeta","exchange":"NYSE","currency":"USD","is_active":false,` +
				`"data_start":null,"data_end":null,"data_days":0,"row_count":0,"last_updated":null,"has_gaps":false}],` +
				`"total":11,"page":2,"page_size":10,"total_pages":2}`,
		},
		{
			name:           "error: malformed page",
			url:            "/coverage?page=abc",
			mockList:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error: malformed date",
			url:            "/coverage?start_after=2024-13-01",
			mockList:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "error: invalid sort field carries allowed fields",
			url:  "/coverage?sort_by=volume",
			mockList: func(ctx context.Context, q usecase.QueryParams) (usecase.Page, error) {
				return usecase.Page{}, &usecase.SortFieldError{Field: "volume", Allowed: []string{"symbol", "name"}}
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid sort field \"volume\": must be one of symbol, name","field":"volume","allowed":["symbol","name"]}`,
		},
		{
			name: "error: inverted date range carries both ends",
			url:  "/coverage?start_after=2024-02-01&end_before=2024-01-01",
			mockList: func(ctx context.Context, q usecase.QueryParams) (usecase.Page, error) {
				return usecase.Page{}, &usecase.DateRangeError{StartAfter: *q.StartAfter, EndBefore: *q.EndBefore}
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody: `{"error":"invalid date range: start_after 2024-02-01 is after end_before 2024-01-01",` +
				`"start_after":"2024-02-01","end_before":"2024-01-01"}`,
		},
		{
			name: "error: invalid pagination",
			url:  "/coverage?page=0",
			mockList: func(ctx context.Context, q usecase.QueryParams) (usecase.Page, error) {
				return usecase.Page{}, fmt.Errorf("%w: page must be >= 1, got 0", usecase.ErrInvalidPagination)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid pagination: page must be >= 1, got 0"}`,
		},
		{
			name: "error: storage failure hides details",
			url:  "/coverage",
			mockList: func(ctx context.Context, q usecase.QueryParams) (usecase.Page, error) {
				return usecase.Page{}, fmt.Errorf("%w: list symbols: %w", usecase.ErrStorage, errors.New("dial tcp: refused"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockCoverageUsecase{ListFunc: func(ctx context.Context, q usecase.QueryParams) (usecase.Page, error) {
				t.Fatal("usecase should not be called")
				return usecase.Page{}, nil
			}}
			if tt.mockList != nil {
				uc.ListFunc = tt.mockList
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			newRouter(uc).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
		})
	}
}

func TestCoverageHandler_Export(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("success: csv attachment", func(t *testing.T) {
		uc := &mockCoverageUsecase{ExportFunc: func(ctx context.Context, w io.Writer, q usecase.QueryParams, maxRows int) (int, error) {
			assert.Equal(t, 100, maxRows)
			require.NotNil(t, q.HasData)
			assert.False(t, *q.HasData)
			_, err := io.WriteString(w, "symbol,name\nZZZ,Zeta\n")
			return 1, err
		}}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/coverage/export?has_data=false&max_rows=100", nil)
		newRouter(uc).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), `attachment; filename="coverage_`))
		assert.Equal(t, "1", w.Header().Get("X-Row-Count"))
		assert.Equal(t, "symbol,name\nZZZ,Zeta\n", w.Body.String())
	})

	t.Run("success: max_rows defaults to zero", func(t *testing.T) {
		uc := &mockCoverageUsecase{ExportFunc: func(ctx context.Context, w io.Writer, q usecase.QueryParams, maxRows int) (int, error) {
			assert.Zero(t, maxRows)
			return 0, nil
		}}

		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coverage/export", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("error: partial output is discarded", func(t *testing.T) {
		uc := &mockCoverageUsecase{ExportFunc: func(ctx context.Context, w io.Writer, q usecase.QueryParams, maxRows int) (int, error) {
			_, _ = io.WriteString(w, "symbol,name\n")
			return 0, fmt.Errorf("%w: price stats: %w", usecase.ErrStorage, errors.New("timeout"))
		}}

		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coverage/export", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "internal server error", body["error"])
	})

	t.Run("error: invalid order", func(t *testing.T) {
		uc := &mockCoverageUsecase{ExportFunc: func(ctx context.Context, w io.Writer, q usecase.QueryParams, maxRows int) (int, error) {
			return 0, fmt.Errorf("%w: %q must be asc or desc", usecase.ErrInvalidSortOrder, q.Order)
		}}

		w := httptest.NewRecorder()
		newRouter(uc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coverage/export?order=up", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error: malformed max_rows", func(t *testing.T) {
		w := httptest.NewRecorder()
		newRouter(&mockCoverageUsecase{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/coverage/export?max_rows=lots", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
