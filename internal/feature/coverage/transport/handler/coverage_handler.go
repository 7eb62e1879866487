// Package handler はcoverageフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pricehistory_backend/internal/feature/coverage/domain/entity"
	"pricehistory_backend/internal/feature/coverage/transport/http/dto"
	"pricehistory_backend/internal/feature/coverage/usecase"

	"github.com/gin-gonic/gin"
	"github.com/guregu/null/v6"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// CoverageUsecase はカバレッジ一覧とエクスポートのユースケースインターフェースです。
type CoverageUsecase interface {
	List(ctx context.Context, q usecase.QueryParams) (usecase.Page, error)
	Export(ctx context.Context, w io.Writer, q usecase.QueryParams, maxRows int) (int, error)
}

// CoverageHandler はカバレッジのHTTPリクエストを処理します。
type CoverageHandler struct {
	uc CoverageUsecase
}

func NewCoverageHandler(uc CoverageUsecase) *CoverageHandler {
	return &CoverageHandler{uc: uc}
}

// List はカバレッジ一覧の1ページをJSONで返します。
//
// GET /coverage?page=1&page_size=50&q=aap&sort_by=data_end&order=desc&has_data=true
func (h *CoverageHandler) List(c *gin.Context) {
	q := c.Request.URL.Query()

	params, err := bindFilters(q)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	page, pageSize := 1, usecase.DefaultPageSize
	if err := runtime.BindQueryParameter("form", true, false, "page", q, &page); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "page_size", q, &pageSize); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	params.Page, params.PageSize = page, pageSize

	res, err := h.uc.List(c.Request.Context(), params)
	if err != nil {
		writeError(c, err)
		return
	}

	items := make([]dto.CoverageItem, 0, len(res.Items))
	for _, it := range res.Items {
		items = append(items, toDTO(it))
	}
	c.JSON(http.StatusOK, dto.CoveragePage{
		Items:      items,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	})
}

// Export はフィルタ・ソート済みのカバレッジをCSVで返します。ページングはしません。
//
// GET /coverage/export?has_data=false&max_rows=1000
func (h *CoverageHandler) Export(c *gin.Context) {
	q := c.Request.URL.Query()

	params, err := bindFilters(q)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	var maxRows int
	if err := runtime.BindQueryParameter("form", true, false, "max_rows", q, &maxRows); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	// 途中で失敗した場合にJSONのエラーを返せるよう、書き出しはバッファに溜める
	var buf bytes.Buffer
	n, err := h.uc.Export(c.Request.Context(), &buf, params, maxRows)
	if err != nil {
		writeError(c, err)
		return
	}

	filename := "coverage_" + time.Now().UTC().Format("20060102") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("X-Row-Count", strconv.Itoa(n))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// bindFilters はページング以外の検索条件をクエリ文字列から読み取ります。
func bindFilters(q url.Values) (usecase.QueryParams, error) {
	var (
		p            usecase.QueryParams
		hasData      *bool
		startAfter   *openapi_types.Date
		endBefore    *openapi_types.Date
		updatedAfter *time.Time
	)

	// sort_by 未指定時は銘柄コード順
	p.SortBy = usecase.SortSymbol
	if err := runtime.BindQueryParameter("form", true, false, "q", q, &p.Search); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "sort_by", q, &p.SortBy); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "order", q, &p.Order); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "has_data", q, &hasData); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "start_after", q, &startAfter); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "end_before", q, &endBefore); err != nil {
		return p, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "updated_after", q, &updatedAfter); err != nil {
		return p, err
	}

	p.HasData = hasData
	if startAfter != nil {
		p.StartAfter = &startAfter.Time
	}
	if endBefore != nil {
		p.EndBefore = &endBefore.Time
	}
	p.UpdatedAfter = updatedAfter
	return p, nil
}

// writeError はユースケースのエラーをHTTPステータスと詳細付きのJSONに変換します。
func writeError(c *gin.Context, err error) {
	var (
		sortErr  *usecase.SortFieldError
		rangeErr *usecase.DateRangeError
	)
	switch {
	case errors.As(err, &sortErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   err.Error(),
			Field:   sortErr.Field,
			Allowed: sortErr.Allowed,
		})
	case errors.As(err, &rangeErr):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:      err.Error(),
			StartAfter: rangeErr.StartAfter.Format(time.DateOnly),
			EndBefore:  rangeErr.EndBefore.Format(time.DateOnly),
		})
	case errors.Is(err, usecase.ErrInvalidSortOrder),
		errors.Is(err, usecase.ErrInvalidPagination):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("coverage request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func toDTO(it entity.CoverageItem) dto.CoverageItem {
	return dto.CoverageItem{
		Symbol:      it.Symbol,
		Name:        it.Name,
		Exchange:    it.Exchange,
		Currency:    it.Currency,
		IsActive:    it.IsActive,
		DataStart:   dateString(it.DataStart),
		DataEnd:     dateString(it.DataEnd),
		DataDays:    it.DataDays,
		RowCount:    it.RowCount,
		LastUpdated: timestamp(it.LastUpdated),
		HasGaps:     it.HasGaps,
	}
}

func dateString(t null.Time) null.String {
	if !t.Valid {
		return null.String{}
	}
	return null.StringFrom(t.Time.UTC().Format(time.DateOnly))
}

// timestamp は CSV と同じ表現 (UTC・秒精度) に揃えます。
func timestamp(t null.Time) null.Time {
	if !t.Valid {
		return null.Time{}
	}
	return null.TimeFrom(t.Time.UTC().Truncate(time.Second))
}
