// Package handler はpricesフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pricehistory_backend/internal/feature/prices/domain/entity"
	"pricehistory_backend/internal/feature/prices/domain/timerange"
	"pricehistory_backend/internal/feature/prices/transport/http/dto"
	"pricehistory_backend/internal/feature/prices/usecase"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// PricesUsecase は価格履歴取得のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type PricesUsecase interface {
	GetRange(ctx context.Context, symbols []string, start, end time.Time) ([]entity.ResolvedPriceRow, error)
	Resolve(ctx context.Context, symbol string, start, end time.Time) ([]timerange.Segment, error)
}

// PricesHandler は価格履歴のHTTPリクエストを処理します。
type PricesHandler struct {
	uc PricesUsecase
}

// NewPricesHandler は指定されたusecaseでPricesHandlerの新しいインスタンスを生成します。
func NewPricesHandler(uc PricesUsecase) *PricesHandler {
	return &PricesHandler{uc: uc}
}

// GetPrices は銘柄と期間を受け取り、改名前のデータも含めた日足をJSONで返します。
//
// エンドポイント例:
// GET /prices?symbols=META,AAPL&start=2022-06-01&end=2022-06-30
func (h *PricesHandler) GetPrices(c *gin.Context) {
	q := c.Request.URL.Query()

	var symbols []string
	if err := runtime.BindQueryParameter("form", true, true, "symbols", q, &symbols); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	var start, end openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, true, "start", q, &start); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "end", q, &end); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	rows, err := h.uc.GetRange(c.Request.Context(), symbols, start.Time, end.Time)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]dto.PriceResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.PriceResponse{
			Symbol: r.QueriedSymbol,
			Date:   r.Date.UTC().Format(time.DateOnly),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		}
		if r.Symbol != r.QueriedSymbol {
			item.SourceSymbol = r.Symbol
		}
		out = append(out, item)
	}
	c.JSON(http.StatusOK, out)
}

// ResolveSymbol は期間を保存ティッカーごとの区間に分割した結果を返します。
//
// GET /prices/:symbol/segments?start=2022-06-01&end=2022-06-30
func (h *PricesHandler) ResolveSymbol(c *gin.Context) {
	q := c.Request.URL.Query()

	var start, end openapi_types.Date
	if err := runtime.BindQueryParameter("form", true, true, "start", q, &start); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if err := runtime.BindQueryParameter("form", true, true, "end", q, &end); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	segs, err := h.uc.Resolve(c.Request.Context(), c.Param("symbol"), start.Time, end.Time)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.SegmentResponse, 0, len(segs))
	for _, s := range segs {
		out = append(out, dto.SegmentResponse{
			Symbol: s.Symbol,
			Start:  s.Start.Format(time.DateOnly),
			End:    s.End.Format(time.DateOnly),
		})
	}
	c.JSON(http.StatusOK, out)
}

// writeError は入力エラーを400、それ以外をログに残して500で返します。
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrNoSymbols),
		errors.Is(err, usecase.ErrTooManySymbols),
		errors.Is(err, usecase.ErrInvalidRange):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("prices request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}
