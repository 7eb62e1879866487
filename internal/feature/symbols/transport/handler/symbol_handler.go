package handler

import (
	"context"
	"net/http"

	"pricehistory_backend/internal/feature/symbols/domain/entity"
	"pricehistory_backend/internal/feature/symbols/transport/http/dto"

	"github.com/gin-gonic/gin"
)

// SymbolUsecase は銘柄情報に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolUsecase interface {
	ListActiveSymbols(ctx context.Context) ([]entity.Symbol, error)
	ListChanges(ctx context.Context) ([]entity.SymbolChange, error)
}

// SymbolHandler は銘柄情報に関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// List は有効な銘柄の一覧を取得するAPIです。
// Usecaseでエラーが発生した場合は500 Internal Server Errorを返します。
func (h *SymbolHandler) List(c *gin.Context) {
	symbols, err := h.uc.ListActiveSymbols(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, dto.SymbolItem{
			Code:     s.Code,
			Name:     s.Name,
			Exchange: s.Exchange,
			Currency: s.Currency,
		})
	}
	c.JSON(http.StatusOK, out)
}

// ListChanges は銘柄変更履歴を返します。
//
// GET /symbols/changes
func (h *SymbolHandler) ListChanges(c *gin.Context) {
	changes, err := h.uc.ListChanges(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]dto.SymbolChangeItem, 0, len(changes))
	for _, ch := range changes {
		out = append(out, dto.SymbolChangeItem{
			OldSymbol:  ch.OldSymbol,
			NewSymbol:  ch.NewSymbol,
			ChangeDate: ch.ChangeDate.UTC().Format("2006-01-02"),
			Reason:     ch.Reason,
		})
	}
	c.JSON(http.StatusOK, out)
}
