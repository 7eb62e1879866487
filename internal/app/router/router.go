// Package router はHTTPルーティングを定義します。
package router

import (
	coveragehandler "pricehistory_backend/internal/feature/coverage/transport/handler"
	priceshandler "pricehistory_backend/internal/feature/prices/transport/handler"
	symbolshandler "pricehistory_backend/internal/feature/symbols/transport/handler"
	platformhandler "pricehistory_backend/internal/platform/http/handler"
	"pricehistory_backend/internal/platform/http/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter は全エンドポイントを登録した gin.Engine を返します。
// exportPerMinute は CSV エクスポートの1分あたりの上限です（0 で無制限）。
func NewRouter(health *platformhandler.Health, symbols *symbolshandler.SymbolHandler,
	prices *priceshandler.PricesHandler, coverage *coveragehandler.CoverageHandler, exportPerMinute int) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// 導通確認用
	r.GET("/healthz", health.Handle)
	r.HEAD("/healthz", health.Handle)
	r.OPTIONS("/healthz", health.Handle)

	// 銘柄マスタ
	r.GET("/symbols", symbols.List)
	r.GET("/symbols/changes", symbols.ListChanges)

	// 価格履歴（銘柄変更をまたいで取得）
	r.GET("/prices", prices.GetPrices)
	r.GET("/prices/:symbol/segments", prices.ResolveSymbol)

	// カバレッジ
	r.GET("/coverage", coverage.List)
	r.GET("/coverage/export", middleware.RateLimit(exportPerMinute), coverage.Export)

	return r
}
