// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger は依存先の疎通確認です。*sql.DB が満たします。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health は /healthz を処理します。
type Health struct {
	db      Pinger
	timeout time.Duration
}

// NewHealth は db の疎通を確認する Health を返します。db が nil の場合は常に ok です。
func NewHealth(db Pinger) *Health {
	return &Health{db: db, timeout: 2 * time.Second}
}

// Handle はHTTPメソッドに応じてレスポンスし、キャッシュを防止します。
// DBに到達できない場合は 503 と status=degraded を返します。
func (h *Health) Handle(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	status, code := "ok", http.StatusOK
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			slog.Warn("health check: database unreachable", "error", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}

	if c.Request.Method == http.MethodHead {
		c.Status(code)
		return
	}
	c.JSON(code, gin.H{"status": status})
}
