// Package middleware はHTTPルーター用のミドルウェアを提供します。
package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit は1分あたり perMinute 件を超えるリクエストを 429 で拒否します。
// perMinute <= 0 の場合は何もしません。制限はプロセス全体で共有されます。
func RateLimit(perMinute int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	interval := time.Minute / time.Duration(perMinute)
	limiter := rate.NewLimiter(rate.Every(interval), perMinute)

	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.Header("Retry-After", strconv.Itoa(int(interval.Seconds())+1))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
