package http

import (
	"net"
	"net/http"
	"time"
)

// UserAgent は外部APIへのリクエストに付与する User-Agent です。
const UserAgent = "pricehistory-ingest/1"

// NewHTTPClient は日足取り込み用のHTTPクライアントを作成します。
//
// 取り込みは単一ホストへの逐次リクエストなので、ホスト単位のアイドル接続を
// perHost 本まで保持して接続を使い回します。Client.Timeout は呼び出し元が決めます。
// http.DefaultClient はタイムアウトがないため使わないこと。
func NewHTTPClient(timeout time.Duration, perHost int) *http.Client {
	if perHost <= 0 {
		perHost = 2
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          perHost,
		MaxIdleConnsPerHost:   perHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	return &http.Client{Timeout: timeout, Transport: userAgent{next: t}}
}

// userAgent は User-Agent が未設定のリクエストに既定値を付けます。
type userAgent struct {
	next http.RoundTripper
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return u.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", UserAgent)
	return u.next.RoundTrip(r)
}
