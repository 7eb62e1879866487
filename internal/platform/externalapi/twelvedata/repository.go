package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"pricehistory_backend/internal/feature/prices/domain/entity"
	"pricehistory_backend/internal/feature/prices/usecase"
	"pricehistory_backend/internal/platform/externalapi/twelvedata/dto"
)

const dailyInterval = "1day"

// TwelveDataMarket はTwelve Data外部APIから日足を取得するMarketRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *http.Client
}

// TwelveDataMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	return &TwelveDataMarket{cfg: cfg, client: client}
}

// GetDailySeries はTwelve Data APIから直近 outputsize 本の日足を取得し、
// 日付昇順の entity.PriceRow として返します。価格は小数の文字列から丸めずに変換します。
func (t *TwelveDataMarket) GetDailySeries(ctx context.Context, symbol string, outputsize int) ([]entity.PriceRow, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", dailyInterval)
	q.Set("outputsize", strconv.Itoa(outputsize))
	q.Set("order", "ASC")
	q.Set("apikey", t.cfg.TwelveDataAPIKey)

	u := fmt.Sprintf("%s/time_series?%s", t.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	var body dto.TimeSeriesResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	rows := make([]entity.PriceRow, 0, len(body.Values))
	for _, v := range body.Values {
		row, err := toPriceRow(symbol, v)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func toPriceRow(symbol string, v dto.TimeSeriesValue) (entity.PriceRow, error) {
	tm, err := time.Parse(time.DateOnly, v.Datetime)
	if err != nil {
		tm, err = time.Parse(time.DateTime, v.Datetime)
		if err != nil {
			return entity.PriceRow{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
	}

	o, err := decimal.NewFromString(v.Open)
	if err != nil {
		return entity.PriceRow{}, fmt.Errorf("parse open %q: %w", v.Open, err)
	}
	h, err := decimal.NewFromString(v.High)
	if err != nil {
		return entity.PriceRow{}, fmt.Errorf("parse high %q: %w", v.High, err)
	}
	l, err := decimal.NewFromString(v.Low)
	if err != nil {
		return entity.PriceRow{}, fmt.Errorf("parse low %q: %w", v.Low, err)
	}
	c, err := decimal.NewFromString(v.Close)
	if err != nil {
		return entity.PriceRow{}, fmt.Errorf("parse close %q: %w", v.Close, err)
	}
	// 指数などは出来高が返らない
	var vol int64
	if v.Volume != "" {
		vol, err = strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return entity.PriceRow{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
	}

	return entity.PriceRow{
		Symbol: symbol,
		Date:   time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, time.UTC),
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: vol,
	}, nil
}
