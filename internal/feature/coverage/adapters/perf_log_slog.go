package adapters

import (
	"context"
	"log/slog"

	"pricehistory_backend/internal/feature/coverage/usecase"
)

// SlogSink はクエリ計測を構造化ログとして出力します。DBを使わない環境向けです。
type SlogSink struct {
	logger *slog.Logger
}

var _ usecase.MetricSink = (*SlogSink)(nil)

func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

func (s *SlogSink) Write(ctx context.Context, m usecase.QueryMetric) error {
	attrs := make([]any, 0, len(m.Params))
	for k, v := range m.Params {
		attrs = append(attrs, slog.String(k, v))
	}
	s.logger.InfoContext(ctx, "query metric",
		"query", m.Name,
		"duration_ms", float64(m.Duration.Microseconds())/1000,
		"rows", m.RowCount,
		slog.Group("params", attrs...),
	)
	return nil
}
