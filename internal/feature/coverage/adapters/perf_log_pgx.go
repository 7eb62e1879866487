package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"pricehistory_backend/internal/feature/coverage/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// execer は *pgxpool.Pool が満たす書き込み専用のインターフェースです。
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const createPerfLogTable = `
CREATE TABLE IF NOT EXISTS query_perf_log (
	id UUID PRIMARY KEY,
	query_name VARCHAR(64) NOT NULL,
	duration_ms DOUBLE PRECISION NOT NULL,
	row_count INTEGER NOT NULL,
	params JSONB,
	recorded_at TIMESTAMPTZ NOT NULL
);`

const insertPerfLog = `
INSERT INTO query_perf_log (id, query_name, duration_ms, row_count, params, recorded_at)
VALUES ($1, $2, $3, $4, $5, $6)`

// PerfLogSink はクエリ計測を query_perf_log テーブルに書き込みます。
type PerfLogSink struct {
	db execer
}

var _ usecase.MetricSink = (*PerfLogSink)(nil)

func NewPerfLogSink(db execer) *PerfLogSink {
	return &PerfLogSink{db: db}
}

// EnsureTable は query_perf_log がなければ作成します。
func (s *PerfLogSink) EnsureTable(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createPerfLogTable); err != nil {
		return fmt.Errorf("error creating query_perf_log table: %w", err)
	}
	return nil
}

func (s *PerfLogSink) Write(ctx context.Context, m usecase.QueryMetric) error {
	params, err := json.Marshal(m.Params)
	if err != nil {
		return fmt.Errorf("marshal metric params: %w", err)
	}

	_, err = s.db.Exec(ctx, insertPerfLog,
		uuid.New(),
		m.Name,
		float64(m.Duration.Microseconds())/1000,
		m.RowCount,
		params,
		m.RecordedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert query_perf_log: %w", err)
	}
	return nil
}
