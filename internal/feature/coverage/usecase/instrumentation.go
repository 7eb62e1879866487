package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const defaultMetricBuffer = 256

// QueryMetric はクエリ1回分の実行計測です。
type QueryMetric struct {
	Name       string
	Duration   time.Duration
	RowCount   int
	Params     map[string]string
	RecordedAt time.Time
}

// Recorder はクエリ計測を記録します。実装は呼び出し元をブロックしてはいけません。
type Recorder interface {
	Record(ctx context.Context, m QueryMetric)
}

// MetricSink は計測値の書き込み先です。
type MetricSink interface {
	Write(ctx context.Context, m QueryMetric) error
}

// NopRecorder は何も記録しません。
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, QueryMetric) {}

type queuedMetric struct {
	ctx context.Context
	m   QueryMetric
}

// AsyncRecorder は計測値をバッファ付きチャネルに積み、単一のワーカーが sink に書き込みます。
// バッファが満杯の場合は破棄し、sink のエラーはログに出すだけで呼び出し元には返しません。
type AsyncRecorder struct {
	sink         MetricSink
	queue        chan queuedMetric
	done         chan struct{}
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
}

var _ Recorder = (*AsyncRecorder)(nil)

// NewAsyncRecorder はワーカーを起動した AsyncRecorder を返します。終了時は Close を呼んでください。
func NewAsyncRecorder(sink MetricSink, bufferSize int) *AsyncRecorder {
	if bufferSize <= 0 {
		bufferSize = defaultMetricBuffer
	}
	r := &AsyncRecorder{
		sink:         sink,
		queue:        make(chan queuedMetric, bufferSize),
		done:         make(chan struct{}),
		writeTimeout: 5 * time.Second,
	}
	go r.run()
	return r
}

// Record は計測値をキューに積んで即座に戻ります。
func (r *AsyncRecorder) Record(ctx context.Context, m QueryMetric) {
	if m.RecordedAt.IsZero() {
		m.RecordedAt = time.Now().UTC()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	select {
	case r.queue <- queuedMetric{ctx: context.WithoutCancel(ctx), m: m}:
	default:
		slog.Debug("query metric dropped, queue full", "query", m.Name)
	}
}

// Close は新規の記録を止め、キューに残った計測値を書き出してからワーカーを終了します。
func (r *AsyncRecorder) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done
}

func (r *AsyncRecorder) run() {
	defer close(r.done)
	for q := range r.queue {
		ctx, cancel := context.WithTimeout(q.ctx, r.writeTimeout)
		if err := r.sink.Write(ctx, q.m); err != nil {
			slog.Warn("failed to write query metric", "query", q.m.Name, "error", err)
		}
		cancel()
	}
}
