// Package notify delivers reservation notifications off the request path.
// Handlers enqueue events; workers hand them to a DeliverFunc, which either
// writes notification rows directly or publishes to RabbitMQ.
package notify

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/venue-reservation/internal/queue"
)

// DeliverFunc delivers one event.  It runs on a worker goroutine.
type DeliverFunc func(ctx context.Context, ev queue.Event) error

// Options sizes a Queue.
type Options struct {
	Workers int
	Buffer  int
	Timeout time.Duration // per event
}

// Stats is a snapshot of queue counters.
type Stats struct {
	Enqueued  uint64 `json:"encoladas"`
	Delivered uint64 `json:"entregadas"`
	Failed    uint64 `json:"fallidas"`
	Dropped   uint64 `json:"descartadas"`
	Pending   int    `json:"pendientes"`
}

// Queue is a bounded in-memory task queue.  Enqueue never blocks; events
// that do not fit are dropped and counted.
type Queue struct {
	deliver DeliverFunc
	log     *zap.Logger
	opts    Options
	tasks   chan queue.Event
	wg      sync.WaitGroup

	mu      sync.RWMutex
	started bool
	closed  bool

	enqueued  atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

// NewQueue builds a stopped queue.  Call Start to launch the workers and
// Shutdown to drain them.
func NewQueue(deliver DeliverFunc, opts Options, log *zap.Logger) *Queue {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Queue{
		deliver: deliver,
		log:     log,
		opts:    opts,
		tasks:   make(chan queue.Event, opts.Buffer),
	}
}

// Start launches the worker goroutines.  Calling it twice is a no-op.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true
	for i := 0; i < q.opts.Workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
}

// Enqueue schedules ev for delivery and reports whether it was accepted.
func (q *Queue) Enqueue(ev queue.Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped.Add(1)
		q.log.Warn("notify: queue closed, event dropped",
			zap.String("tipo", string(ev.Type)), zap.Uint64("reserva_id", ev.ReservationID))
		return false
	}
	select {
	case q.tasks <- ev:
		q.enqueued.Add(1)
		return true
	default:
		q.dropped.Add(1)
		q.log.Warn("notify: queue full, event dropped",
			zap.String("tipo", string(ev.Type)), zap.Uint64("reserva_id", ev.ReservationID))
		return false
	}
}

func (q *Queue) worker(n int) {
	defer q.wg.Done()
	for ev := range q.tasks {
		if err := q.run(ev); err != nil {
			q.failed.Add(1)
			q.log.Error("notify: delivery failed", zap.Int("worker", n), zap.Error(err),
				zap.String("tipo", string(ev.Type)), zap.Uint64("reserva_id", ev.ReservationID))
			continue
		}
		q.delivered.Add(1)
	}
}

func (q *Queue) run(ev queue.Event) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), q.opts.Timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return q.deliver(ctx, ev)
}

// Shutdown stops accepting events and waits for queued ones to be
// delivered or for ctx to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil
	}
	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns the current counters.
func (q *Queue) Stats() Stats {
	return Stats{
		Enqueued:  q.enqueued.Load(),
		Delivered: q.delivered.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
		Pending:   len(q.tasks),
	}
}
