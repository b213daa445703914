package notify

import (
	"context"
	"sync"

	"go-medicamp/logging"
	"go-medicamp/metrics"
	"go-medicamp/utils"
)

// MemoryQueue buffers jobs in a channel served by a pool of workers
type MemoryQueue struct {
	jobs    chan Job
	workers int
	d       *deliverer
}

// NewMemoryQueue creates a MemoryQueue. Jobs are only delivered while Serve runs.
func NewMemoryQueue(sender Sender, opts Options) *MemoryQueue {
	opts = opts.withDefaults()
	return &MemoryQueue{
		jobs:    make(chan Job, opts.Buffer),
		workers: opts.Workers,
		d:       newDeliverer(sender, opts),
	}
}

// Notify queues e without blocking. A full buffer drops the email.
func (q *MemoryQueue) Notify(ctx context.Context, e utils.Email) {
	if !accept(ctx, e) {
		return
	}
	select {
	case q.jobs <- Job{Email: e, RequestID: logging.RequestIDFromContext(ctx)}:
	default:
		metrics.RecordNotification("dropped")
		logging.Ctx(ctx).Warn().Str("to", e.To).Msg("notification queue full, email dropped")
	}
}

// Serve runs the workers until ctx is cancelled. Implements suture.Service.
func (q *MemoryQueue) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < q.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-q.jobs:
					_ = q.d.deliver(ctx, job)
				}
			}
		}()
	}
	wg.Wait()
	return ctx.Err()
}

func (q *MemoryQueue) String() string {
	return "notify-memory-queue"
}
