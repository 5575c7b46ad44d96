package notification

import (
	"context"
	"sync"
	"time"

	"flipearn/internal/infrastructure/metrics"
	"flipearn/pkg/logger"
)

type task struct {
	name string
	fn   func(ctx context.Context) error
}

// Dispatcher runs fire-and-forget tasks on a fixed pool of workers. Tasks
// get a context detached from the submitting request, bounded by timeout.
type Dispatcher struct {
	queue   chan task
	workers int
	timeout time.Duration
	metrics *metrics.Metrics

	base    context.Context
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
}

func NewDispatcher(workers, queueSize int, timeout time.Duration, m *metrics.Metrics) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Dispatcher{
		queue:   make(chan task, queueSize),
		workers: workers,
		timeout: timeout,
		metrics: m,
	}
}

// Start launches the workers. Values from ctx are visible to tasks but its
// cancellation is not.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	d.base = context.WithoutCancel(ctx)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	logger.Info("Notification dispatcher started with %d workers", d.workers)
}

// Submit enqueues fn without blocking. It returns false when the queue is
// full or the dispatcher is stopping.
func (d *Dispatcher) Submit(name string, fn func(ctx context.Context) error) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.observe(name, "rejected")
		return false
	}

	select {
	case d.queue <- task{name: name, fn: fn}:
		return true
	default:
		d.observe(name, "dropped")
		return false
	}
}

// Stop closes the queue and waits for queued tasks to finish or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("Notification dispatcher drained")
		return nil
	case <-ctx.Done():
		logger.Warn("Notification dispatcher stopped with pending tasks: %v", ctx.Err())
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.queue {
		d.run(t)
	}
}

func (d *Dispatcher) run(t task) {
	ctx := d.base
	var cancel context.CancelFunc = func() {}
	if d.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
	}
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(map[string]interface{}{"task": t.name}).Errorf("Task panicked: %v", r)
			d.observe(t.name, "error")
		}
	}()

	start := time.Now()
	if err := t.fn(ctx); err != nil {
		logger.WithFields(map[string]interface{}{
			"task":    t.name,
			"elapsed": time.Since(start).Round(time.Millisecond).String(),
		}).Errorf("Task failed: %v", err)
		d.observe(t.name, "error")
		return
	}
	logger.Debug("Task %s finished in %s", t.name, time.Since(start).Round(time.Millisecond))
	d.observe(t.name, "success")
}

func (d *Dispatcher) observe(name, status string) {
	if d.metrics != nil {
		d.metrics.Notifications.WithLabelValues(name, status).Inc()
	}
}
