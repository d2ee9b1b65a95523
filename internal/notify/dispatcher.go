package notify

import (
	"context"
	"sync"
	"time"

	"stay-nest/internal/data/entity"

	"go.uber.org/zap"
)

// DeliverFunc persists and fans out one notification.
type DeliverFunc func(ctx context.Context, n *entity.Notification) error

// Publisher accepts notifications for asynchronous delivery.
type Publisher interface {
	Publish(n *entity.Notification)
}

// Dispatcher delivers notifications on background workers so callers never
// wait on, or fail because of, delivery.
type Dispatcher struct {
	queue   chan *entity.Notification
	deliver DeliverFunc
	timeout time.Duration
	log     *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(deliver DeliverFunc, queueSize, workers int, log *zap.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	if workers <= 0 {
		workers = 1
	}

	d := &Dispatcher{
		queue:   make(chan *entity.Notification, queueSize),
		deliver: deliver,
		timeout: 10 * time.Second,
		log:     log.With(zap.String("component", "notify_dispatcher")),
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.work()
	}

	return d
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliverOne(n)
	}
}

func (d *Dispatcher) deliverOne(n *entity.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.deliver(ctx, n); err != nil {
		d.log.Error("Notification delivery failed",
			zap.Error(err),
			zap.String("recipient_id", n.RecipientID.String()),
			zap.String("type", string(n.Type)),
		)
	}
}

// Publish never blocks. When the queue is full the notification is
// delivered on its own goroutine.
func (d *Dispatcher) Publish(n *entity.Notification) {
	if n == nil {
		return
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.log.Warn("Dispatcher closed, notification dropped",
			zap.String("recipient_id", n.RecipientID.String()),
			zap.String("type", string(n.Type)),
		)
		return
	}

	select {
	case d.queue <- n:
	default:
		d.log.Warn("Notification queue full, delivering inline", zap.String("type", string(n.Type)))
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.deliverOne(n)
		}()
	}
}

// Close stops accepting notifications and waits for queued ones to drain
// or for ctx to expire.
func (d *Dispatcher) Close(ctx context.Context) error {
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
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
