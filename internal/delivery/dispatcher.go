package delivery

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"planrelay/internal/types"
)

// Sender delivers one notification. Implemented by *Channel; abstracted for
// testability.
type Sender interface {
	Send(ctx context.Context, msg types.NotificationMessage) error
}

// job is one queued delivery. The delivery ID exists purely for log
// correlation; nothing persists between events.
type job struct {
	id  string
	msg types.NotificationMessage
}

// Dispatcher runs deliveries off the inbound request path so the source
// webhook always gets an immediate acknowledgment. The queue is bounded:
// when it fills, new notifications are dropped with a warning rather than
// blocking the HTTP handler. There is deliberately no retry or re-queueing
// beyond what the Channel does per delivery.
type Dispatcher struct {
	sender  Sender
	jobs    chan job
	group   *errgroup.Group
	cancel  context.CancelFunc
	logger  *slog.Logger
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher with the given worker count and queue
// size, and starts its workers immediately.
func NewDispatcher(sender Sender, workers, queueSize int, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	d := &Dispatcher{
		sender:  sender,
		jobs:    make(chan job, queueSize),
		group:   group,
		cancel:  cancel,
		logger:  logger,
		timeout: timeout,
	}

	for i := 0; i < workers; i++ {
		group.Go(func() error {
			d.work(ctx)
			return nil
		})
	}

	return d
}

// Enqueue hands a notification to the worker pool. Returns false when the
// queue is full and the notification was dropped; the caller has already
// acknowledged the source webhook either way.
func (d *Dispatcher) Enqueue(msg types.NotificationMessage) bool {
	j := job{id: uuid.New().String(), msg: msg}
	select {
	case d.jobs <- j:
		d.logger.Debug("delivery enqueued", "delivery_id", j.id)
		return true
	default:
		d.logger.Warn("delivery queue full, dropping notification", "delivery_id", j.id)
		return false
	}
}

// work drains the job channel until Close closes it or the group context is
// cancelled.
func (d *Dispatcher) work(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-d.jobs:
			if !ok {
				return
			}
			d.deliver(ctx, j)
		}
	}
}

// deliver executes one delivery with a per-delivery timeout. Failures are
// logged and swallowed: the source system must never see them.
func (d *Dispatcher) deliver(ctx context.Context, j job) {
	deliverCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		deliverCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := d.sender.Send(deliverCtx, j.msg); err != nil {
		d.logger.Error("delivery failed",
			"delivery_id", j.id,
			"duration", time.Since(start),
			"error", err.Error(),
		)
		return
	}

	d.logger.Info("delivery succeeded",
		"delivery_id", j.id,
		"duration", time.Since(start),
	)
}

// Close stops accepting work, drains queued deliveries, and waits for the
// workers to finish or the context to expire, whichever comes first.
func (d *Dispatcher) Close(ctx context.Context) error {
	close(d.jobs)

	done := make(chan struct{})
	go func() {
		_ = d.group.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		// Give up on the drain; cancel in-flight deliveries.
		d.cancel()
		<-done
	}

	d.cancel()
	return nil
}
