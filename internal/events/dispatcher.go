package events

import (
	"context"
	"sync"

	"github.com/ticket-marketplace/payments/pkg/backoff"
	"github.com/ticket-marketplace/payments/pkg/logger"
)

const defaultQueueSize = 1024

// Dispatcher decouples event emission from delivery: events are enqueued and
// published by a background worker with retry, so publisher failures are
// isolated from the state transitions that produced the events. A full queue
// drops the event and logs; domain events here are best-effort notifications,
// not the system of record.
type Dispatcher struct {
	publishers []Publisher
	queue      chan Envelope
	l          *logger.Logger
	retry      backoff.Config

	wg   sync.WaitGroup
	once sync.Once
}

func NewDispatcher(l *logger.Logger, publishers ...Publisher) *Dispatcher {
	return &Dispatcher{
		publishers: publishers,
		queue:      make(chan Envelope, defaultQueueSize),
		l:          l,
		retry:      backoff.DefaultConfig(),
	}
}

// Start launches the delivery worker. It drains the queue until ctx is
// cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case env := <-d.queue:
				d.deliver(ctx, env)
			}
		}
	}()
}

// Close waits for the worker to stop and closes the publishers.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.wg.Wait()
		for _, p := range d.publishers {
			if err := p.Close(); err != nil {
				d.l.Error("close publisher: error=%v", err)
			}
		}
	})
}

func (d *Dispatcher) EmitTransactionUpdated(ctx context.Context, event TransactionUpdated) {
	env, err := NewEnvelope(event.TransactionID.String(), TypeTransactionUpdated, event)
	if err != nil {
		d.l.Error("marshal transaction event: transaction_id=%s error=%v", event.TransactionID, err)
		return
	}

	select {
	case d.queue <- env:
	default:
		d.l.Error("event queue full, dropping event: event_id=%s type=%s", env.EventID, env.Type)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, env Envelope) {
	for _, p := range d.publishers {
		pub := p
		err := backoff.Do(ctx, d.retry, nil, func() error {
			return pub.Publish(ctx, env)
		})
		if err != nil {
			d.l.Error("publish event failed: event_id=%s type=%s error=%v", env.EventID, env.Type, err)
		}
	}
}
