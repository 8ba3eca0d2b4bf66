// Package event delivers committed domain events to in-process handlers.
package event

import (
	"context"
	"errors"
	"sync"

	"github.com/maintledger/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const defaultQueueSize = 256

// ErrDispatcherStopped is returned by Publish after Stop
var ErrDispatcherStopped = errors.New("event dispatcher stopped")

type dispatcherState int

const (
	stateIdle dispatcherState = iota
	stateRunning
	stateStopped
)

// Dispatcher fans events out to subscribed handlers. Once started, events
// are queued and delivered by a single worker in publish order. Before Start
// they are delivered inline. A failing or panicking handler is logged and
// does not affect the other handlers.
type Dispatcher struct {
	logger *zap.Logger

	handlersMu sync.RWMutex
	byType     map[string][]shared.EventHandler
	catchAll   []shared.EventHandler

	stateMu   sync.RWMutex
	state     dispatcherState
	queue     chan queued
	queueSize int
	done      chan struct{}
}

type queued struct {
	ctx   context.Context
	event shared.DomainEvent
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithQueueSize bounds the number of undelivered events. A full queue makes
// Publish deliver inline.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queueSize = n
		}
	}
}

// NewDispatcher creates an idle dispatcher
func NewDispatcher(logger *zap.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		logger:    logger,
		byType:    make(map[string][]shared.EventHandler),
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe registers h for the types it lists. A handler listing no types
// receives every event.
func (d *Dispatcher) Subscribe(h shared.EventHandler) {
	d.handlersMu.Lock()
	defer d.handlersMu.Unlock()

	types := h.EventTypes()
	if len(types) == 0 {
		d.catchAll = append(d.catchAll, h)
		return
	}
	for _, t := range types {
		d.byType[t] = append(d.byType[t], h)
	}
	d.logger.Debug("handler subscribed", zap.Strings("event_types", types))
}

func (d *Dispatcher) handlersFor(eventType string) []shared.EventHandler {
	d.handlersMu.RLock()
	defer d.handlersMu.RUnlock()

	hs := make([]shared.EventHandler, 0, len(d.byType[eventType])+len(d.catchAll))
	hs = append(hs, d.byType[eventType]...)
	return append(hs, d.catchAll...)
}

// Start launches the delivery worker
func (d *Dispatcher) Start(ctx context.Context) error {
	d.stateMu.Lock()
	defer d.stateMu.Unlock()

	switch d.state {
	case stateRunning:
		return nil
	case stateStopped:
		return ErrDispatcherStopped
	}
	d.queue = make(chan queued, d.queueSize)
	d.done = make(chan struct{})
	d.state = stateRunning
	go d.run()

	d.logger.Info("event dispatcher started", zap.Int("queue_size", d.queueSize))
	return nil
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for q := range d.queue {
		d.deliver(q.ctx, q.event)
	}
}

// Publish hands events to the subscribed handlers. Handlers run with a
// context that keeps the caller's values but not its cancellation.
func (d *Dispatcher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	ctx = context.WithoutCancel(ctx)

	var inline []shared.DomainEvent

	d.stateMu.RLock()
	if d.state == stateStopped {
		d.stateMu.RUnlock()
		return ErrDispatcherStopped
	}
	for _, e := range events {
		if d.state != stateRunning {
			inline = append(inline, e)
			continue
		}
		select {
		case d.queue <- queued{ctx: ctx, event: e}:
		default:
			d.logger.Warn("event queue full, delivering inline",
				zap.String("event_type", e.EventType()),
			)
			inline = append(inline, e)
		}
	}
	d.stateMu.RUnlock()

	for _, e := range inline {
		d.deliver(ctx, e)
	}
	return nil
}

// Stop refuses new events and waits until the queue is drained or ctx ends
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.stateMu.Lock()
	prev := d.state
	d.state = stateStopped
	if prev == stateRunning {
		close(d.queue)
	}
	d.stateMu.Unlock()

	if prev != stateRunning {
		return nil
	}
	select {
	case <-d.done:
		d.logger.Info("event dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e shared.DomainEvent) {
	for _, h := range d.handlersFor(e.EventType()) {
		if err := d.safeHandle(ctx, h, e); err != nil {
			d.logger.Error("event handler failed",
				zap.String("event_type", e.EventType()),
				zap.String("event_id", e.EventID().String()),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) safeHandle(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				zap.String("event_type", e.EventType()),
				zap.Any("panic", r),
			)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventPublisher = (*Dispatcher)(nil)
