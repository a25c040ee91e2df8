package events

import (
	"context"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType EventType, handler EventHandler)
}

type listeners struct {
	mu       sync.RWMutex
	handlers map[EventType][]EventHandler
}

func newListeners() *listeners {
	return &listeners{handlers: make(map[EventType][]EventHandler)}
}

func (l *listeners) add(eventType EventType, handler EventHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handlers[eventType] = append(l.handlers[eventType], handler)
}

func (l *listeners) forType(eventType EventType) []EventHandler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]EventHandler{}, l.handlers[eventType]...)
}

// AsyncDispatcher runs every handler in its own goroutine, detached from the
// publisher's context. Work still in flight when the process exits is lost.
type AsyncDispatcher struct {
	listeners *listeners
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewAsyncDispatcher creates a dispatcher instance.
func NewAsyncDispatcher(logger *zap.Logger) *AsyncDispatcher {
	return &AsyncDispatcher{listeners: newListeners(), logger: logger}
}

// Publish schedules handlers for the event and returns immediately.
func (d *AsyncDispatcher) Publish(_ context.Context, event Event) error {
	for _, handler := range d.listeners.forType(event.Type) {
		d.wg.Add(1)
		go func(h EventHandler) {
			defer d.wg.Done()
			runHandler(context.Background(), d.logger, h, event)
		}(handler)
	}
	return nil
}

// Subscribe registers a handler for the given event type.
func (d *AsyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.listeners.add(eventType, handler)
}

// Drain blocks until in-flight handlers finish or ctx is done.
func (d *AsyncDispatcher) Drain(ctx context.Context) error {
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

func runHandler(ctx context.Context, logger *zap.Logger, handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event handler panicked",
				zap.String("event_type", string(event.Type)),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	if err := handler(ctx, event); err != nil {
		logger.Error("event handler failed",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
