package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestAsyncDispatcherRunsSubscribedHandlers(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop())

	var created, deleted atomic.Int32
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		created.Add(1)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		created.Add(1)
		return errors.New("handler errors do not stop others")
	})
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		deleted.Add(1)
		return nil
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "t1"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	drain(t, d)

	if got := created.Load(); got != 2 {
		t.Fatalf("created handlers ran %d times, want 2", got)
	}
	if got := deleted.Load(); got != 0 {
		t.Fatalf("deleted handler ran %d times, want 0", got)
	}
}

func TestAsyncDispatcherDetachesFromPublisherContext(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop())

	var handlerErr atomic.Value
	d.Subscribe(EventNotificationRequested, func(ctx context.Context, _ Event) error {
		handlerErr.Store(ctx.Err() == nil)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Publish(ctx, Event{Type: EventNotificationRequested}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	cancel()
	drain(t, d)

	if ok, _ := handlerErr.Load().(bool); !ok {
		t.Fatal("handler saw the publisher's cancellation")
	}
}

func TestAsyncDispatcherRecoversPanics(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop())
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		panic("boom")
	})

	if err := d.Publish(context.Background(), Event{Type: EventTicketCreated}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	drain(t, d)
}

func TestDrainHonoursContext(t *testing.T) {
	d := NewAsyncDispatcher(zap.NewNop())
	release := make(chan struct{})
	d.Subscribe(EventTicketCreated, func(context.Context, Event) error {
		<-release
		return nil
	})
	_ = d.Publish(context.Background(), Event{Type: EventTicketCreated})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := d.Drain(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Drain error = %v, want deadline exceeded", err)
	}
	close(release)
	drain(t, d)
}

func drain(t *testing.T, d *AsyncDispatcher) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}
}
