package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// memList is an in-memory Redis list. BLPop on an empty list calls onEmpty
// and reports a pop timeout.
type memList struct {
	mu      sync.Mutex
	items   map[string][]string
	onEmpty func()
}

func (l *memList) RPush(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, v := range values {
		switch val := v.(type) {
		case []byte:
			l.items[key] = append(l.items[key], string(val))
		case string:
			l.items[key] = append(l.items[key], val)
		}
	}
	return redis.NewIntResult(int64(len(l.items[key])), nil)
}

func (l *memList) BLPop(_ context.Context, _ time.Duration, keys ...string) *redis.StringSliceCmd {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range keys {
		if len(l.items[key]) > 0 {
			head := l.items[key][0]
			l.items[key] = l.items[key][1:]
			return redis.NewStringSliceResult([]string{key, head}, nil)
		}
	}
	if l.onEmpty != nil {
		l.onEmpty()
	}
	return redis.NewStringSliceResult(nil, redis.Nil)
}

func TestRedisQueueDeliversPublishedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	list := &memList{items: map[string][]string{}, onEmpty: cancel}
	q := newRedisQueue(list, "events", zap.NewNop())

	var got []Event
	q.Subscribe(EventNotificationRequested, func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	list.RPush(ctx, "events", "{not json")
	err := q.Publish(ctx, Event{
		ID:       "e1",
		Type:     EventNotificationRequested,
		TicketID: "t1",
		Email:    &EmailPayload{To: "a@b.com", Subject: "Ticket Update: x", Body: "b"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := q.Publish(ctx, Event{ID: "e2", Type: EventTicketDeleted, TicketID: "t2"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	done := make(chan struct{})
	go func() {
		q.Run(ctx)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the list drained")
	}

	if len(got) != 1 {
		t.Fatalf("handler ran %d times, want 1", len(got))
	}
	if got[0].TicketID != "t1" || got[0].Email == nil || got[0].Email.To != "a@b.com" {
		t.Fatalf("event = %+v", got[0])
	}
	if rest := list.items["events"]; len(rest) != 0 {
		t.Fatalf("%d items left on the list", len(rest))
	}
}
