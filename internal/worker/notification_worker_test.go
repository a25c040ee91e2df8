package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mailer"
)

type fakeMailer struct {
	mu       sync.Mutex
	sent     []mailer.Message
	err      error
	deadline bool
}

func (m *fakeMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, m.deadline = ctx.Deadline()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) RecordNotification(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[result]++
}

func notificationEvent() events.Event {
	return events.Event{
		ID:       "e1",
		Type:     events.EventNotificationRequested,
		TicketID: "t1",
		Email: &events.EmailPayload{
			To:      "a@b.com",
			Subject: "Ticket Update: Printer",
			Body:    "Hello, your ticket with ID t1 has been updated.\n\nStatus: closed",
		},
	}
}

func TestWorkerDeliversNotificationEmail(t *testing.T) {
	m := &fakeMailer{}
	rec := &countingRecorder{}
	d := events.NewAsyncDispatcher(zap.NewNop())
	NewNotificationWorker(m, zap.NewNop(), rec, 5*time.Second).Register(d)

	if err := d.Publish(context.Background(), notificationEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := d.Drain(ctx); err != nil {
		t.Fatalf("Drain: %v", err)
	}

	if len(m.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(m.sent))
	}
	if m.sent[0].To != "a@b.com" || m.sent[0].Subject != "Ticket Update: Printer" {
		t.Fatalf("message = %+v", m.sent[0])
	}
	if !m.deadline {
		t.Fatal("send context carries no deadline")
	}
	if rec.counts["sent"] != 1 {
		t.Fatalf("counts = %v", rec.counts)
	}
}

func TestWorkerSwallowsDeliveryFailure(t *testing.T) {
	m := &fakeMailer{err: errors.New("relay refused")}
	rec := &countingRecorder{}
	w := NewNotificationWorker(m, zap.NewNop(), rec, time.Second)

	if err := w.handleNotificationRequested(context.Background(), notificationEvent()); err != nil {
		t.Fatalf("handler returned %v, want nil", err)
	}
	if rec.counts["failed"] != 1 {
		t.Fatalf("counts = %v", rec.counts)
	}
}

func TestWorkerRejectsEventWithoutEmail(t *testing.T) {
	w := NewNotificationWorker(&fakeMailer{}, zap.NewNop(), nil, time.Second)
	ev := notificationEvent()
	ev.Email = nil
	if err := w.handleNotificationRequested(context.Background(), ev); err == nil {
		t.Fatal("expected error for event without email")
	}
}

type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context) { <-ctx.Done() }

func TestStartQueueConsumerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := StartQueueConsumer(ctx, blockingRunner{})
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
