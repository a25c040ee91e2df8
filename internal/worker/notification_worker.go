package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/mailer"
)

// NotificationRecorder counts delivery outcomes.
type NotificationRecorder interface {
	RecordNotification(result string)
}

// NotificationWorker delivers queued emails and keeps an audit log of ticket events.
type NotificationWorker struct {
	mailer      mailer.Mailer
	logger      *zap.Logger
	metrics     NotificationRecorder
	sendTimeout time.Duration
}

// NewNotificationWorker creates the worker. sendTimeout bounds each delivery.
func NewNotificationWorker(m mailer.Mailer, logger *zap.Logger, metrics NotificationRecorder, sendTimeout time.Duration) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{mailer: m, logger: logger, metrics: metrics, sendTimeout: sendTimeout}
}

// Register subscribes the worker's handlers on dispatcher.
func (w *NotificationWorker) Register(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventNotificationRequested, w.handleNotificationRequested)
	dispatcher.Subscribe(events.EventTicketCreated, w.audit)
	dispatcher.Subscribe(events.EventTicketStatusChanged, w.audit)
	dispatcher.Subscribe(events.EventTicketDeleted, w.audit)
}

func (w *NotificationWorker) handleNotificationRequested(ctx context.Context, event events.Event) error {
	if event.Email == nil {
		return errors.New("notification event without email payload")
	}

	if w.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.sendTimeout)
		defer cancel()
	}

	err := w.mailer.Send(ctx, mailer.Message{
		To:      event.Email.To,
		Subject: event.Email.Subject,
		Body:    event.Email.Body,
	})
	if err != nil {
		w.record("failed")
		w.logger.Error("failed to send notification email",
			zap.String("ticket_id", event.TicketID),
			zap.String("to", event.Email.To),
			zap.Error(err))
		return nil
	}
	w.record("sent")
	w.logger.Info("notification email sent",
		zap.String("ticket_id", event.TicketID),
		zap.String("to", event.Email.To))
	return nil
}

func (w *NotificationWorker) audit(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.Time("at", event.Timestamp),
	}
	for k, v := range event.Attributes {
		fields = append(fields, zap.String(k, v))
	}
	w.logger.Info("ticket event", fields...)
	return nil
}

func (w *NotificationWorker) record(result string) {
	if w.metrics != nil {
		w.metrics.RecordNotification(result)
	}
}

// QueueRunner consumes an external event queue until ctx ends.
type QueueRunner interface {
	Run(ctx context.Context)
}

// StartQueueConsumer runs q in the background. The returned channel closes
// once the consumer has stopped.
func StartQueueConsumer(ctx context.Context, q QueueRunner) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		q.Run(ctx)
	}()
	return done
}
