package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// NotificationService queues ticket update emails for asynchronous delivery.
type NotificationService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(tickets repository.TicketRepository, dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		tickets:    tickets,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Notify schedules an update email to the ticket submitter and returns
// without waiting for delivery.
func (n *NotificationService) Notify(ctx context.Context, id string) error {
	ticket, err := n.tickets.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "ticket", id)
	}

	publish(ctx, n.dispatcher, n.logger, events.Event{
		Type:     events.EventNotificationRequested,
		TicketID: ticket.ID,
		Email:    ComposeTicketUpdate(ticket),
	})
	return nil
}

// ComposeTicketUpdate builds the status update email for ticket.
func ComposeTicketUpdate(ticket *domain.Ticket) *events.EmailPayload {
	return &events.EmailPayload{
		To:      ticket.Email,
		Subject: fmt.Sprintf("Ticket Update: %s", ticket.Subject),
		Body:    fmt.Sprintf("Hello, your ticket with ID %s has been updated.\n\nStatus: %s", ticket.ID, ticket.Status),
	}
}
