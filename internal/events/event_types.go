package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketDeleted         EventType = "ticket_deleted"
	EventNotificationRequested EventType = "notification_requested"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID         string            `json:"id"`
	Type       EventType         `json:"type"`
	TicketID   string            `json:"ticket_id"`
	Timestamp  time.Time         `json:"timestamp"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Email      *EmailPayload     `json:"email,omitempty"`
}

// EmailPayload is the message a notification event asks to deliver.
type EmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
