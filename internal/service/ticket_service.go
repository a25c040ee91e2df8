package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const (
	defaultListLimit = 10
	maxListLimit     = 100
)

// AttachmentStore persists uploaded files outside the document store.
type AttachmentStore interface {
	Save(fileName, contentType string, r io.Reader) (*domain.Attachment, error)
	Remove(att *domain.Attachment) error
}

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	attachments AttachmentStore
	dispatcher  events.Dispatcher
	validate    *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	Attachments AttachmentStore
	Dispatcher  events.Dispatcher
	Validate    *validator.Validate
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Category    string
	Subcategory string
	Subject     string
	Description string
	Priority    string
	Department  string
	Email       string
}

// AttachmentUpload is a file sent along with a new ticket.
type AttachmentUpload struct {
	FileName    string
	ContentType string
	Content     io.Reader
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	validate := deps.Validate
	if validate == nil {
		validate = validator.New()
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		attachments: deps.Attachments,
		dispatcher:  deps.Dispatcher,
		validate:    validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Create validates and stores a new ticket with status open.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput, upload *AttachmentUpload) (*domain.Ticket, error) {
	ticket := &domain.Ticket{
		Category:    strings.TrimSpace(input.Category),
		Subcategory: strings.TrimSpace(input.Subcategory),
		Subject:     strings.TrimSpace(input.Subject),
		Description: strings.TrimSpace(input.Description),
		Priority:    strings.TrimSpace(input.Priority),
		Department:  strings.TrimSpace(input.Department),
		Email:       strings.TrimSpace(input.Email),
		Status:      domain.TicketStatusOpen,
	}
	if err := s.validateTicket(ticket); err != nil {
		return nil, err
	}

	if upload != nil && upload.Content != nil {
		if s.attachments == nil {
			return nil, apperrors.NewInternalError(nil)
		}
		att, err := s.attachments.Save(upload.FileName, upload.ContentType, upload.Content)
		if err != nil {
			return nil, apperrors.NewUpstreamFailure("failed to store attachment", err)
		}
		ticket.Attachment = att
	}

	now := s.now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	if err := s.tickets.Create(ctx, ticket); err != nil {
		s.removeAttachment(ticket)
		return nil, apperrors.NewUpstreamFailure("failed to create ticket", err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Attributes: map[string]string{
			"priority":   ticket.Priority,
			"department": ticket.Department,
		},
	})
	return ticket, nil
}

// List returns tickets in insertion order. A non-positive limit selects the
// default page size and larger pages are capped.
func (s *TicketService) List(ctx context.Context, skip, limit int) ([]domain.Ticket, error) {
	if skip < 0 {
		skip = 0
	}
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	tickets, err := s.tickets.List(ctx, skip, limit)
	if err != nil {
		return nil, apperrors.NewUpstreamFailure("failed to list tickets", err)
	}
	return tickets, nil
}

// Get fetches a single ticket.
func (s *TicketService) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "ticket", id)
	}
	return ticket, nil
}

// UpdateStatus sets the ticket status and refreshes updated_at.
func (s *TicketService) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) error {
	status = domain.TicketStatus(strings.TrimSpace(string(status)))
	if status == "" {
		return apperrors.NewValidationError("status is required", map[string]any{"field": "status"})
	}

	res, err := s.tickets.UpdateStatus(ctx, id, status, s.now())
	if err != nil {
		return storeError(err, "ticket", id)
	}
	if res.Matched == 0 {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	if res.Modified == 0 {
		// Two writes inside one store clock tick leave the document unchanged.
		current, err := s.tickets.GetByID(ctx, id)
		if err != nil {
			return storeError(err, "ticket", id)
		}
		if current.Status != status {
			return apperrors.NewUpdateFailed("ticket status was not updated", map[string]any{"id": id})
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventTicketStatusChanged,
		TicketID:   id,
		Attributes: map[string]string{"status": string(status)},
	})
	return nil
}

// Delete removes a ticket and, best effort, its stored attachment.
func (s *TicketService) Delete(ctx context.Context, id string) error {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "ticket", id)
	}

	deleted, err := s.tickets.Delete(ctx, id)
	if err != nil {
		return storeError(err, "ticket", id)
	}
	if deleted == 0 {
		return apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}

	s.removeAttachment(ticket)
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
	})
	return nil
}

func (s *TicketService) validateTicket(ticket *domain.Ticket) error {
	required := []struct {
		field string
		value string
	}{
		{"category", ticket.Category},
		{"subcategory", ticket.Subcategory},
		{"subject", ticket.Subject},
		{"description", ticket.Description},
		{"priority", ticket.Priority},
		{"department", ticket.Department},
		{"email", ticket.Email},
	}
	var missing []string
	for _, f := range required {
		if f.value == "" {
			missing = append(missing, f.field)
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if err := s.validate.Var(ticket.Email, "email"); err != nil {
		return apperrors.NewValidationError("invalid email address", map[string]any{"field": "email"})
	}
	return nil
}

func (s *TicketService) removeAttachment(ticket *domain.Ticket) {
	if s.attachments == nil || ticket.Attachment == nil {
		return
	}
	if err := s.attachments.Remove(ticket.Attachment); err != nil {
		s.logger.Warn("failed to remove attachment",
			zap.String("ticket_id", ticket.ID),
			zap.String("path", ticket.Attachment.FilePath),
			zap.Error(err))
	}
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("failed to publish event",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
			zap.Error(err))
	}
}
