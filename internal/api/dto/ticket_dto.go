package dto

import (
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest is the multipart form sent with a new ticket. The
// optional file travels in the "attachment" part.
type CreateTicketRequest struct {
	Category    string `form:"category" json:"category" validate:"required"`
	Subcategory string `form:"subcategory" json:"subcategory" validate:"required"`
	Subject     string `form:"subject" json:"subject" validate:"required"`
	Description string `form:"description" json:"description" validate:"required"`
	Priority    string `form:"priority" json:"priority" validate:"required"`
	Department  string `form:"department" json:"department" validate:"required"`
	Email       string `form:"email" json:"email" validate:"required,email"`
}

// Normalize trims surrounding whitespace from every field.
func (r *CreateTicketRequest) Normalize() {
	for _, f := range []*string{&r.Category, &r.Subcategory, &r.Subject, &r.Description, &r.Priority, &r.Department, &r.Email} {
		*f = strings.TrimSpace(*f)
	}
}

// TicketListQuery captures pagination parameters.
type TicketListQuery struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// TicketResponse is the ticket record returned to dashboards.
type TicketResponse struct {
	ID          string              `json:"_id"`
	Category    string              `json:"category"`
	Subcategory string              `json:"subcategory"`
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	Priority    string              `json:"priority"`
	Department  string              `json:"department"`
	Email       string              `json:"email"`
	Status      domain.TicketStatus `json:"status"`
	Attachment  *AttachmentResponse `json:"attachment,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	FileName    string `json:"filename"`
	FilePath    string `json:"file_path"`
	StorageKey  string `json:"storage_key"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
}

// CreateTicketResponse acknowledges a submitted ticket.
type CreateTicketResponse struct {
	Message  string         `json:"message"`
	TicketID string         `json:"ticket_id"`
	Ticket   TicketResponse `json:"ticket"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// NewTicketResponse maps a domain ticket to its JSON form.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID,
		Category:    t.Category,
		Subcategory: t.Subcategory,
		Subject:     t.Subject,
		Description: t.Description,
		Priority:    t.Priority,
		Department:  t.Department,
		Email:       t.Email,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Attachment != nil {
		resp.Attachment = &AttachmentResponse{
			FileName:    t.Attachment.FileName,
			FilePath:    t.Attachment.FilePath,
			StorageKey:  t.Attachment.StorageKey,
			ContentType: t.Attachment.ContentType,
			SizeBytes:   t.Attachment.SizeBytes,
		}
	}
	return resp
}
