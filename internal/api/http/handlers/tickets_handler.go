package handlers

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const attachmentField = "attachment"

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets  *service.TicketService
	notifier *service.NotificationService
	validate *validator.Validate
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, notifier *service.NotificationService, validate *validator.Validate) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, notifier: notifier, validate: validate}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()
	if err := validateRequest(h.validate, &req); err != nil {
		return err
	}

	upload, closeFile, err := attachmentFromRequest(c)
	if err != nil {
		return err
	}
	defer closeFile()

	ticket, err := h.tickets.Create(c.UserContext(), service.TicketCreateInput{
		Category:    req.Category,
		Subcategory: req.Subcategory,
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Department:  req.Department,
		Email:       req.Email,
	}, upload)
	if err != nil {
		return err
	}
	return c.JSON(dto.CreateTicketResponse{
		Message:  "Ticket created successfully",
		TicketID: ticket.ID,
		Ticket:   dto.NewTicketResponse(ticket),
	})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	var q dto.TicketListQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewValidationError("skip and limit must be integers", nil)
	}
	tickets, err := h.tickets.List(c.UserContext(), q.Skip, q.Limit)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i]))
	}
	return c.JSON(items)
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket))
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validateRequest(h.validate, &req); err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.tickets.UpdateStatus(c.UserContext(), id, domain.TicketStatus(req.Status)); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Ticket %s status updated", id)})
}

// Notify POST /tickets/:id/notify.
func (h *TicketsHandler) Notify(c *fiber.Ctx) error {
	if err := h.notifier.Notify(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "Notification sent"})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.tickets.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Ticket %s deleted", id)})
}

// attachmentFromRequest opens the optional uploaded file. The returned close
// func is always safe to call.
func attachmentFromRequest(c *fiber.Ctx) (*service.AttachmentUpload, func(), error) {
	noop := func() {}
	if !strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm) {
		return nil, noop, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, noop, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	files := form.File[attachmentField]
	if len(files) == 0 {
		return nil, noop, nil
	}
	header := files[0]
	if header.Filename == "" && header.Size == 0 {
		return nil, noop, nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, noop, apperrors.NewValidationError("unreadable attachment", map[string]any{"field": attachmentField})
	}
	return &service.AttachmentUpload{
		FileName:    header.Filename,
		ContentType: contentType(header),
		Content:     f,
	}, func() { _ = f.Close() }, nil
}

func contentType(h *multipart.FileHeader) string {
	if ct := h.Header.Get(fiber.HeaderContentType); ct != "" {
		return ct
	}
	return fiber.MIMEOctetStream
}
