package domain

import "time"

// TicketStatus is a free-form lifecycle label. The constants below are the
// values the dashboards use; callers may set any non-empty string.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// Attachment describes a file uploaded with a ticket. FileName is the name the
// client supplied; StorageKey is the generated name the file is stored under.
type Attachment struct {
	FileName    string
	FilePath    string
	StorageKey  string
	ContentType string
	SizeBytes   int64
}

// Ticket is a support request submitted by a user.
type Ticket struct {
	ID          string
	Category    string
	Subcategory string
	Subject     string
	Description string
	Priority    string
	Department  string
	Email       string
	Status      TicketStatus
	Attachment  *Attachment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
