package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// ticketDocument is the stored shape of a ticket. The same struct is encoded
// as BSON for Mongo and as JSON for the Postgres doc column.
type ticketDocument struct {
	ID          bson.ObjectID       `bson:"_id,omitempty" json:"-"`
	Category    string              `bson:"category" json:"category"`
	Subcategory string              `bson:"subcategory" json:"subcategory"`
	Subject     string              `bson:"subject" json:"subject"`
	Description string              `bson:"description" json:"description"`
	Priority    string              `bson:"priority" json:"priority"`
	Department  string              `bson:"department" json:"department"`
	Email       string              `bson:"email" json:"email"`
	Status      string              `bson:"status" json:"status"`
	Attachment  *attachmentDocument `bson:"attachment,omitempty" json:"attachment,omitempty"`
	// LegacyFile is the attachment key older records were written with.
	LegacyFile *attachmentDocument `bson:"file,omitempty" json:"file,omitempty"`
	CreatedAt  time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updated_at"`
}

type attachmentDocument struct {
	FileName    string `bson:"filename" json:"filename"`
	FilePath    string `bson:"file_path" json:"file_path"`
	StorageKey  string `bson:"storage_key,omitempty" json:"storage_key,omitempty"`
	ContentType string `bson:"content_type,omitempty" json:"content_type,omitempty"`
	SizeBytes   int64  `bson:"size_bytes,omitempty" json:"size_bytes,omitempty"`
}

type userDocument struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"-"`
	Username  string        `bson:"username" json:"username"`
	Email     string        `bson:"email" json:"email"`
	Role      string        `bson:"role" json:"role"`
	Password  string        `bson:"password" json:"password"`
	CreatedAt time.Time     `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

func newTicketDocument(t *domain.Ticket) ticketDocument {
	doc := ticketDocument{
		Category:    t.Category,
		Subcategory: t.Subcategory,
		Subject:     t.Subject,
		Description: t.Description,
		Priority:    t.Priority,
		Department:  t.Department,
		Email:       t.Email,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.Attachment != nil {
		doc.Attachment = &attachmentDocument{
			FileName:    t.Attachment.FileName,
			FilePath:    t.Attachment.FilePath,
			StorageKey:  t.Attachment.StorageKey,
			ContentType: t.Attachment.ContentType,
			SizeBytes:   t.Attachment.SizeBytes,
		}
	}
	return doc
}

func (d ticketDocument) toDomain(id string) domain.Ticket {
	ticket := domain.Ticket{
		ID:          id,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		Subject:     d.Subject,
		Description: d.Description,
		Priority:    d.Priority,
		Department:  d.Department,
		Email:       d.Email,
		Status:      domain.TicketStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	att := d.Attachment
	if att == nil {
		att = d.LegacyFile
	}
	if att != nil {
		ticket.Attachment = &domain.Attachment{
			FileName:    att.FileName,
			FilePath:    att.FilePath,
			StorageKey:  att.StorageKey,
			ContentType: att.ContentType,
			SizeBytes:   att.SizeBytes,
		}
	}
	return ticket
}

func newUserDocument(u *domain.User) userDocument {
	return userDocument{
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Password:  u.Password,
		CreatedAt: u.CreatedAt,
	}
}

func (d userDocument) toDomain(id string) domain.User {
	return domain.User{
		ID:        id,
		Username:  d.Username,
		Email:     d.Email,
		Role:      d.Role,
		Password:  d.Password,
		CreatedAt: d.CreatedAt,
	}
}
