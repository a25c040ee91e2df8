package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type pgTicketRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTicketRepository stores tickets as JSONB documents in Postgres.
func NewPostgresTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &pgTicketRepository{pool: pool}
}

func (r *pgTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	doc, err := json.Marshal(newTicketDocument(ticket))
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (doc, created_at, updated_at)
        VALUES ($1, $2, $3)
        RETURNING id::text`
	return r.pool.QueryRow(ctx, query, doc, ticket.CreatedAt, ticket.UpdatedAt).Scan(&ticket.ID)
}

func (r *pgTicketRepository) List(ctx context.Context, skip, limit int) ([]domain.Ticket, error) {
	const query = `SELECT id::text, doc FROM tickets ORDER BY seq ASC OFFSET $1 LIMIT $2`
	rows, err := r.pool.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *pgTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	const query = `SELECT id::text, doc FROM tickets WHERE id = $1`
	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (r *pgTicketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, updatedAt time.Time) (UpdateResult, error) {
	if _, err := uuid.Parse(id); err != nil {
		return UpdateResult{}, ErrInvalidID
	}
	const query = `
        UPDATE tickets
        SET doc = jsonb_set(jsonb_set(doc, '{status}', to_jsonb($2::text)), '{updated_at}', to_jsonb($3::text)),
            updated_at = $4
        WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, string(status), updatedAt.Format(time.RFC3339Nano), updatedAt)
	if err != nil {
		return UpdateResult{}, err
	}
	// Postgres rewrites every matched row.
	return UpdateResult{Matched: cmd.RowsAffected(), Modified: cmd.RowsAffected()}, nil
}

func (r *pgTicketRepository) Delete(ctx context.Context, id string) (int64, error) {
	if _, err := uuid.Parse(id); err != nil {
		return 0, ErrInvalidID
	}
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		id  string
		raw []byte
		doc ticketDocument
	)
	if err := row.Scan(&id, &raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	ticket := doc.toDomain(id)
	return &ticket, nil
}
