package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const pgUniqueViolation = "23505"

type pgUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository stores users as JSONB documents in Postgres.
func NewPostgresUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepository{pool: pool}
}

// EnsureIndexes is a no-op; the unique email constraint ships with the schema migration.
func (r *pgUserRepository) EnsureIndexes(context.Context) error {
	return nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *domain.User) error {
	doc, err := json.Marshal(newUserDocument(user))
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO users (email, doc, created_at)
        VALUES ($1, $2, $3)
        RETURNING id::text`
	err = r.pool.QueryRow(ctx, query, user.Email, doc, user.CreatedAt).Scan(&user.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *pgUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `SELECT id::text, doc FROM users WHERE email = $1`
	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) UpdatePassword(ctx context.Context, id, password string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	const query = `UPDATE users SET doc = jsonb_set(doc, '{password}', to_jsonb($2::text)) WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, password)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) ForEach(ctx context.Context, fn func(*domain.User) error) error {
	rows, err := r.pool.Query(ctx, `SELECT id::text, doc FROM users ORDER BY created_at`)
	if err != nil {
		return err
	}
	// Drain before calling fn so callbacks that write do not compete with
	// the open cursor for a pooled connection.
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.User, error) {
		return scanUser(row)
	})
	if err != nil {
		return err
	}
	for _, user := range users {
		if err := fn(user); err != nil {
			return err
		}
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		id  string
		raw []byte
		doc userDocument
	)
	if err := row.Scan(&id, &raw); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	user := doc.toDomain(id)
	return &user, nil
}
