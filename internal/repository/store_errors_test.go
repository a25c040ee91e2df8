package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Malformed identifiers are rejected before any query reaches the store, so
// these run without a database.

func TestPostgresRepositoriesRejectMalformedIDs(t *testing.T) {
	ctx := context.Background()
	tickets := NewPostgresTicketRepository(nil)
	users := NewPostgresUserRepository(nil)

	if _, err := tickets.GetByID(ctx, "42"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("GetByID error = %v, want ErrInvalidID", err)
	}
	if _, err := tickets.UpdateStatus(ctx, "not-a-uuid", domain.TicketStatusClosed, time.Now()); !errors.Is(err, ErrInvalidID) {
		t.Errorf("UpdateStatus error = %v, want ErrInvalidID", err)
	}
	if _, err := tickets.Delete(ctx, ""); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Delete error = %v, want ErrInvalidID", err)
	}
	if err := users.UpdatePassword(ctx, "nope", "hash"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("UpdatePassword error = %v, want ErrInvalidID", err)
	}
}

func TestMongoRepositoriesRejectMalformedIDs(t *testing.T) {
	ctx := context.Background()
	client, err := mongo.Connect(options.Client().ApplyURI("mongodb://127.0.0.1:1"))
	if err != nil {
		t.Fatalf("mongo.Connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	db := client.Database("helpdesk_test")
	tickets := NewMongoTicketRepository(db)
	users := NewMongoUserRepository(db)

	if _, err := tickets.GetByID(ctx, "42"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("GetByID error = %v, want ErrInvalidID", err)
	}
	if _, err := tickets.UpdateStatus(ctx, "zzzzzzzzzzzzzzzzzzzzzzzz", domain.TicketStatusClosed, time.Now()); !errors.Is(err, ErrInvalidID) {
		t.Errorf("UpdateStatus error = %v, want ErrInvalidID", err)
	}
	if _, err := tickets.Delete(ctx, ""); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Delete error = %v, want ErrInvalidID", err)
	}
	if err := users.UpdatePassword(ctx, "nope", "hash"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("UpdatePassword error = %v, want ErrInvalidID", err)
	}
}
