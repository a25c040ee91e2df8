package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const ticketsCollection = "tickets"

// UpdateResult reports how many documents an update matched and changed.
type UpdateResult struct {
	Matched  int64
	Modified int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	List(ctx context.Context, skip, limit int) ([]domain.Ticket, error)
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, updatedAt time.Time) (UpdateResult, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type mongoTicketRepository struct {
	coll *mongo.Collection
}

// NewMongoTicketRepository returns a MongoDB-backed implementation.
func NewMongoTicketRepository(db *mongo.Database) TicketRepository {
	return &mongoTicketRepository{coll: db.Collection(ticketsCollection)}
}

func (r *mongoTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	doc := newTicketDocument(ticket)
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("unexpected inserted id type")
	}
	ticket.ID = oid.Hex()
	return nil
}

func (r *mongoTicketRepository) List(ctx context.Context, skip, limit int) ([]domain.Ticket, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []ticketDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]domain.Ticket, 0, len(docs))
	for _, doc := range docs {
		result = append(result, doc.toDomain(doc.ID.Hex()))
	}
	return result, nil
}

func (r *mongoTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}
	var doc ticketDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	ticket := doc.toDomain(oid.Hex())
	return &ticket, nil
}

func (r *mongoTicketRepository) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, updatedAt time.Time) (UpdateResult, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return UpdateResult{}, err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"status": string(status), "updated_at": updatedAt.Truncate(time.Millisecond)}},
	)
	if err != nil {
		return UpdateResult{}, err
	}
	return UpdateResult{Matched: res.MatchedCount, Modified: res.ModifiedCount}, nil
}

func (r *mongoTicketRepository) Delete(ctx context.Context, id string) (int64, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return 0, err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func parseObjectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, ErrInvalidID
	}
	return oid, nil
}
