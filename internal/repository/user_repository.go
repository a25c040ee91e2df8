package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

const usersCollection = "users"

// UserRepository defines persistence access for dashboard accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, password string) error
	// ForEach calls fn for every stored user, stopping at the first error.
	ForEach(ctx context.Context, fn func(*domain.User) error) error
	EnsureIndexes(ctx context.Context) error
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository returns a MongoDB-backed implementation.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *mongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	res, err := r.coll.InsertOne(ctx, newUserDocument(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	oid, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("unexpected inserted id type")
	}
	user.ID = oid.Hex()
	return nil
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user := doc.toDomain(doc.ID.Hex())
	return &user, nil
}

func (r *mongoUserRepository) UpdatePassword(ctx context.Context, id, password string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"password": password}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) ForEach(ctx context.Context, fn func(*domain.User) error) error {
	cursor, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc userDocument
		if err := cursor.Decode(&doc); err != nil {
			return err
		}
		user := doc.toDomain(doc.ID.Hex())
		if err := fn(&user); err != nil {
			return err
		}
	}
	return cursor.Err()
}
