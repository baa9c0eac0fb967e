package sessions

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// CollectionName is the Mongo collection holding refresh sessions.
const CollectionName = "admin_sessions"

// Repository provides session persistence operations.
// GetByRefresh returns (nil, nil) when the session does not exist.
type Repository interface {
	Create(ctx context.Context, s *Session) error
	GetByRefresh(ctx context.Context, refresh string) (*Session, error)
	// Consume atomically fetches and removes a session; concurrent callers
	// with the same token see it at most once.
	Consume(ctx context.Context, refresh string) (*Session, error)
	DeleteByRefresh(ctx context.Context, refresh string) error
}

// MongoRepository implements Repository using a Mongo collection resolved per call,
// so a store that comes up after startup is picked up.
type MongoRepository struct {
	col func(ctx context.Context) (*mongo.Collection, error)
}

func NewMongoRepository(col func(ctx context.Context) (*mongo.Collection, error)) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, s *Session) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = now.Add(7 * 24 * time.Hour)
	}
	col, err := r.col(ctx)
	if err != nil {
		return err
	}
	_, err = col.InsertOne(ctx, s)
	return err
}

func (r *MongoRepository) GetByRefresh(ctx context.Context, refresh string) (*Session, error) {
	col, err := r.col(ctx)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := col.FindOne(ctx, bson.M{"refresh_token": refresh}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) Consume(ctx context.Context, refresh string) (*Session, error) {
	col, err := r.col(ctx)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := col.FindOneAndDelete(ctx, bson.M{"refresh_token": refresh}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *MongoRepository) DeleteByRefresh(ctx context.Context, refresh string) error {
	col, err := r.col(ctx)
	if err != nil {
		return err
	}
	_, err = col.DeleteOne(ctx, bson.M{"refresh_token": refresh})
	return err
}
