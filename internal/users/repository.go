package users

import (
	"context"
	"errors"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound          = errors.New("admin user not found")
	ErrDuplicateUsername = errors.New("username already exists")
)

// UserRepository defines persistence operations for admin accounts
type UserRepository interface {
	Create(ctx context.Context, u *models.AdminUser) error
	GetByUsername(ctx context.Context, username string) (*models.AdminUser, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
	List(ctx context.Context) ([]models.AdminUser, error)
	Update(ctx context.Context, u *models.AdminUser) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CollectionProvider hands out the admin_users collection, connecting lazily.
type CollectionProvider func(ctx context.Context) (*mongo.Collection, error)

// MongoUserRepository implements UserRepository using MongoDB
type MongoUserRepository struct {
	col CollectionProvider
}

// NewMongoUserRepository creates a new repository for the given collection
func NewMongoUserRepository(col CollectionProvider) *MongoUserRepository {
	return &MongoUserRepository{col: col}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *models.AdminUser) error {
	col, err := r.col(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if _, err := col.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUsername
		}
		return err
	}
	return nil
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*models.AdminUser, error) {
	col, err := r.col(ctx)
	if err != nil {
		return nil, err
	}
	var u models.AdminUser
	if err := col.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUserRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	col, err := r.col(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := []models.AdminUser{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, u *models.AdminUser) error {
	col, err := r.col(ctx)
	if err != nil {
		return err
	}
	u.UpdatedAt = time.Now().UTC()
	set := bson.M{"username": u.Username, "password": u.PasswordHash, "updated_at": u.UpdatedAt}
	res, err := col.UpdateOne(ctx, bson.M{"_id": u.ID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateUsername
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	col, err := r.col(ctx)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
