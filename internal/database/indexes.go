package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexSpec describes one single-field index on a storage collection.
type IndexSpec struct {
	Collection string
	Field      string
	Unique     bool
}

// DefaultIndexes are created at startup.
var DefaultIndexes = []IndexSpec{
	{Collection: "admin_users", Field: "username", Unique: true},
	{Collection: "products", Field: "category_id"},
	{Collection: "products", Field: "is_popular"},
	{Collection: "categories", Field: "is_popular"},
	{Collection: "contact_messages", Field: "product_id"},
	{Collection: "admin_sessions", Field: "refresh_token", Unique: true},
}

func indexModel(s IndexSpec) mongo.IndexModel {
	opts := options.Index().SetName(s.Field + "_1")
	if s.Unique {
		opts.SetUnique(true)
	}
	return mongo.IndexModel{Keys: bson.D{{Key: s.Field, Value: 1}}, Options: opts}
}

// EnsureIndexes creates the given indexes; existing indexes are left untouched.
func EnsureIndexes(ctx context.Context, db *mongo.Database, specs []IndexSpec) error {
	for _, s := range specs {
		if _, err := db.Collection(s.Collection).Indexes().CreateOne(ctx, indexModel(s)); err != nil {
			return fmt.Errorf("create index %s.%s: %w", s.Collection, s.Field, err)
		}
	}
	return nil
}
