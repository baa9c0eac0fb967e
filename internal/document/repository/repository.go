package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/collections"
	"github.com/Ayush22-04/xetor-backen/internal/document"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidCollection = errors.New("invalid collection")
	ErrInvalidID         = errors.New("invalid id")
	ErrNotFound          = errors.New("document not found")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// AdminListLimit caps administrative listings. Public listings pass 0 (uncapped).
const AdminListLimit = 200

// Filter is a set of top-level equality predicates.
type Filter map[string]interface{}

// Repository is the collection-agnostic CRUD surface over the document store.
// Collection arguments are storage names (see collections.Storage*).
type Repository interface {
	List(ctx context.Context, coll string, filter Filter, limit int64) ([]document.Document, error)
	Get(ctx context.Context, coll, id string) (document.Document, error)
	// Create ignores client-supplied identifiers and timestamps and returns the new id.
	Create(ctx context.Context, coll string, fields document.Document) (string, error)
	// Update merges fields into an existing document and reports whether it matched.
	Update(ctx context.Context, coll, id string, fields document.Document) (bool, error)
	// Delete succeeds whether or not a document matched.
	Delete(ctx context.Context, coll, id string) (bool, error)
	Count(ctx context.Context, coll string, filter Filter) (int64, error)
	FindByIDs(ctx context.Context, coll string, ids []primitive.ObjectID) ([]document.Document, error)
	Ping(ctx context.Context) error
}

func checkCollection(coll string) error {
	if !collections.IsStorage(coll) {
		return ErrInvalidCollection
	}
	return nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return oid, nil
}

// insertFields drops identifier and timestamp fields and stamps both timestamps.
func insertFields(fields document.Document, now time.Time) document.Document {
	out := make(document.Document, len(fields)+2)
	for k, v := range fields {
		switch k {
		case document.FieldID, "id", document.FieldCreatedAt, document.FieldUpdatedAt:
			continue
		}
		out[k] = v
	}
	out[document.FieldCreatedAt] = now
	out[document.FieldUpdatedAt] = now
	return out
}

// updateFields drops the identifier and created_at and refreshes updated_at.
func updateFields(fields document.Document, now time.Time) document.Document {
	out := make(document.Document, len(fields)+1)
	for k, v := range fields {
		switch k {
		case document.FieldID, "id", document.FieldCreatedAt:
			continue
		}
		out[k] = v
	}
	out[document.FieldUpdatedAt] = now
	return out
}

// storeTime matches the store's millisecond precision.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
