package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/document"
	"github.com/Ayush22-04/xetor-backen/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DatabaseProvider hands out the store database, connecting lazily.
type DatabaseProvider interface {
	Database(ctx context.Context) (*mongo.Database, error)
}

// MongoRepo implements Repository over MongoDB. Documents keep the store's
// native ObjectID in "_id".
type MongoRepo struct {
	db        DatabaseProvider
	opTimeout time.Duration
	now       func() time.Time
}

func NewMongoRepo(db DatabaseProvider, opTimeout time.Duration) *MongoRepo {
	if opTimeout <= 0 {
		opTimeout = 10 * time.Second
	}
	return &MongoRepo{db: db, opTimeout: opTimeout, now: time.Now}
}

func (m *MongoRepo) collection(ctx context.Context, coll string) (*mongo.Collection, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	db, err := m.db.Database(ctx)
	if err != nil {
		return nil, storeErr("connect", err)
	}
	return db.Collection(coll), nil
}

func storeErr(op string, err error) error {
	metrics.StoreErrors.WithLabelValues(op).Inc()
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

func bsonFilter(f Filter) bson.M {
	out := bson.M{}
	for k, v := range f {
		out[k] = v
	}
	return out
}

func decodeAll(ctx context.Context, cur *mongo.Cursor) ([]document.Document, error) {
	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, err
	}
	out := make([]document.Document, 0, len(raw))
	for _, r := range raw {
		out = append(out, document.Document(r))
	}
	return out, nil
}

func (m *MongoRepo) List(ctx context.Context, coll string, filter Filter, limit int64) ([]document.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	col, err := m.collection(ctx, coll)
	if err != nil {
		return nil, err
	}
	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := col.Find(ctx, bsonFilter(filter), opts)
	if err != nil {
		return nil, storeErr("find", err)
	}
	docs, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, storeErr("decode", err)
	}
	return docs, nil
}

func (m *MongoRepo) Get(ctx context.Context, coll, id string) (document.Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	col, err := m.collection(ctx, coll)
	if err != nil {
		return nil, err
	}
	var raw bson.M
	if err := col.FindOne(ctx, bson.M{document.FieldID: oid}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, storeErr("find_one", err)
	}
	return document.Document(raw), nil
}

func (m *MongoRepo) Create(ctx context.Context, coll string, fields document.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	col, err := m.collection(ctx, coll)
	if err != nil {
		return "", err
	}
	doc := insertFields(fields, storeTime(m.now()))
	oid := primitive.NewObjectID()
	doc[document.FieldID] = oid
	if _, err := col.InsertOne(ctx, bson.M(doc)); err != nil {
		return "", storeErr("insert", err)
	}
	return oid.Hex(), nil
}

func (m *MongoRepo) Update(ctx context.Context, coll, id string, fields document.Document) (bool, error) {
	if err := checkCollection(coll); err != nil {
		return false, err
	}
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	col, err := m.collection(ctx, coll)
	if err != nil {
		return false, err
	}
	set := updateFields(fields, storeTime(m.now()))
	res, err := col.UpdateOne(ctx, bson.M{document.FieldID: oid}, bson.M{"$set": bson.M(set)})
	if err != nil {
		return false, storeErr("update", err)
	}
	return res.MatchedCount > 0, nil
}

func (m *MongoRepo) Delete(ctx context.Context, coll, id string) (bool, error) {
	if err := checkCollection(coll); err != nil {
		return false, err
	}
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	col, err := m.collection(ctx, coll)
	if err != nil {
		return false, err
	}
	if _, err := col.DeleteOne(ctx, bson.M{document.FieldID: oid}); err != nil {
		return false, storeErr("delete", err)
	}
	return true, nil
}

func (m *MongoRepo) Count(ctx context.Context, coll string, filter Filter) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	col, err := m.collection(ctx, coll)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, bsonFilter(filter))
	if err != nil {
		return 0, storeErr("count", err)
	}
	return n, nil
}

func (m *MongoRepo) FindByIDs(ctx context.Context, coll string, ids []primitive.ObjectID) ([]document.Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	col, err := m.collection(ctx, coll)
	if err != nil {
		return nil, err
	}
	cur, err := col.Find(ctx, bson.M{document.FieldID: bson.M{"$in": ids}})
	if err != nil {
		return nil, storeErr("find_in", err)
	}
	docs, err := decodeAll(ctx, cur)
	if err != nil {
		return nil, storeErr("decode", err)
	}
	return docs, nil
}

func (m *MongoRepo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.opTimeout)
	defer cancel()
	db, err := m.db.Database(ctx)
	if err != nil {
		return storeErr("connect", err)
	}
	if err := db.Client().Ping(ctx, nil); err != nil {
		return storeErr("ping", err)
	}
	return nil
}
