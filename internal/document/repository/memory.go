package repository

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/document"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-process Repository with the same semantics as MongoRepo.
// Used for tests and when no store is configured.
type MemoryRepo struct {
	mu    sync.RWMutex
	colls map[string]*memColl
	now   func() time.Time
	// Unavailable makes every operation fail with ErrStoreUnavailable.
	Unavailable bool
}

type memColl struct {
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]document.Document
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{colls: map[string]*memColl{}, now: time.Now}
}

// SetClock replaces the time source.
func (m *MemoryRepo) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MemoryRepo) coll(name string) *memColl {
	c, ok := m.colls[name]
	if !ok {
		c = &memColl{docs: map[primitive.ObjectID]document.Document{}}
		m.colls[name] = c
	}
	return c
}

func (m *MemoryRepo) available() error {
	if m.Unavailable {
		return ErrStoreUnavailable
	}
	return nil
}

func matches(d document.Document, f Filter) bool {
	for k, want := range f {
		if !reflect.DeepEqual(d[k], want) {
			return false
		}
	}
	return true
}

func (m *MemoryRepo) List(ctx context.Context, coll string, filter Filter, limit int64) ([]document.Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.available(); err != nil {
		return nil, err
	}
	c := m.colls[coll]
	out := []document.Document{}
	if c == nil {
		return out, nil
	}
	for _, id := range c.order {
		d := c.docs[id]
		if !matches(d, filter) {
			continue
		}
		out = append(out, d.Clone())
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, coll, id string) (document.Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.available(); err != nil {
		return nil, err
	}
	if c := m.colls[coll]; c != nil {
		if d, ok := c.docs[oid]; ok {
			return d.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Create(ctx context.Context, coll string, fields document.Document) (string, error) {
	if err := checkCollection(coll); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.available(); err != nil {
		return "", err
	}
	doc := insertFields(fields, storeTime(m.now()))
	oid := primitive.NewObjectID()
	doc[document.FieldID] = oid
	c := m.coll(coll)
	c.docs[oid] = doc
	c.order = append(c.order, oid)
	return oid.Hex(), nil
}

func (m *MemoryRepo) Update(ctx context.Context, coll, id string, fields document.Document) (bool, error) {
	if err := checkCollection(coll); err != nil {
		return false, err
	}
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.available(); err != nil {
		return false, err
	}
	c := m.colls[coll]
	if c == nil {
		return false, nil
	}
	d, ok := c.docs[oid]
	if !ok {
		return false, nil
	}
	next := d.Clone()
	for k, v := range updateFields(fields, storeTime(m.now())) {
		next[k] = v
	}
	c.docs[oid] = next
	return true, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, coll, id string) (bool, error) {
	if err := checkCollection(coll); err != nil {
		return false, err
	}
	oid, err := parseID(id)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.available(); err != nil {
		return false, err
	}
	c := m.colls[coll]
	if c == nil {
		return true, nil
	}
	if _, ok := c.docs[oid]; ok {
		delete(c.docs, oid)
		for i, o := range c.order {
			if o == oid {
				c.order = append(c.order[:i], c.order[i+1:]...)
				break
			}
		}
	}
	return true, nil
}

func (m *MemoryRepo) Count(ctx context.Context, coll string, filter Filter) (int64, error) {
	docs, err := m.List(ctx, coll, filter, 0)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (m *MemoryRepo) FindByIDs(ctx context.Context, coll string, ids []primitive.ObjectID) ([]document.Document, error) {
	if err := checkCollection(coll); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := m.available(); err != nil {
		return nil, err
	}
	c := m.colls[coll]
	var out []document.Document
	if c == nil {
		return out, nil
	}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if d, ok := c.docs[id]; ok {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (m *MemoryRepo) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.available()
}
