// Package resolver attaches human-readable labels for reference fields,
// fetching each target collection once per batch.
package resolver

import (
	"context"

	"github.com/Ayush22-04/xetor-backen/internal/codec"
	"github.com/Ayush22-04/xetor-backen/internal/collections"
	"github.com/Ayush22-04/xetor-backen/internal/document"
	"github.com/Ayush22-04/xetor-backen/pkg/logger"
	"github.com/Ayush22-04/xetor-backen/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fallback is the label for null, dangling or unparseable references.
const Fallback = "-"

// Finder is the batched lookup the resolver needs from the repository.
type Finder interface {
	FindByIDs(ctx context.Context, coll string, ids []primitive.ObjectID) ([]document.Document, error)
}

type Resolver struct {
	finder Finder
}

func New(f Finder) *Resolver {
	return &Resolver{finder: f}
}

// Resolve mutates docs in place: for every reference it sets the label
// attribute and rewrites the reference field to its string form. Lookup
// failures never fail the call; affected documents get the fallback label.
func (r *Resolver) Resolve(ctx context.Context, docs []document.Document, refs ...collections.Reference) {
	if len(docs) == 0 {
		return
	}
	for _, ref := range refs {
		r.resolveOne(ctx, docs, ref)
	}
}

func (r *Resolver) resolveOne(ctx context.Context, docs []document.Document, ref collections.Reference) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, d := range docs {
		if oid, ok := objectID(d[ref.Field]); ok && !seen[oid] {
			seen[oid] = true
			ids = append(ids, oid)
		}
	}

	labels := map[string]string{}
	if len(ids) > 0 {
		found, err := r.finder.FindByIDs(ctx, ref.Target, ids)
		if err != nil {
			logger.Warnf("resolve %s -> %s: %v", ref.Field, ref.Target, err)
			metrics.ResolverLookups.WithLabelValues(ref.Target, "error").Inc()
		} else {
			metrics.ResolverLookups.WithLabelValues(ref.Target, "ok").Inc()
			for _, t := range found {
				key, ok := codec.IDString(t.ID())
				if !ok {
					continue
				}
				if label, ok := t[ref.LabelField].(string); ok && label != "" {
					labels[key] = label
				}
			}
		}
	}

	for _, d := range docs {
		raw, present := d[ref.Field]
		label := Fallback
		if key, ok := codec.IDString(raw); ok {
			d[ref.Field] = key
			if l, hit := labels[key]; hit {
				label = l
			}
		} else if present && raw != nil {
			d[ref.Field] = codec.Normalize(raw)
		}
		d[ref.As] = label
	}
}

// objectID accepts stored ObjectIDs and id strings that parse as one.
func objectID(v interface{}) (primitive.ObjectID, bool) {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t, true
	case string:
		oid, err := codec.ParseID(t)
		return oid, err == nil
	}
	return primitive.NilObjectID, false
}
