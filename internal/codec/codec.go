// Package codec converts store-native values into transport-safe JSON values.
package codec

import (
	"errors"
	"math/big"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned by ParseID for strings that are not 24-char hex ObjectIDs.
var ErrInvalidID = errors.New("invalid id")

// TimeLayout is used for every timestamp leaving the service.
const TimeLayout = time.RFC3339Nano

// Normalize converts v recursively: ObjectIDs become hex strings, timestamps
// become RFC 3339 strings in UTC, decimals become exact decimal strings. Maps
// and slices are copied, never mutated. Already-normalized input is returned
// unchanged, so Normalize(Normalize(x)) equals Normalize(x).
func Normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return t.Hex()
	case *primitive.ObjectID:
		if t == nil {
			return nil
		}
		return t.Hex()
	case time.Time:
		return formatTime(t)
	case *time.Time:
		if t == nil {
			return nil
		}
		return formatTime(*t)
	case primitive.DateTime:
		return formatTime(t.Time())
	case primitive.Timestamp:
		return formatTime(time.Unix(int64(t.T), 0))
	case primitive.Decimal128:
		return t.String()
	case *big.Float:
		if t == nil {
			return nil
		}
		return t.Text('f', -1)
	case *big.Int:
		if t == nil {
			return nil
		}
		return t.String()
	case *big.Rat:
		if t == nil {
			return nil
		}
		return ratString(t)
	case document.Document:
		return normalizeMap(t)
	case bson.M:
		return normalizeMap(t)
	case map[string]interface{}:
		return normalizeMap(t)
	case bson.D:
		out := make(map[string]interface{}, len(t))
		for _, e := range t {
			out[e.Key] = Normalize(e.Value)
		}
		return out
	case bson.A:
		return normalizeSlice(t)
	case []interface{}:
		return normalizeSlice(t)
	case []document.Document:
		out := make([]interface{}, len(t))
		for i, d := range t {
			out[i] = normalizeMap(d)
		}
		return out
	case []primitive.ObjectID:
		out := make([]interface{}, len(t))
		for i, id := range t {
			out[i] = id.Hex()
		}
		return out
	}
	return v
}

// NormalizeDocument normalizes a single document into a plain JSON object.
func NormalizeDocument(d document.Document) map[string]interface{} {
	if d == nil {
		return nil
	}
	return normalizeMap(d)
}

// NormalizeDocuments normalizes a batch, preserving order.
func NormalizeDocuments(docs []document.Document) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		out = append(out, normalizeMap(d))
	}
	return out
}

func normalizeMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = Normalize(v)
	}
	return out
}

func normalizeSlice(s []interface{}) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = Normalize(v)
	}
	return out
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ratString renders a rational exactly when it has a finite decimal expansion,
// falling back to "a/b" otherwise.
func ratString(r *big.Rat) string {
	if r.IsInt() {
		return r.Num().String()
	}
	d := new(big.Int).Set(r.Denom())
	digits := 0
	for _, p := range []int64{2, 5} {
		n := 0
		for {
			q, m := new(big.Int).QuoRem(d, big.NewInt(p), new(big.Int))
			if m.Sign() != 0 {
				break
			}
			d = q
			n++
		}
		if n > digits {
			digits = n
		}
	}
	if d.Cmp(big.NewInt(1)) != 0 {
		return r.RatString()
	}
	return r.FloatString(digits)
}

// ParseID parses the canonical hex form of a store identifier.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// IDString returns the transport form of an identifier-like value: ObjectIDs
// and non-empty strings. Anything else reports false.
func IDString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex(), true
	case *primitive.ObjectID:
		if t == nil {
			return "", false
		}
		return t.Hex(), true
	case string:
		return t, t != ""
	}
	return "", false
}
