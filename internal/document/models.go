package document

import "time"

// Field names shared by every stored kind.
const (
	FieldID        = "_id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// Document is one schema-less record as read from or written to the store.
// Values are whatever the store driver produced (ObjectIDs, timestamps, decimals,
// nested maps and slices); use codec.Normalize before handing it to a client.
type Document map[string]interface{}

// ID returns the raw identifier value, or nil.
func (d Document) ID() interface{} {
	return d[FieldID]
}

// String returns the field as a string when it is one.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Bool treats an absent or non-boolean field as false.
func (d Document) Bool(field string) bool {
	b, _ := d[field].(bool)
	return b
}

// Time returns the field when it holds a time.Time.
func (d Document) Time(field string) (time.Time, bool) {
	t, ok := d[field].(time.Time)
	return t, ok
}

// Clone returns a shallow copy; nested values are shared.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
