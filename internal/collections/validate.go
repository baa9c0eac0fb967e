package collections

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Ayush22-04/xetor-backen/internal/codec"
	"github.com/Ayush22-04/xetor-backen/internal/document"
)

// ErrValidation is the sentinel every ValidationError unwraps to.
var ErrValidation = errors.New("validation failed")

// ValidationError carries per-field messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// fieldCheck validates and possibly converts one field of a JSON write.
type fieldCheck struct {
	field string
	fn    func(v interface{}) (interface{}, string)
}

func strictBool(field string) fieldCheck {
	return fieldCheck{field: field, fn: func(v interface{}) (interface{}, string) {
		if v == nil {
			return false, ""
		}
		b, ok := v.(bool)
		if !ok {
			return nil, "must be a boolean"
		}
		return b, ""
	}}
}

func rating(field string) fieldCheck {
	return fieldCheck{field: field, fn: func(v interface{}) (interface{}, string) {
		if v == nil {
			return nil, ""
		}
		n, ok := integral(v)
		if !ok || n < 1 || n > 5 {
			return nil, "must be an integer between 1 and 5"
		}
		return int(n), ""
	}}
}

func price(field string) fieldCheck {
	return fieldCheck{field: field, fn: func(v interface{}) (interface{}, string) {
		n, ok := integral(v)
		if !ok || n < 0 {
			return nil, "must be a non-negative integer"
		}
		return n, ""
	}}
}

// integral accepts JSON numbers and Go integers with no fractional part.
func integral(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || t >= math.MaxInt64 || t < math.MinInt64 {
			return 0, false
		}
		return int64(t), true
	case json.Number:
		n, err := t.Int64()
		return n, err == nil
	}
	return 0, false
}

// Prepare validates a JSON-originated write and returns the fields to store.
// Server-managed fields are dropped, known booleans must be real booleans,
// rating and price are range-checked and reference fields holding a valid id
// string are converted to store identifiers. When partial is set, required
// fields are only checked if present.
func (d *Descriptor) Prepare(fields map[string]interface{}, partial bool) (document.Document, error) {
	out := make(document.Document, len(fields))
	for k, v := range fields {
		switch k {
		case document.FieldID, "id", document.FieldCreatedAt, document.FieldUpdatedAt:
			continue
		}
		out[k] = v
	}

	verr := &ValidationError{}
	for _, f := range d.required {
		v, present := out[f]
		if partial && !present {
			continue
		}
		if s, ok := v.(string); !ok || strings.TrimSpace(s) == "" {
			verr.add(f, "is required")
		}
	}
	for _, c := range d.checks {
		v, present := out[c.field]
		if !present {
			continue
		}
		conv, msg := c.fn(v)
		if msg != "" {
			verr.add(c.field, msg)
			continue
		}
		out[c.field] = conv
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	d.convertRefs(out)
	return out, nil
}

// convertRefs stores parseable reference strings as identifiers; empty values become null
// and anything else is kept as given (and later resolves to the fallback label).
func (d *Descriptor) convertRefs(doc document.Document) {
	for _, r := range d.References {
		v, present := doc[r.Field]
		if !present {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			doc[r.Field] = nil
			continue
		}
		if id, err := codec.ParseID(s); err == nil {
			doc[r.Field] = id
		}
	}
}

func fieldErr(field, format string, args ...interface{}) error {
	e := &ValidationError{}
	e.add(field, fmt.Sprintf(format, args...))
	return e
}
