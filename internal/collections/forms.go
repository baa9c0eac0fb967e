package collections

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/Ayush22-04/xetor-backen/internal/document"
)

// ErrNoForm is returned by ParseForm for kinds without a dedicated form layout
// when the generic "data" field is missing.
var ErrNoForm = errors.New("collection has no form layout")

// DataField carries a raw JSON object for kinds edited through the generic editor.
const DataField = "data"

// ParseForm converts an admin form submission into fields to store.
// Checkbox flags use presence-implies-true: any non-empty value means true.
// A non-empty "data" field always takes precedence and is parsed as a JSON object;
// partial must be false on creates so required fields are enforced for it too.
func (d *Descriptor) ParseForm(form url.Values, partial bool) (document.Document, error) {
	if raw := strings.TrimSpace(form.Get(DataField)); raw != "" || d.parseForm == nil {
		if raw == "" {
			return nil, ErrNoForm
		}
		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fieldErr(DataField, "invalid JSON: %v", err)
		}
		doc, err := d.Prepare(fields, partial)
		if err != nil {
			return nil, err
		}
		if err := requireDoc(doc, d.formRequired, partial); err != nil {
			return nil, err
		}
		return doc, nil
	}
	doc, err := d.parseForm(form)
	if err != nil {
		return nil, err
	}
	d.convertRefs(doc)
	return doc, nil
}

// requireDoc checks string fields of an already decoded object. With partial set,
// absent fields pass but present ones may not be blank.
func requireDoc(doc document.Document, fields []string, partial bool) error {
	verr := &ValidationError{}
	for _, f := range fields {
		v, present := doc[f]
		if partial && !present {
			continue
		}
		if s, ok := v.(string); !ok || strings.TrimSpace(s) == "" {
			verr.add(f, "is required")
		}
	}
	return verr.orNil()
}

func checked(form url.Values, field string) bool {
	return form.Get(field) != ""
}

func requireFields(form url.Values, fields ...string) error {
	verr := &ValidationError{}
	for _, f := range fields {
		if strings.TrimSpace(form.Get(f)) == "" {
			verr.add(f, "is required")
		}
	}
	return verr.orNil()
}

func parseHeroForm(form url.Values) (document.Document, error) {
	return document.Document{
		"title":       form.Get("title"),
		FieldIsActive: checked(form, FieldIsActive),
	}, nil
}

func parseCategoryForm(form url.Values) (document.Document, error) {
	return document.Document{
		FieldName:      form.Get(FieldName),
		"description":  form.Get("description"),
		FieldIsActive:  checked(form, FieldIsActive),
		FieldIsPopular: checked(form, FieldIsPopular),
	}, nil
}

func parseContactForm(form url.Values) (document.Document, error) {
	if err := requireFields(form, "full_name", "email", "message"); err != nil {
		return nil, err
	}
	return document.Document{
		"full_name":    form.Get("full_name"),
		"email":        form.Get("email"),
		"phone":        form.Get("phone"),
		"message":      form.Get("message"),
		FieldProductID: form.Get(FieldProductID),
	}, nil
}

func parseTestimonialForm(form url.Values) (document.Document, error) {
	if err := requireFields(form, FieldName, "content"); err != nil {
		return nil, err
	}
	var r interface{}
	if raw := strings.TrimSpace(form.Get(FieldRating)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 5 {
			return nil, fieldErr(FieldRating, "must be an integer between 1 and 5")
		}
		r = n
	}
	return document.Document{
		FieldName:     form.Get(FieldName),
		"role":        form.Get("role"),
		"content":     form.Get("content"),
		FieldRating:   r,
		"email":       form.Get("email"),
		FieldIsActive: checked(form, FieldIsActive),
	}, nil
}

func parseProductForm(form url.Values) (document.Document, error) {
	var p int64
	if raw := strings.TrimSpace(form.Get(FieldPrice)); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			return nil, fieldErr(FieldPrice, "must be a non-negative integer")
		}
		p = n
	}
	doc := document.Document{
		FieldName:      form.Get(FieldName),
		"description":  form.Get("description"),
		FieldPrice:     p,
		FieldIsActive:  checked(form, FieldIsActive),
		FieldIsPopular: checked(form, FieldIsPopular),
	}
	// an empty category select leaves the stored reference untouched
	if cid := strings.TrimSpace(form.Get(FieldCategoryID)); cid != "" {
		doc[FieldCategoryID] = cid
	}
	return doc, nil
}
