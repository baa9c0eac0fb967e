// Package collections is the fixed registry of record kinds: their public and
// storage names, write validation, form parsing and reference fields.
package collections

import (
	"net/url"
	"sort"

	"github.com/Ayush22-04/xetor-backen/internal/document"
)

// Storage collection names.
const (
	StorageCategories      = "categories"
	StorageProducts        = "products"
	StorageContactMessages = "contact_messages"
	StorageTestimonials    = "testimonials"
	StorageHomeHeroes      = "home_heroes"
	StorageAdminUsers      = "admin_users"
)

// Public and admin-facing names.
const (
	Categories      = "categories"
	Products        = "products"
	ContactMessages = "contact-messages"
	Testimonials    = "testimonials"
	HeroBanners     = "hero-banners"
)

// Common field names.
const (
	FieldName       = "name"
	FieldIsActive   = "is_active"
	FieldIsPopular  = "is_popular"
	FieldCategoryID = "category_id"
	FieldProductID  = "product_id"
	FieldRating     = "rating"
	FieldPrice      = "price"
)

// Reference declares a field holding another document's identifier.
type Reference struct {
	Field string
	// Target is the storage collection the identifier points into.
	Target string
	// LabelField is read from the target document; defaults to "name".
	LabelField string
	// As is the attribute receiving the label; defaults to Field minus "_id" plus "_name".
	As string
}

// Descriptor describes one record kind.
type Descriptor struct {
	Name    string
	Storage string
	// Public kinds are reachable through the generic /api/{collection} routes.
	Public bool
	// Admin kinds are manageable through /admin/collections.
	Admin      bool
	References []Reference
	// ImageField receives the uploaded image URL on form writes; empty means no image.
	ImageField string

	required []string
	// formRequired must be non-empty on admin creates, whichever editor submitted them.
	formRequired []string
	checks       []fieldCheck
	parseForm func(form url.Values) (document.Document, error)
}

var all = []*Descriptor{
	{
		Name: Categories, Storage: StorageCategories, Public: true, Admin: true,
		ImageField: "image",
		checks:     []fieldCheck{strictBool(FieldIsActive), strictBool(FieldIsPopular)},
		parseForm:  parseCategoryForm,
	},
	{
		Name: Products, Storage: StorageProducts, Public: true, Admin: true,
		ImageField: "image",
		References: []Reference{{Field: FieldCategoryID, Target: StorageCategories}},
		checks:     []fieldCheck{strictBool(FieldIsActive), strictBool(FieldIsPopular), price(FieldPrice)},
		parseForm:  parseProductForm,
	},
	{
		Name: ContactMessages, Storage: StorageContactMessages, Public: true, Admin: true,
		References: []Reference{{Field: FieldProductID, Target: StorageProducts}},
		required:     []string{"full_name", "email", "message"},
		formRequired: []string{"full_name", "email", "message"},
		parseForm:    parseContactForm,
	},
	{
		Name: Testimonials, Storage: StorageTestimonials, Public: true, Admin: true,
		ImageField:   "image",
		formRequired: []string{FieldName, "content"},
		checks:       []fieldCheck{strictBool(FieldIsActive), rating(FieldRating)},
		parseForm:    parseTestimonialForm,
	},
	{
		Name: HeroBanners, Storage: StorageHomeHeroes, Admin: true,
		ImageField: "hero_image",
		checks:     []fieldCheck{strictBool(FieldIsActive)},
		parseForm:  parseHeroForm,
	},
	{
		Name: "admin-users", Storage: StorageAdminUsers,
	},
}

var (
	byName    = map[string]*Descriptor{}
	byStorage = map[string]*Descriptor{}
)

func init() {
	for _, d := range all {
		for i := range d.References {
			r := &d.References[i]
			if r.LabelField == "" {
				r.LabelField = FieldName
			}
			if r.As == "" {
				r.As = labelAttr(r.Field)
			}
		}
		byName[d.Name] = d
		byStorage[d.Storage] = d
	}
}

func labelAttr(field string) string {
	const suffix = "_id"
	if len(field) > len(suffix) && field[len(field)-len(suffix):] == suffix {
		return field[:len(field)-len(suffix)] + "_name"
	}
	return field + "_name"
}

// IsPublic reports whether name is exposed through the generic public API.
func IsPublic(name string) bool {
	d, ok := byName[name]
	return ok && d.Public
}

// Public returns the descriptor for a public collection name.
func Public(name string) (*Descriptor, bool) {
	d, ok := byName[name]
	if !ok || !d.Public {
		return nil, false
	}
	return d, true
}

// Admin returns the descriptor for an admin-manageable collection name.
func Admin(name string) (*Descriptor, bool) {
	d, ok := byName[name]
	if !ok || !d.Admin {
		return nil, false
	}
	return d, true
}

// ByStorage looks a descriptor up by its storage collection.
func ByStorage(storage string) (*Descriptor, bool) {
	d, ok := byStorage[storage]
	return d, ok
}

// IsStorage reports whether storage is a known storage collection.
func IsStorage(storage string) bool {
	_, ok := byStorage[storage]
	return ok
}

// PublicNames returns the public collection names, sorted.
func PublicNames() []string {
	return names(func(d *Descriptor) bool { return d.Public })
}

// AdminNames returns the admin-manageable collection names, sorted.
func AdminNames() []string {
	return names(func(d *Descriptor) bool { return d.Admin })
}

func names(keep func(*Descriptor) bool) []string {
	var out []string
	for _, d := range all {
		if keep(d) {
			out = append(out, d.Name)
		}
	}
	sort.Strings(out)
	return out
}

// HasForm reports whether the kind has a dedicated admin form layout.
func (d *Descriptor) HasForm() bool {
	return d.parseForm != nil
}
