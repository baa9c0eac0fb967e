package collections

import (
	"encoding/json"
	"errors"
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsPublic_AllowList(t *testing.T) {
	for _, name := range []string{"categories", "products", "contact-messages", "testimonials"} {
		require.True(t, IsPublic(name), name)
	}
	for _, name := range []string{"hero-banners", "admin-users", "admin_users", "home_heroes", "contact_messages", "", "users", "Products"} {
		require.False(t, IsPublic(name), name)
	}
	require.Equal(t, []string{"categories", "contact-messages", "products", "testimonials"}, PublicNames())
	require.Equal(t, []string{"categories", "contact-messages", "hero-banners", "products", "testimonials"}, AdminNames())
}

func TestDescriptorLookups(t *testing.T) {
	d, ok := Public(ContactMessages)
	require.True(t, ok)
	require.Equal(t, StorageContactMessages, d.Storage)
	require.Equal(t, "product_name", d.References[0].As)
	require.Equal(t, "name", d.References[0].LabelField)

	_, ok = Public(HeroBanners)
	require.False(t, ok)
	h, ok := Admin(HeroBanners)
	require.True(t, ok)
	require.Equal(t, "hero_image", h.ImageField)

	require.True(t, IsStorage(StorageAdminUsers))
	require.False(t, IsStorage("sessions"))
	byS, ok := ByStorage(StorageProducts)
	require.True(t, ok)
	require.Equal(t, Products, byS.Name)
	require.Equal(t, "category_name", byS.References[0].As)
}

func TestPrepare_ContactRequiredFields(t *testing.T) {
	d, _ := Public(ContactMessages)
	_, err := d.Prepare(map[string]interface{}{"full_name": "Ann", "email": "  "}, false)
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "email")
	require.Contains(t, verr.Fields, "message")
	require.NotContains(t, verr.Fields, "full_name")

	// partial writes only check what is present
	out, err := d.Prepare(map[string]interface{}{"phone": "123"}, true)
	require.NoError(t, err)
	require.Equal(t, "123", out["phone"])
	_, err = d.Prepare(map[string]interface{}{"message": ""}, true)
	require.ErrorIs(t, err, ErrValidation)
}

func TestPrepare_RatingBounds(t *testing.T) {
	d, _ := Public(Testimonials)
	for _, bad := range []interface{}{0.0, 6.0, 4.5, "5", true} {
		_, err := d.Prepare(map[string]interface{}{"name": "A", "rating": bad}, false)
		require.ErrorIs(t, err, ErrValidation, "%v", bad)
	}
	for _, good := range []interface{}{1.0, 5.0, json.Number("3"), nil} {
		out, err := d.Prepare(map[string]interface{}{"name": "A", "rating": good}, false)
		require.NoError(t, err, "%v", good)
		if good != nil {
			require.IsType(t, 0, out["rating"])
		}
	}
}

func TestPrepare_PriceAndBooleans(t *testing.T) {
	d, _ := Public(Products)

	out, err := d.Prepare(map[string]interface{}{"name": "P", "price": 1200.0, "is_popular": true}, false)
	require.NoError(t, err)
	require.Equal(t, int64(1200), out["price"])
	require.Equal(t, true, out["is_popular"])

	for _, bad := range []interface{}{-1.0, 9.99, "10", nil} {
		_, err := d.Prepare(map[string]interface{}{"price": bad}, false)
		require.ErrorIs(t, err, ErrValidation, "%v", bad)
	}

	_, err = d.Prepare(map[string]interface{}{"is_active": "true"}, false)
	require.ErrorIs(t, err, ErrValidation)

	out, err = d.Prepare(map[string]interface{}{"is_active": nil}, false)
	require.NoError(t, err)
	require.Equal(t, false, out["is_active"])
}

func TestPrepare_StripsServerFieldsAndConvertsRefs(t *testing.T) {
	d, _ := Public(Products)
	cat := primitive.NewObjectID()
	out, err := d.Prepare(map[string]interface{}{
		"_id": "x", "id": "y", "created_at": "z", "updated_at": "w",
		"name": "P", "category_id": cat.Hex(),
	}, false)
	require.NoError(t, err)
	require.NotContains(t, out, "_id")
	require.NotContains(t, out, "id")
	require.NotContains(t, out, "created_at")
	require.NotContains(t, out, "updated_at")
	require.Equal(t, cat, out["category_id"])

	out, err = d.Prepare(map[string]interface{}{"category_id": "legacy-slug"}, false)
	require.NoError(t, err)
	require.Equal(t, "legacy-slug", out["category_id"])

	out, err = d.Prepare(map[string]interface{}{"category_id": ""}, false)
	require.NoError(t, err)
	require.Nil(t, out["category_id"])
}

func TestParseForm_PresenceImpliesTrue(t *testing.T) {
	d, _ := Admin(Categories)
	doc, err := d.ParseForm(url.Values{"name": {"Chairs"}, "is_active": {"on"}, "is_popular": {""}}, false)
	require.NoError(t, err)
	require.Equal(t, "Chairs", doc["name"])
	require.Equal(t, true, doc["is_active"])
	require.Equal(t, false, doc["is_popular"])

	h, _ := Admin(HeroBanners)
	doc, err = h.ParseForm(url.Values{"title": {"Summer"}, "is_active": {"0"}}, false)
	require.NoError(t, err)
	// any non-empty value counts as checked
	require.Equal(t, true, doc["is_active"])
}

func TestParseForm_Product(t *testing.T) {
	d, _ := Admin(Products)
	cat := primitive.NewObjectID()

	doc, err := d.ParseForm(url.Values{"name": {"Desk"}, "price": {""}, "category_id": {cat.Hex()}}, false)
	require.NoError(t, err)
	require.Equal(t, int64(0), doc["price"])
	require.Equal(t, cat, doc["category_id"])

	doc, err = d.ParseForm(url.Values{"name": {"Desk"}, "price": {"250"}}, false)
	require.NoError(t, err)
	require.Equal(t, int64(250), doc["price"])
	require.NotContains(t, doc, "category_id")

	_, err = d.ParseForm(url.Values{"price": {"12.5"}}, false)
	require.ErrorIs(t, err, ErrValidation)
	_, err = d.ParseForm(url.Values{"price": {"-3"}}, false)
	require.ErrorIs(t, err, ErrValidation)
}

func TestParseForm_TestimonialAndContact(t *testing.T) {
	d, _ := Admin(Testimonials)
	_, err := d.ParseForm(url.Values{"name": {"A"}}, false)
	require.ErrorIs(t, err, ErrValidation)

	doc, err := d.ParseForm(url.Values{"name": {"A"}, "content": {"Great"}, "rating": {""}}, false)
	require.NoError(t, err)
	require.Nil(t, doc["rating"])

	doc, err = d.ParseForm(url.Values{"name": {"A"}, "content": {"Great"}, "rating": {"5"}}, false)
	require.NoError(t, err)
	require.Equal(t, 5, doc["rating"])

	_, err = d.ParseForm(url.Values{"name": {"A"}, "content": {"Great"}, "rating": {"6"}}, false)
	require.ErrorIs(t, err, ErrValidation)

	c, _ := Admin(ContactMessages)
	_, err = c.ParseForm(url.Values{"full_name": {"Ann"}, "email": {"a@b.c"}}, false)
	require.ErrorIs(t, err, ErrValidation)
	doc, err = c.ParseForm(url.Values{"full_name": {"Ann"}, "email": {"a@b.c"}, "message": {"hi"}, "product_id": {""}}, false)
	require.NoError(t, err)
	require.Nil(t, doc["product_id"])
}

func TestParseForm_DataField(t *testing.T) {
	d, _ := Admin(HeroBanners)
	doc, err := d.ParseForm(url.Values{"data": {`{"title":"T","is_active":true,"_id":"nope"}`}}, false)
	require.NoError(t, err)
	require.Equal(t, "T", doc["title"])
	require.NotContains(t, doc, "_id")

	_, err = d.ParseForm(url.Values{"data": {`{not json`}}, false)
	require.ErrorIs(t, err, ErrValidation)
}

func TestParseForm_DataFieldEnforcesRequiredOnCreate(t *testing.T) {
	c, _ := Admin(ContactMessages)
	_, err := c.ParseForm(url.Values{"data": {`{"phone":"1"}`}}, false)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "full_name")
	require.Contains(t, verr.Fields, "message")

	tm, _ := Admin(Testimonials)
	_, err = tm.ParseForm(url.Values{"data": {`{"rating":3}`}}, false)
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")
	require.Contains(t, verr.Fields, "content")

	// updates may touch a subset, but not blank a required field
	doc, err := tm.ParseForm(url.Values{"data": {`{"rating":3}`}}, true)
	require.NoError(t, err)
	require.Equal(t, 3, doc["rating"])
	_, err = tm.ParseForm(url.Values{"data": {`{"content":" "}`}}, true)
	require.ErrorIs(t, err, ErrValidation)
}

func TestIntegral_Int64Bounds(t *testing.T) {
	_, ok := integral(math.Pow(2, 63))
	require.False(t, ok, "2^63 does not fit in int64")

	n, ok := integral(float64(1 << 62))
	require.True(t, ok)
	require.Equal(t, int64(1<<62), n)

	n, ok = integral(float64(math.MinInt64))
	require.True(t, ok)
	require.Equal(t, int64(math.MinInt64), n)

	_, ok = integral(2.5)
	require.False(t, ok)
}
