package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/document"
	"github.com/Ayush22-04/xetor-backen/internal/document/repository"
	"github.com/Ayush22-04/xetor-backen/internal/document/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type stubNotifier struct{ ok bool }

func (s *stubNotifier) ContactReceived(ctx context.Context, msg document.Document) bool { return s.ok }

func setup(t *testing.T, n service.Notifier) (*gin.Engine, *repository.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryRepo()
	g := gin.New()
	RegisterRoutes(g.Group("/api"), service.New(repo, n))
	return g, repo
}

func do(t *testing.T, g *gin.Engine, method, path, body string) (int, []byte) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w.Code, w.Body.Bytes()
}

func decodeMap(t *testing.T, b []byte) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func decodeList(t *testing.T, b []byte) []map[string]interface{} {
	t.Helper()
	var l []map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &l))
	return l
}

func TestHealth(t *testing.T) {
	g, repo := setup(t, nil)
	repo.Unavailable = true
	code, body := do(t, g, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "ok", decodeMap(t, body)["status"])
}

func TestRegistryAllowList(t *testing.T) {
	g, _ := setup(t, nil)
	for _, name := range []string{"categories", "products", "contact-messages", "testimonials"} {
		code, _ := do(t, g, http.MethodGet, "/api/"+name, "")
		require.Equal(t, http.StatusOK, code, name)
	}
	for _, name := range []string{"hero-banners", "admin-users", "admin_users", "home_heroes", "users", "contact_messages"} {
		code, body := do(t, g, http.MethodGet, "/api/"+name, "")
		require.Equal(t, http.StatusNotFound, code, name)
		require.Equal(t, "Invalid collection", decodeMap(t, body)["error"])

		code, body = do(t, g, http.MethodPost, "/api/"+name, `{"a":1}`)
		require.Equal(t, http.StatusNotFound, code, name)
		require.Equal(t, "Invalid collection", decodeMap(t, body)["error"])
	}
}

func TestCRUD(t *testing.T) {
	g, _ := setup(t, nil)

	code, body := do(t, g, http.MethodPost, "/api/products", `{"name":"Desk","description":"oak","price":1200}`)
	require.Equal(t, http.StatusCreated, code)
	created := decodeMap(t, body)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	require.NotContains(t, created, "email_sent")

	code, body = do(t, g, http.MethodGet, "/api/products/"+id, "")
	require.Equal(t, http.StatusOK, code)
	doc := decodeMap(t, body)
	require.Equal(t, id, doc["_id"])
	require.Equal(t, "-", doc["category_name"])
	createdAt, err := time.Parse(time.RFC3339Nano, doc["created_at"].(string))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	code, body = do(t, g, http.MethodPut, "/api/products/"+id, `{"name":"X"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, decodeMap(t, body)["updated"])

	_, body = do(t, g, http.MethodGet, "/api/products/"+id, "")
	doc = decodeMap(t, body)
	require.Equal(t, "X", doc["name"])
	require.Equal(t, "oak", doc["description"])
	require.Equal(t, 1200.0, doc["price"])
	updatedAt, err := time.Parse(time.RFC3339Nano, doc["updated_at"].(string))
	require.NoError(t, err)
	require.True(t, updatedAt.After(createdAt))
	require.Equal(t, createdAt.Format(time.RFC3339Nano), doc["created_at"])

	code, body = do(t, g, http.MethodDelete, "/api/products/"+id, "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, true, decodeMap(t, body)["deleted"])

	code, _ = do(t, g, http.MethodGet, "/api/products/"+id, "")
	require.Equal(t, http.StatusNotFound, code)

	// delete is idempotent
	code, _ = do(t, g, http.MethodDelete, "/api/products/"+id, "")
	require.Equal(t, http.StatusOK, code)
}

func TestErrors(t *testing.T) {
	g, repo := setup(t, nil)

	code, body := do(t, g, http.MethodGet, "/api/products/not-an-id", "")
	require.Equal(t, http.StatusNotFound, code)
	require.Equal(t, "Invalid id", decodeMap(t, body)["error"])

	code, _ = do(t, g, http.MethodPut, "/api/products/"+primitive.NewObjectID().Hex(), `{"name":"X"}`)
	require.Equal(t, http.StatusNotFound, code)

	code, _ = do(t, g, http.MethodPost, "/api/products", `[1,2]`)
	require.Equal(t, http.StatusBadRequest, code)

	code, body = do(t, g, http.MethodPost, "/api/products", `{"price":"cheap"}`)
	require.Equal(t, http.StatusBadRequest, code)
	fields := decodeMap(t, body)["fields"].(map[string]interface{})
	require.Contains(t, fields, "price")

	repo.Unavailable = true
	code, body = do(t, g, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusNotFound, code)
	require.Contains(t, decodeMap(t, body), "error")
	code, _ = do(t, g, http.MethodPost, "/api/testimonials", `{"name":"a"}`)
	require.Equal(t, http.StatusNotFound, code)
}

func TestRatingBoundsOverHTTP(t *testing.T) {
	g, _ := setup(t, nil)
	for _, r := range []string{"0", "6"} {
		code, _ := do(t, g, http.MethodPost, "/api/testimonials", `{"name":"A","content":"c","rating":`+r+`}`)
		require.Equal(t, http.StatusBadRequest, code, r)
	}
	for _, r := range []string{"1", "5"} {
		code, _ := do(t, g, http.MethodPost, "/api/testimonials", `{"name":"A","content":"c","rating":`+r+`}`)
		require.Equal(t, http.StatusCreated, code, r)
	}
}

func TestPopularity(t *testing.T) {
	g, _ := setup(t, nil)
	for _, p := range []string{
		`{"name":"P1","is_popular":true}`,
		`{"name":"P2","is_popular":false}`,
		`{"name":"P3","is_popular":true}`,
	} {
		code, _ := do(t, g, http.MethodPost, "/api/products", p)
		require.Equal(t, http.StatusCreated, code)
	}
	for _, c := range []string{`{"name":"C1","is_popular":true}`, `{"name":"C2"}`} {
		code, _ := do(t, g, http.MethodPost, "/api/categories", c)
		require.Equal(t, http.StatusCreated, code)
	}

	names := func(l []map[string]interface{}) []string {
		var out []string
		for _, d := range l {
			out = append(out, d["name"].(string))
		}
		return out
	}

	code, body := do(t, g, http.MethodGet, "/api/products/popular", "")
	require.Equal(t, http.StatusOK, code)
	require.ElementsMatch(t, []string{"P1", "P3"}, names(decodeList(t, body)))

	code, body = do(t, g, http.MethodGet, "/api/categories/popular", "")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, []string{"C1"}, names(decodeList(t, body)))

	code, body = do(t, g, http.MethodGet, "/api/collections/popular", "")
	require.Equal(t, http.StatusOK, code)
	var both map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &both))
	require.ElementsMatch(t, []string{"C1", "C2"}, names(both["categories"]))
	require.ElementsMatch(t, []string{"P1", "P3"}, names(both["products"]))

	// the plain list still sees everything
	code, body = do(t, g, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, decodeList(t, body), 2)
}

func TestContactMessageDecoupling(t *testing.T) {
	n := &stubNotifier{ok: false}
	g, _ := setup(t, n)
	msg := `{"full_name":"Ann","email":"ann@example.com","message":"hello"}`

	code, body := do(t, g, http.MethodPost, "/api/contact-messages", msg)
	require.Equal(t, http.StatusCreated, code)
	res := decodeMap(t, body)
	require.NotEmpty(t, res["id"])
	require.Equal(t, false, res["email_sent"])

	n.ok = true
	code, body = do(t, g, http.MethodPost, "/api/contact-messages", msg)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, true, decodeMap(t, body)["email_sent"])

	code, body = do(t, g, http.MethodPost, "/api/contact-messages?send_email=0", msg)
	require.Equal(t, http.StatusCreated, code)
	require.Equal(t, false, decodeMap(t, body)["email_sent"])

	code, body = do(t, g, http.MethodPost, "/api/contact-messages", `{"full_name":"Ann"}`)
	require.Equal(t, http.StatusBadRequest, code)
	require.Equal(t, "Validation failed", decodeMap(t, body)["error"])

	code, body = do(t, g, http.MethodGet, "/api/contact-messages", "")
	require.Equal(t, http.StatusOK, code)
	list := decodeList(t, body)
	require.Len(t, list, 3)
	require.Equal(t, "-", list[0]["product_name"])
}
