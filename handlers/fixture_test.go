package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Ayush22-04/xetor-backen/internal/config"
	"github.com/Ayush22-04/xetor-backen/internal/document/repository"
	"github.com/Ayush22-04/xetor-backen/internal/document/service"
	"github.com/Ayush22-04/xetor-backen/internal/notify"
	"github.com/Ayush22-04/xetor-backen/internal/sessions"
	"github.com/Ayush22-04/xetor-backen/internal/tokens"
	"github.com/Ayush22-04/xetor-backen/internal/upload"
	"github.com/Ayush22-04/xetor-backen/internal/users"
	"github.com/Ayush22-04/xetor-backen/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAdmin    = "root"
	testPassword = "hunter22"
)

type stubUploader struct {
	calls int
	names []string
	err   error
}

func (s *stubUploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	s.calls++
	s.names = append(s.names, filename)
	if s.err != nil {
		return "", s.err
	}
	return "https://img.example/" + filename, nil
}

type stubSender struct {
	to []string
	ok bool
}

func (s *stubSender) Send(ctx context.Context, to, subject, userBody, adminBody string) bool {
	s.to = append(s.to, to)
	return s.ok
}

type fixture struct {
	g        *gin.Engine
	cfg      *config.Config
	users    *users.Service
	sessions *sessions.Service
	repo     *repository.MemoryRepo
	uploader *stubUploader
	sender   *stubSender
	adminID  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{}
	cfg.JWT.Secret = "handler-test-secret-32-bytes-xxxxxx"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour

	f := &fixture{
		cfg:      cfg,
		users:    users.NewService(users.NewMemoryUserRepository(), bcrypt.MinCost),
		sessions: sessions.NewService(sessions.NewMemoryRepository()),
		repo:     repository.NewMemoryRepo(),
		uploader: &stubUploader{},
		sender:   &stubSender{ok: true},
	}
	u, err := f.users.Create(context.Background(), testAdmin, testPassword)
	require.NoError(t, err)
	f.adminID = u.ID.Hex()

	ver := tokens.NewVerifier(cfg.JWT.Secret)
	docs := service.New(f.repo, nil)

	g := gin.New()
	NewAuthHandler(cfg, f.users, f.sessions, ver).Register(g.Group("/"))
	admin := g.Group("/admin", middleware.AuthMiddleware(ver), middleware.RequireRole(tokens.RoleAdmin))
	NewAdminHandler(docs, f.users, f.uploader, notify.NewDispatcher(f.sender), "owner@example.com").Register(admin)
	f.g = g
	return f
}

func (f *fixture) do(t *testing.T, method, path, contentType string, body []byte, bearer string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	f.g.ServeHTTP(w, req)
	var out map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (f *fixture) doJSON(t *testing.T, method, path string, body interface{}, bearer string) (int, map[string]interface{}) {
	t.Helper()
	var raw []byte
	if body != nil {
		var err error
		raw, err = json.Marshal(body)
		require.NoError(t, err)
	}
	return f.do(t, method, path, "application/json", raw, bearer)
}

func (f *fixture) doForm(t *testing.T, method, path string, fields map[string]string, file, filename string, bearer string) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != "" {
		fw, err := mw.CreateFormFile(file, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("not-really-an-image"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return f.do(t, method, path, mw.FormDataContentType(), buf.Bytes(), bearer)
}

// login returns (access, refresh) for the seeded admin.
func (f *fixture) login(t *testing.T) (string, string) {
	t.Helper()
	code, body := f.doJSON(t, http.MethodPost, "/admin/login", map[string]string{"username": testAdmin, "password": testPassword}, "")
	require.Equal(t, http.StatusOK, code, body)
	return body["access_token"].(string), body["refresh_token"].(string)
}

func urlencoded(kv ...string) []byte {
	var parts []string
	for i := 0; i+1 < len(kv); i += 2 {
		parts = append(parts, kv[i]+"="+kv[i+1])
	}
	return []byte(strings.Join(parts, "&"))
}

var _ upload.Uploader = (*stubUploader)(nil)
