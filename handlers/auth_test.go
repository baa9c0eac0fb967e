package handlers

import (
	"net/http"
	"testing"

	"github.com/Ayush22-04/xetor-backen/internal/sessions"
	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLogin_JSON(t *testing.T) {
	f := newFixture(t)
	code, body := f.doJSON(t, http.MethodPost, "/admin/login", map[string]string{"username": testAdmin, "password": testPassword}, "")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])
	require.Equal(t, "Bearer", body["token_type"])
	require.EqualValues(t, 900, body["expires_in"])
	user := body["user"].(map[string]interface{})
	require.Equal(t, testAdmin, user["username"])
	require.NotContains(t, user, "password")
}

func TestLogin_Form(t *testing.T) {
	f := newFixture(t)
	code, body := f.do(t, http.MethodPost, "/admin/login", "application/x-www-form-urlencoded",
		urlencoded("username", testAdmin, "password", testPassword), "")
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, body["access_token"])
}

func TestLogin_Rejections(t *testing.T) {
	f := newFixture(t)
	code, _ := f.doJSON(t, http.MethodPost, "/admin/login", map[string]string{"username": testAdmin, "password": "nope"}, "")
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = f.doJSON(t, http.MethodPost, "/admin/login", map[string]string{"username": "ghost", "password": testPassword}, "")
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = f.doJSON(t, http.MethodPost, "/admin/login", map[string]string{"username": testAdmin}, "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	f := newFixture(t)
	code, _ := f.doJSON(t, http.MethodGet, "/admin/collections", nil, "")
	require.Equal(t, http.StatusUnauthorized, code)
	code, _ = f.doJSON(t, http.MethodGet, "/admin/collections", nil, "garbage")
	require.Equal(t, http.StatusUnauthorized, code)

	access, _ := f.login(t)
	code, _ = f.doJSON(t, http.MethodGet, "/admin/collections", nil, access)
	require.Equal(t, http.StatusOK, code)
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newFixture(t)
	_, refresh := f.login(t)

	code, body := f.doJSON(t, http.MethodPost, "/admin/refresh", map[string]string{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusOK, code)
	next := body["refresh_token"].(string)
	require.NotEqual(t, refresh, next)
	require.NotEmpty(t, body["access_token"])

	// the consumed token is no longer valid
	code, _ = f.doJSON(t, http.MethodPost, "/admin/refresh", map[string]string{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusUnauthorized, code)

	code, _ = f.doJSON(t, http.MethodPost, "/admin/refresh", map[string]string{}, "")
	require.Equal(t, http.StatusBadRequest, code)
}

func TestRefresh_DeletedAccount(t *testing.T) {
	f := newFixture(t)
	_, refresh := f.login(t)
	require.NoError(t, f.users.Delete(t.Context(), f.adminID))

	code, _ := f.doJSON(t, http.MethodPost, "/admin/refresh", map[string]string{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusUnauthorized, code)
}

func TestLogout_RevokesTokens(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	sessions.SetBlacklistClient(redis.NewClient(&redis.Options{Addr: m.Addr()}))
	defer sessions.SetBlacklistClient(nil)

	f := newFixture(t)
	access, refresh := f.login(t)

	code, _ := f.doJSON(t, http.MethodPost, "/admin/logout", map[string]string{"refresh_token": refresh}, access)
	require.Equal(t, http.StatusOK, code)

	code, body := f.doJSON(t, http.MethodGet, "/admin/collections", nil, access)
	require.Equal(t, http.StatusUnauthorized, code)
	require.Equal(t, "token revoked", body["error"])

	code, _ = f.doJSON(t, http.MethodPost, "/admin/refresh", map[string]string{"refresh_token": refresh}, "")
	require.Equal(t, http.StatusUnauthorized, code)

	// a forged bearer is not written to the blacklist
	code, _ = f.doJSON(t, http.MethodPost, "/admin/logout", map[string]string{"refresh_token": "x"}, "forged")
	require.Equal(t, http.StatusOK, code)
	require.False(t, m.Exists("blacklist:access:forged"))
}
