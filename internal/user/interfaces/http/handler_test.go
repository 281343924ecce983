package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wyfcoding/ecommerce/internal/user/application"
	"github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/ecommerce/internal/user/infrastructure/security"
	"github.com/wyfcoding/ecommerce/pkg/db/dbtest"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
)

func newRouter(t *testing.T) (*gin.Engine, *security.JWTManager) {
	r, jwtm, _ := newRouterWithService(t)
	return r, jwtm
}

func newRouterWithService(t *testing.T) (*gin.Engine, *security.JWTManager, *application.UserService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := dbtest.Open(t, &domain.User{})
	jwtm := security.NewJWTManager("handler-secret-0123456789", "shop", time.Hour)
	svc := application.NewUserService(mysql.NewUserRepository(gdb), security.NewBcryptHasher(bcrypt.MinCost), jwtm)

	r := gin.New()
	auth := middleware.GinAuth(jwtm)
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), auth, auth, middleware.GinRequireRole(middleware.RoleAdmin))
	return r, jwtm, svc
}

func send(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthFlow(t *testing.T) {
	r, jwtm := newRouter(t)

	w := post(r, "/api/v1/auth/register", `{"email":"eve@example.com","password":"secret1","name":"Eve"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "eve@example.com")

	w = post(r, "/api/v1/auth/register", `{"email":"eve@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = post(r, "/api/v1/auth/login", `{"email":"eve@example.com","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(r, "/api/v1/auth/login", `{"email":"eve@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/api/v1/auth/login", `{"email":"eve@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "access_token")

	token, _, err := jwtm.Issue(1, domain.RoleUser)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Eve")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminUserManagement(t *testing.T) {
	r, _, svc := newRouterWithService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root@example.com", "root-pass"))
	frank, err := svc.Register(ctx, application.RegisterCommand{Email: "frank@example.com", Password: "secret1", Name: "Frank"})
	require.NoError(t, err)
	adminTok, err := svc.Login(ctx, application.LoginCommand{Email: "root@example.com", Password: "root-pass"})
	require.NoError(t, err)
	frankTok, err := svc.Login(ctx, application.LoginCommand{Email: "frank@example.com", Password: "secret1"})
	require.NoError(t, err)
	admin, frankToken := adminTok.AccessToken, frankTok.AccessToken
	frankPath := "/api/v1/admin/users/" + strconv.FormatUint(uint64(frank.ID), 10)

	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodGet, "/api/v1/admin/users", "", "").Code)
	assert.Equal(t, http.StatusForbidden, send(r, http.MethodGet, "/api/v1/admin/users", frankToken, "").Code)

	w := send(r, http.MethodGet, "/api/v1/admin/users?page=1&page_size=10", admin, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "frank@example.com")
	assert.Contains(t, w.Body.String(), `"total":2`)

	w = send(r, http.MethodGet, frankPath, admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Frank")
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodGet, "/api/v1/admin/users/999", admin, "").Code)

	w = send(r, http.MethodPut, frankPath, admin, `{"name":"Franklin"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Franklin")
	assert.Equal(t, http.StatusBadRequest, send(r, http.MethodPut, frankPath, admin, `{"role":"OWNER"}`).Code)

	w = send(r, http.MethodDelete, frankPath, admin, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = post(r, "/api/v1/auth/login", `{"email":"frank@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "deactivated users cannot log in")

	// 记录保留，只是停用
	w = send(r, http.MethodGet, frankPath, admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"active":false`)
}
