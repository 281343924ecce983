package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/ecommerce/internal/cart/application"
	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	cartmysql "github.com/wyfcoding/ecommerce/internal/cart/infrastructure/persistence/mysql"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/ecommerce/internal/catalog/infrastructure/persistence/mysql"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	usermysql "github.com/wyfcoding/ecommerce/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/ecommerce/pkg/db/dbtest"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
)

type tokenTable map[string]*middleware.Principal

func (t tokenTable) Verify(token string) (*middleware.Principal, error) {
	if p, ok := t[token]; ok {
		return p, nil
	}
	return nil, errors.New("unknown token")
}

func setup(t *testing.T) (*gin.Engine, uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := dbtest.Open(t, &userdomain.User{}, &catalogdomain.Product{}, &domain.Cart{}, &domain.CartItem{})
	ctx := context.Background()

	users := usermysql.NewUserRepository(gdb)
	alice := userdomain.NewUser("alice@example.com", "Alice", "hash")
	bob := userdomain.NewUser("bob@example.com", "Bob", "hash")
	require.NoError(t, users.Save(ctx, alice))
	require.NoError(t, users.Save(ctx, bob))

	products := catalogmysql.NewProductRepository(gdb)
	p := &catalogdomain.Product{Name: "Mug", Price: decimal.RequireFromString("8.00"), StockQuantity: 3}
	require.NoError(t, products.Save(ctx, p))

	svc := application.NewCartService(gdb, cartmysql.NewCartRepository(gdb), products, users, nil)
	verifier := tokenTable{
		"alice": {UserID: alice.ID, Role: "USER"},
		"bob":   {UserID: bob.ID, Role: "USER"},
	}
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), middleware.GinAuth(verifier))
	return r, p.ID
}

func do(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCartRoutes(t *testing.T) {
	r, productID := setup(t)
	body := func(q int) string {
		return `{"product_id":` + itoa(productID) + `,"quantity":` + itoa(uint(q)) + `}`
	}

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/v1/cart", "", "").Code)

	w := do(r, http.MethodGet, "/api/v1/cart", "alice", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/v1/cart/items", "alice", body(2))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Mug")

	w = do(r, http.MethodPost, "/api/v1/cart/items", "alice", body(2))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "not enough stock")

	w = do(r, http.MethodPost, "/api/v1/cart/items", "alice", `{"quantity":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/cart/count", "alice", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":2`)

	// 第一行的 ID 在新库中为 1
	w = do(r, http.MethodDelete, "/api/v1/cart/items/1", "bob", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPut, "/api/v1/cart/items/1", "alice", `{"quantity":3}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(r, http.MethodPut, "/api/v1/cart/items/abc", "alice", `{"quantity":3}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/api/v1/cart/items/1", "alice", `{"quantity":0}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/api/v1/cart/items/1", "alice", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodDelete, "/api/v1/cart", "alice", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":0`)
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
