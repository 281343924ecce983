package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/db/dbtest"
	"github.com/wyfcoding/ecommerce/pkg/mq"
)

const (
	adminEmail    = "admin@shop.test"
	adminPassword = "admin-password"
)

type recordingProducer struct {
	mu  sync.Mutex
	got []mq.Message
}

func (p *recordingProducer) SendMessages(_ context.Context, msgs ...mq.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, msgs...)
	return nil
}

func (p *recordingProducer) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.got))
	for i, m := range p.got {
		out[i] = m.Topic
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		ServiceName: "shop-test",
		Environment: "dev",
		Auth: config.AuthConfig{
			JWTSecret:     "server-test-secret-0123456789",
			Issuer:        "shop",
			TokenTTL:      60,
			AdminEmail:    adminEmail,
			AdminPassword: adminPassword,
		},
		Order: config.OrderConfig{NodeID: 1},
	}
}

func newApp(t *testing.T) (*App, *recordingProducer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb := dbtest.Open(t, Models()...)
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	producer := &recordingProducer{}
	app, err := New(Options{
		Config:     testConfig(),
		DB:         gdb,
		Cache:      cache.NewFromClient(client),
		Producer:   producer,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	require.NoError(t, app.SeedAdmin(context.Background()))
	return app, producer
}

func call(r http.Handler, method, path, token, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// payload 取出响应体中的业务数据，兼容带 data 信封与不带信封两种形式
func payload(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	if inner, ok := body["data"].(map[string]any); ok {
		return inner
	}
	return body
}

func idOf(t *testing.T, m map[string]any) string {
	t.Helper()
	v, ok := m["id"].(float64)
	require.True(t, ok, "missing id in %v", m)
	return strconv.FormatUint(uint64(v), 10)
}

func login(t *testing.T, r http.Handler, email, password string) string {
	t.Helper()
	w := call(r, http.MethodPost, "/api/v1/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, ok := payload(t, w)["access_token"].(string)
	require.True(t, ok)
	return token
}

func TestHTTP_CheckoutFlow(t *testing.T) {
	app, producer := newApp(t)
	r := app.Router()

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/health", "", "").Code)

	w := call(r, http.MethodPost, "/api/v1/auth/register", "", `{"email":"alice@shop.test","password":"alice-pass","name":"Alice"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	alice := login(t, r, "alice@shop.test", "alice-pass")
	admin := login(t, r, adminEmail, adminPassword)

	product := `{"name":"Kettle","price":"12.50","stock_quantity":2,"category":"kitchen"}`
	assert.Equal(t, http.StatusUnauthorized, call(r, http.MethodPost, "/api/v1/products", "", product).Code)
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPost, "/api/v1/products", alice, product).Code)
	w = call(r, http.MethodPost, "/api/v1/products", admin, product)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	productID := idOf(t, payload(t, w))

	w = call(r, http.MethodPost, "/api/v1/orders", alice, "")
	assert.Equal(t, http.StatusNotFound, w.Code, "no cart yet")
	require.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/cart", alice, "").Code)
	w = call(r, http.MethodPost, "/api/v1/orders", alice, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty cart")

	w = call(r, http.MethodPost, "/api/v1/cart/items", alice, `{"product_id":`+productID+`,"quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(r, http.MethodPost, "/api/v1/orders", alice, "", "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	order := payload(t, w)
	orderID := idOf(t, order)
	assert.Equal(t, "PENDING", order["status"])
	total, ok := order["total_amount"].(string)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString(total).Equal(decimal.NewFromInt(25)), total)

	// 重放同一个幂等键返回同一张订单，即使购物车已经清空
	w = call(r, http.MethodPost, "/api/v1/orders", alice, "", "Idempotency-Key", "checkout-1")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, orderID, idOf(t, payload(t, w)))

	w = call(r, http.MethodGet, "/api/v1/cart/count", alice, "")
	assert.Contains(t, w.Body.String(), `"count":0`)

	w = call(r, http.MethodGet, "/api/v1/products/"+productID, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, payload(t, w)["stock_quantity"])

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/orders/"+orderID, alice, "").Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodGet, "/api/v1/orders/"+orderID, admin, "").Code)
	assert.Contains(t, call(r, http.MethodGet, "/api/v1/orders", alice, "").Body.String(), "Kettle")

	statusPath := "/api/v1/admin/orders/" + orderID + "/status"
	assert.Equal(t, http.StatusForbidden, call(r, http.MethodPut, statusPath, alice, `{"status":"SHIPPED"}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(r, http.MethodPut, statusPath, admin, `{"status":"LOST"}`).Code)
	assert.Equal(t, http.StatusNotFound, call(r, http.MethodPut, "/api/v1/admin/orders/999/status", admin, `{"status":"LOST"}`).Code)
	w = call(r, http.MethodPut, statusPath, admin, `{"status":"SHIPPED"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "SHIPPED", payload(t, w)["status"])

	assert.Equal(t, http.StatusForbidden, call(r, http.MethodGet, "/api/v1/admin/users", alice, "").Code)
	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/api/v1/admin/users", admin, "").Code)

	w = call(r, http.MethodGet, "/api/v1/admin/orders?page=1&page_size=10", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, payload(t, w)["total"])

	n, err := app.Relay.ProcessOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.ElementsMatch(t, []string{domain.TopicOrderPlaced, domain.TopicOrderStatusChanged}, producer.topics())
}

func TestNew_RequiresDatabase(t *testing.T) {
	_, err := New(Options{Config: testConfig()})
	assert.Error(t, err)
}
