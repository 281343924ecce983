package application_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	cartapp "github.com/wyfcoding/ecommerce/internal/cart/application"
	cartdomain "github.com/wyfcoding/ecommerce/internal/cart/domain"
	cartmysql "github.com/wyfcoding/ecommerce/internal/cart/infrastructure/persistence/mysql"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/ecommerce/internal/catalog/infrastructure/persistence/mysql"
	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/internal/order/domain"
	"github.com/wyfcoding/ecommerce/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/ecommerce/internal/order/infrastructure/persistence/mysql"
	orderredis "github.com/wyfcoding/ecommerce/internal/order/infrastructure/persistence/redis"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	usermysql "github.com/wyfcoding/ecommerce/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/db/dbtest"
	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/utils"
)

type fixture struct {
	gdb      *gorm.DB
	orders   *application.OrderService
	carts    *cartapp.CartService
	products catalogdomain.ProductRepository
	users    userdomain.UserRepository
	mr       *miniredis.Miniredis

	mu    sync.Mutex
	clock time.Time
	seq   int
}

// withRedis 为 true 时接入订单缓存与幂等键；wrap 可替换部分依赖
func newFixture(t *testing.T, withRedis bool, wrap ...func(*application.Dependencies)) *fixture {
	t.Helper()
	gdb := dbtest.Open(t,
		&userdomain.User{}, &catalogdomain.Product{},
		&cartdomain.Cart{}, &cartdomain.CartItem{},
		&ordermysql.OrderModel{}, &ordermysql.OrderItemModel{}, &messaging.OutboxMessage{},
	)
	f := &fixture{
		gdb:      gdb,
		products: catalogmysql.NewProductRepository(gdb),
		users:    usermysql.NewUserRepository(gdb),
		clock:    time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
	cartRepo := cartmysql.NewCartRepository(gdb)
	f.carts = cartapp.NewCartService(gdb, cartRepo, f.products, f.users, nil)

	ids, err := utils.NewIDGenerator(1)
	require.NoError(t, err)
	deps := application.Dependencies{
		DB:          gdb,
		Orders:      ordermysql.NewOrderRepository(gdb),
		Carts:       cartRepo,
		CartClearer: f.carts,
		Stock:       f.products,
		Users:       f.users,
		Publisher:   messaging.NewOutboxEventPublisher(gdb),
		Numbers:     ids,
		Now:         f.now,
	}
	if withRedis {
		f.mr = miniredis.RunT(t)
		client := goredis.NewClient(&goredis.Options{Addr: f.mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		rc := cache.NewFromClient(client)
		deps.Cache = orderredis.NewOrderRedisRepository(rc, 0)
		deps.Idempotency = orderredis.NewIdempotencyStore(rc, 0)
	}
	for _, w := range wrap {
		w(&deps)
	}
	f.orders = application.NewOrderService(deps)
	return f
}

// now 每次调用前进一分钟，保证订单时间严格递增
func (f *fixture) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	return f.clock
}

func (f *fixture) user(t *testing.T) uint {
	t.Helper()
	f.seq++
	u := userdomain.NewUser(fmt.Sprintf("shopper%d@example.com", f.seq), "shopper", "hash")
	require.NoError(t, f.users.Save(context.Background(), u))
	return u.ID
}

func (f *fixture) product(t *testing.T, name, price string, stock int) *catalogdomain.Product {
	t.Helper()
	p := &catalogdomain.Product{Name: name, Price: decimal.RequireFromString(price), StockQuantity: stock}
	require.NoError(t, f.products.Save(context.Background(), p))
	return p
}

func (f *fixture) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), id)
	require.NoError(t, err)
	return p.StockQuantity
}

func (f *fixture) count(t *testing.T, model any, where ...any) int64 {
	t.Helper()
	var n int64
	q := f.gdb.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (f *fixture) add(t *testing.T, userID, productID uint, qty int) {
	t.Helper()
	_, err := f.carts.AddItem(context.Background(), userID, productID, qty)
	require.NoError(t, err)
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	uid := f.user(t)
	pen := f.product(t, "Pen", "1.25", 5)
	book := f.product(t, "Book", "10.00", 3)
	f.add(t, uid, pen.ID, 2)
	f.add(t, uid, book.ID, 3)

	order, err := f.orders.PlaceOrder(ctx, uid, "")
	require.NoError(t, err)
	assert.Equal(t, string(domain.OrderStatusPending), order.Status)
	assert.True(t, decimal.RequireFromString("32.50").Equal(order.TotalAmount))
	require.Len(t, order.Items, 2)
	assert.Contains(t, order.OrderNo, "ORD-")

	assert.Equal(t, 3, f.stock(t, pen.ID))
	assert.Equal(t, 0, f.stock(t, book.ID))

	cart, err := f.carts.ViewCart(ctx, uid)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	assert.EqualValues(t, 1, f.count(t, &messaging.OutboxMessage{}, "topic = ?", domain.TopicOrderPlaced))

	// 订单行保留下单时的商品名与单价
	pen.Name = "Fountain Pen"
	pen.Price = decimal.RequireFromString("9.99")
	require.NoError(t, f.products.Save(ctx, pen))
	got, err := f.orders.GetOrderDetails(ctx, uid, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pen", got.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("1.25").Equal(got.Items[0].PriceAtPurchase))
	assert.True(t, decimal.RequireFromString("2.50").Equal(got.Items[0].Subtotal))
}

func TestPlaceOrder_InsufficientStockChangesNothing(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	uid := f.user(t)
	mug := f.product(t, "Mug", "8.00", 5)
	lamp := f.product(t, "Lamp", "20.00", 2)
	f.add(t, uid, mug.ID, 1)
	f.add(t, uid, lamp.ID, 2)

	lamp.StockQuantity = 1
	require.NoError(t, f.products.Save(ctx, lamp))

	_, err := f.orders.PlaceOrder(ctx, uid, "")
	var stockErr *errorx.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Lamp", stockErr.ProductName)
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)

	assert.Equal(t, 5, f.stock(t, mug.ID))
	assert.Equal(t, 1, f.stock(t, lamp.ID))
	assert.Zero(t, f.count(t, &ordermysql.OrderModel{}))
	assert.Zero(t, f.count(t, &ordermysql.OrderItemModel{}))
	assert.Zero(t, f.count(t, &messaging.OutboxMessage{}))

	cart, err := f.carts.ViewCart(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestPlaceOrder_Preconditions(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.orders.PlaceOrder(ctx, 999, "")
	assert.True(t, errorx.Is(err, errorx.KindNotFound))

	uid := f.user(t)
	_, err = f.orders.PlaceOrder(ctx, uid, "")
	assert.True(t, errorx.Is(err, errorx.KindNotFound), "user without a cart")

	_, err = f.carts.ViewCart(ctx, uid)
	require.NoError(t, err)
	_, err = f.orders.PlaceOrder(ctx, uid, "")
	assert.True(t, errorx.Is(err, errorx.KindInvalidArgument))
	assert.Contains(t, err.Error(), "empty cart")
}

func TestPlaceOrder_LastUnitRace(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	last := f.product(t, "Last One", "99.00", 1)
	buyers := []uint{f.user(t), f.user(t)}
	for _, uid := range buyers {
		f.add(t, uid, last.ID, 1)
	}

	errs := make([]error, len(buyers))
	var g errgroup.Group
	for i, uid := range buyers {
		g.Go(func() error {
			_, errs[i] = f.orders.PlaceOrder(ctx, uid, "")
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errorx.Is(err, errorx.KindInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 0, f.stock(t, last.ID))
	assert.EqualValues(t, 1, f.count(t, &ordermysql.OrderModel{}))
}

// reentrantClearer 在订单提交后、补充清理前再次下单，模拟同一购物车的重复提交
type reentrantClearer struct {
	next  application.CartClearer
	f     *fixture
	once  sync.Once
	again error
}

func (c *reentrantClearer) ClearCart(ctx context.Context, userID uint) (int, error) {
	c.once.Do(func() {
		_, c.again = c.f.orders.PlaceOrder(ctx, userID, "")
	})
	return c.next.ClearCart(ctx, userID)
}

func TestPlaceOrder_CartConsumedInsideTransaction(t *testing.T) {
	clearer := &reentrantClearer{}
	f := newFixture(t, false, func(d *application.Dependencies) {
		clearer.next = d.CartClearer
		d.CartClearer = clearer
	})
	clearer.f = f
	ctx := context.Background()
	uid := f.user(t)
	p := f.product(t, "Stool", "15.00", 10)
	f.add(t, uid, p.ID, 3)

	_, err := f.orders.PlaceOrder(ctx, uid, "")
	require.NoError(t, err)

	assert.True(t, errorx.Is(clearer.again, errorx.KindInvalidArgument), "second checkout sees an empty cart: %v", clearer.again)
	assert.EqualValues(t, 1, f.count(t, &ordermysql.OrderModel{}))
	assert.Equal(t, 7, f.stock(t, p.ID))
	assert.EqualValues(t, 1, f.count(t, &messaging.OutboxMessage{}, "topic = ?", domain.TopicOrderPlaced))
}

// lostRaceStock 加锁读取照常，但最后一行的条件扣减失败，模拟库存在校验后被抢走
type lostRaceStock struct {
	application.StockKeeper
	failOn uint
}

func (s *lostRaceStock) DecrementStock(ctx context.Context, id uint, amount int) (bool, error) {
	if id == s.failOn {
		return false, nil
	}
	return s.StockKeeper.DecrementStock(ctx, id, amount)
}

func TestPlaceOrder_ConditionalDecrementFailureRollsBack(t *testing.T) {
	stock := &lostRaceStock{}
	f := newFixture(t, false, func(d *application.Dependencies) {
		stock.StockKeeper = d.Stock
		d.Stock = stock
	})
	ctx := context.Background()
	uid := f.user(t)
	cup := f.product(t, "Cup", "3.00", 4)
	saucer := f.product(t, "Saucer", "2.00", 4)
	f.add(t, uid, cup.ID, 2)
	f.add(t, uid, saucer.ID, 2)
	stock.failOn = saucer.ID

	_, err := f.orders.PlaceOrder(ctx, uid, "")
	var stockErr *errorx.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Saucer", stockErr.ProductName)

	assert.Equal(t, 4, f.stock(t, cup.ID), "earlier decrement is rolled back")
	assert.Equal(t, 4, f.stock(t, saucer.ID))
	assert.Zero(t, f.count(t, &ordermysql.OrderModel{}))
	assert.Zero(t, f.count(t, &ordermysql.OrderItemModel{}))
	assert.Zero(t, f.count(t, &messaging.OutboxMessage{}))

	cart, err := f.carts.ViewCart(ctx, uid)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestGetOrderDetails_OtherUserIsNotFound(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice, bob := f.user(t), f.user(t)
	p := f.product(t, "Pen", "1.00", 5)
	f.add(t, alice, p.ID, 1)

	order, err := f.orders.PlaceOrder(ctx, alice, "")
	require.NoError(t, err)

	_, err = f.orders.GetOrderDetails(ctx, bob, order.ID)
	assert.True(t, errorx.Is(err, errorx.KindNotFound))
	assert.Equal(t, "Order not found with id: "+fmt.Sprint(order.ID), err.Error())

	_, err = f.orders.GetOrderDetails(ctx, alice, order.ID+100)
	assert.True(t, errorx.Is(err, errorx.KindNotFound))

	got, err := f.orders.GetOrderDetails(ctx, alice, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNo, got.OrderNo)
}

func TestOrderListings(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	alice, bob := f.user(t), f.user(t)
	p := f.product(t, "Pen", "1.00", 10)

	var aliceOrders []uint
	for i := 0; i < 2; i++ {
		f.add(t, alice, p.ID, 1)
		o, err := f.orders.PlaceOrder(ctx, alice, "")
		require.NoError(t, err)
		aliceOrders = append(aliceOrders, o.ID)
	}
	f.add(t, bob, p.ID, 1)
	_, err := f.orders.PlaceOrder(ctx, bob, "")
	require.NoError(t, err)

	mine, err := f.orders.GetMyOrders(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, aliceOrders[1], mine[0].ID, "newest first")

	all, err := f.orders.GetAllOrders(ctx, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	assert.Len(t, all.Items, 2)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	uid := f.user(t)
	p := f.product(t, "Pen", "1.00", 5)
	f.add(t, uid, p.ID, 1)
	order, err := f.orders.PlaceOrder(ctx, uid, "")
	require.NoError(t, err)

	_, err = f.orders.GetOrderDetails(ctx, uid, order.ID)
	require.NoError(t, err)
	cacheKey := fmt.Sprintf("order:%d", order.ID)
	assert.True(t, f.mr.Exists(cacheKey))

	_, err = f.orders.UpdateOrderStatus(ctx, order.ID, "shipped")
	assert.True(t, errorx.Is(err, errorx.KindInvalidArgument))
	_, err = f.orders.UpdateOrderStatus(ctx, order.ID+100, "SHIPPED")
	assert.True(t, errorx.Is(err, errorx.KindNotFound))

	// 状态切换不限制方向
	for _, s := range []string{"DELIVERED", "PENDING", "CANCELLED"} {
		got, err := f.orders.UpdateOrderStatus(ctx, order.ID, s)
		require.NoError(t, err)
		assert.Equal(t, s, got.Status)
	}
	marker, err := f.mr.Get(cacheKey)
	require.NoError(t, err)
	assert.Equal(t, "evicted", marker)
	assert.EqualValues(t, 3, f.count(t, &messaging.OutboxMessage{}, "topic = ?", domain.TopicOrderStatusChanged))

	got, err := f.orders.GetOrderDetails(ctx, uid, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", got.Status)
	assert.Equal(t, 4, f.stock(t, p.ID), "cancellation does not restock")
}

func TestPlaceOrder_IdempotencyKey(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	uid := f.user(t)
	p := f.product(t, "Pen", "1.00", 5)
	f.add(t, uid, p.ID, 2)

	first, err := f.orders.PlaceOrder(ctx, uid, "checkout-1")
	require.NoError(t, err)
	again, err := f.orders.PlaceOrder(ctx, uid, "checkout-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.EqualValues(t, 1, f.count(t, &ordermysql.OrderModel{}))

	// 失败的下单会释放幂等键
	_, err = f.orders.PlaceOrder(ctx, uid, "checkout-2")
	assert.True(t, errorx.Is(err, errorx.KindInvalidArgument))
	assert.False(t, f.mr.Exists(fmt.Sprintf("idem:order:%d:checkout-2", uid)))

	require.NoError(t, f.mr.Set(fmt.Sprintf("idem:order:%d:checkout-3", uid), "pending"))
	_, err = f.orders.PlaceOrder(ctx, uid, "checkout-3")
	assert.True(t, errorx.Is(err, errorx.KindConflict))
}
