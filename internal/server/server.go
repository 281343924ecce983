// Package server 组装各限界上下文的仓储、应用服务与 HTTP/gRPC 入口
// cmd/shop 与端到端测试共用同一套装配逻辑
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"gorm.io/gorm"

	cartapp "github.com/wyfcoding/ecommerce/internal/cart/application"
	cartdomain "github.com/wyfcoding/ecommerce/internal/cart/domain"
	cartmysql "github.com/wyfcoding/ecommerce/internal/cart/infrastructure/persistence/mysql"
	cartgrpc "github.com/wyfcoding/ecommerce/internal/cart/interfaces/grpc"
	carthttp "github.com/wyfcoding/ecommerce/internal/cart/interfaces/http"
	catalogapp "github.com/wyfcoding/ecommerce/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/ecommerce/internal/catalog/infrastructure/persistence/mysql"
	cataloghttp "github.com/wyfcoding/ecommerce/internal/catalog/interfaces/http"
	orderapp "github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/internal/order/infrastructure/messaging"
	ordermysql "github.com/wyfcoding/ecommerce/internal/order/infrastructure/persistence/mysql"
	orderredis "github.com/wyfcoding/ecommerce/internal/order/infrastructure/persistence/redis"
	ordergrpc "github.com/wyfcoding/ecommerce/internal/order/interfaces/grpc"
	orderhttp "github.com/wyfcoding/ecommerce/internal/order/interfaces/http"
	userapp "github.com/wyfcoding/ecommerce/internal/user/application"
	userdomain "github.com/wyfcoding/ecommerce/internal/user/domain"
	usermysql "github.com/wyfcoding/ecommerce/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/ecommerce/internal/user/infrastructure/security"
	userhttp "github.com/wyfcoding/ecommerce/internal/user/interfaces/http"
	"github.com/wyfcoding/ecommerce/pkg/cache"
	"github.com/wyfcoding/ecommerce/pkg/config"
	"github.com/wyfcoding/ecommerce/pkg/metrics"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
	"github.com/wyfcoding/ecommerce/pkg/ratelimit"
	"github.com/wyfcoding/ecommerce/pkg/utils"
)

// Models 需要自动迁移的全部表
func Models() []any {
	return []any{
		&userdomain.User{},
		&catalogdomain.Product{},
		&cartdomain.Cart{},
		&cartdomain.CartItem{},
		&ordermysql.OrderModel{},
		&ordermysql.OrderItemModel{},
		&messaging.OutboxMessage{},
	}
}

// Options 装配参数，Cache、Producer、Metrics 可以为空
type Options struct {
	Config   *config.Config
	DB       *gorm.DB
	Cache    *cache.RedisCache
	Producer messaging.Producer
	Metrics  *metrics.Metrics
	// BcryptCost 为 0 时使用 bcrypt 默认值
	BcryptCost int
}

// App 装配完成的服务集合
type App struct {
	cfg     *config.Config
	metrics *metrics.Metrics
	tokens  *security.JWTManager
	limiter *ratelimit.RedisLimiter

	Users   *userapp.UserService
	Catalog *catalogapp.CatalogService
	Carts   *cartapp.CartService
	Orders  *orderapp.OrderService
	// Relay 未配置 Kafka 时为 nil，事件只落库
	Relay *messaging.OutboxRelay
}

// New 按配置装配所有上下文
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil || opts.DB == nil {
		return nil, fmt.Errorf("config and database are required")
	}
	gdb := opts.DB

	// 仓储
	userRepo := usermysql.NewUserRepository(gdb)
	productRepo := catalogmysql.NewProductRepository(gdb)
	cartRepo := cartmysql.NewCartRepository(gdb)
	orderRepo := ordermysql.NewOrderRepository(gdb)

	ids, err := utils.NewIDGenerator(cfg.Order.NodeID)
	if err != nil {
		return nil, fmt.Errorf("create id generator: %w", err)
	}

	tokens := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, time.Duration(cfg.Auth.TokenTTL)*time.Minute)
	app := &App{
		cfg:     cfg,
		metrics: opts.Metrics,
		tokens:  tokens,
		Users:   userapp.NewUserService(userRepo, security.NewBcryptHasher(opts.BcryptCost), tokens),
		Catalog: catalogapp.NewCatalogService(productRepo),
		Carts:   cartapp.NewCartService(gdb, cartRepo, productRepo, userRepo, opts.Metrics),
	}

	deps := orderapp.Dependencies{
		DB:          gdb,
		Orders:      orderRepo,
		Carts:       cartRepo,
		CartClearer: app.Carts,
		Stock:       productRepo,
		Users:       userRepo,
		Publisher:   messaging.NewOutboxEventPublisher(gdb),
		Numbers:     ids,
		Metrics:     opts.Metrics,
	}
	// 接口字段只在 Redis 可用时赋值，避免带类型的 nil
	if opts.Cache != nil {
		deps.Cache = orderredis.NewOrderRedisRepository(opts.Cache, time.Duration(cfg.Order.CacheTTL)*time.Second)
		deps.Idempotency = orderredis.NewIdempotencyStore(opts.Cache, time.Duration(cfg.Order.IdempotencyTTL)*time.Second)
		if cfg.RateLimit.Enabled {
			app.limiter = ratelimit.NewRedisLimiter(opts.Cache.GetClient())
		}
	}
	app.Orders = orderapp.NewOrderService(deps)

	if opts.Producer != nil {
		app.Relay = messaging.NewOutboxRelay(gdb, opts.Producer,
			time.Duration(cfg.Order.OutboxPollInterval)*time.Millisecond, cfg.Order.OutboxBatchSize, cfg.Order.OutboxMaxAttempts, opts.Metrics)
	}
	return app, nil
}

// SeedAdmin 按配置确保管理员账号存在
func (a *App) SeedAdmin(ctx context.Context) error {
	return a.Users.EnsureAdmin(ctx, a.cfg.Auth.AdminEmail, a.cfg.Auth.AdminPassword)
}

// Router 创建 gin 路由
func (a *App) Router() *gin.Engine {
	router := gin.New()

	router.Use(otelgin.Middleware(a.cfg.ServiceName))
	router.Use(middleware.GinLoggingMiddleware())
	router.Use(middleware.GinRecoveryMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinMetricsMiddleware(a.metrics))
	if a.limiter != nil {
		router.Use(middleware.GinRateLimit(a.limiter, ratelimit.PerSecond(a.cfg.RateLimit.QPS, a.cfg.RateLimit.Burst)))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"service":   a.cfg.ServiceName,
			"timestamp": time.Now().Unix(),
		})
	})

	auth := middleware.GinAuth(a.tokens)
	admin := []gin.HandlerFunc{auth, middleware.GinRequireRole(middleware.RoleAdmin)}

	api := router.Group("/api/v1")
	userhttp.NewHandler(a.Users).RegisterRoutes(api, auth, admin...)
	cataloghttp.NewHandler(a.Catalog).RegisterRoutes(api, admin...)
	carthttp.NewHandler(a.Carts).RegisterRoutes(api, auth)
	orderhttp.NewOrderHandler(a.Orders).RegisterRoutes(api, []gin.HandlerFunc{auth}, admin)
	return router
}

// HTTPServer 用配置中的地址与超时包装路由
func (a *App) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", a.cfg.HTTP.Host, a.cfg.HTTP.Port),
		Handler:      a.Router(),
		ReadTimeout:  time.Duration(a.cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(a.cfg.HTTP.WriteTimeout) * time.Second,
	}
}

// GRPCServer 创建 gRPC 服务器并注册购物车、订单、健康检查与反射服务
func (a *App) GRPCServer() *grpc.Server {
	opts := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			middleware.GRPCLoggingInterceptor(),
			middleware.GRPCRecoveryInterceptor(),
			middleware.GRPCMetricsInterceptor(a.metrics),
			middleware.GRPCAuthInterceptor(a.tokens, healthpb.Health_Check_FullMethodName),
		),
	}
	if a.cfg.GRPC.MaxConcurrentStreams > 0 {
		opts = append(opts, grpc.MaxConcurrentStreams(uint32(a.cfg.GRPC.MaxConcurrentStreams)))
	}

	server := grpc.NewServer(opts...)
	cartgrpc.NewServer(server, a.Carts)
	ordergrpc.NewHandler(server, a.Orders)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(cartgrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ordergrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, hs)
	reflection.Register(server)
	return server
}
