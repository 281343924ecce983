// Package metrics 提供 Prometheus 指标，包含请求指标与下单业务指标
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/ecommerce/pkg/logger"
)

const namespace = "shop"

// Metrics 指标集合，nil 接收者上的记录方法均为空操作
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	GRPCRequestsTotal   *prometheus.CounterVec
	GRPCRequestDuration *prometheus.HistogramVec

	OrdersPlacedTotal    prometheus.Counter
	OrderFailuresTotal   *prometheus.CounterVec
	CheckoutDuration     prometheus.Histogram
	CartMutationsTotal   *prometheus.CounterVec
	OutboxPublishedTotal prometheus.Counter
}

// New 创建指标实例，serviceName 中的 '-' 替换为 '_' 以符合指标命名规则
func New(serviceName string) *Metrics {
	serviceName = strings.ReplaceAll(serviceName, "-", "_")
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		GRPCRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "grpc_requests_total",
			Help:      "Total gRPC requests",
		}, []string{"method", "code"}),
		GRPCRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "grpc_request_duration_seconds",
			Help:      "gRPC request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		OrdersPlacedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "orders_placed_total",
			Help:      "Orders committed by checkout",
		}),
		OrderFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "order_failures_total",
			Help:      "Checkout attempts rejected, by error kind",
		}, []string{"reason"}),
		CheckoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "checkout_duration_seconds",
			Help:      "Duration of the checkout transaction",
			Buckets:   prometheus.DefBuckets,
		}),
		CartMutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "cart_mutations_total",
			Help:      "Cart mutations, by operation and result",
		}, []string{"op", "result"}),
		OutboxPublishedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: serviceName,
			Name:      "outbox_published_total",
			Help:      "Outbox messages delivered to the broker",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.GRPCRequestsTotal,
		m.GRPCRequestDuration,
		m.OrdersPlacedTotal,
		m.OrderFailuresTotal,
		m.CheckoutDuration,
		m.CartMutationsTotal,
		m.OutboxPublishedTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("register metric: %w", err)
		}
	}
	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 在独立端口暴露 Prometheus 指标
func StartHTTPServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", srv.Addr, "path", path)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(context.Background(), "Prometheus HTTP server failed", "error", err)
		}
	}()
	return srv
}

// RecordHTTPRequest 记录 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordGRPCRequest 记录 gRPC 请求
func (m *Metrics) RecordGRPCRequest(method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.GRPCRequestsTotal.WithLabelValues(method, code).Inc()
	m.GRPCRequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// RecordOrderPlaced 记录成功下单
func (m *Metrics) RecordOrderPlaced(d time.Duration) {
	if m == nil {
		return
	}
	m.OrdersPlacedTotal.Inc()
	m.CheckoutDuration.Observe(d.Seconds())
}

// RecordOrderFailure 记录下单失败
func (m *Metrics) RecordOrderFailure(reason string) {
	if m == nil {
		return
	}
	m.OrderFailuresTotal.WithLabelValues(reason).Inc()
}

// RecordCartMutation 记录购物车变更
func (m *Metrics) RecordCartMutation(op string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.CartMutationsTotal.WithLabelValues(op, result).Inc()
}

// RecordOutboxPublished 记录投递成功的 outbox 消息数
func (m *Metrics) RecordOutboxPublished(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.OutboxPublishedTotal.Add(float64(n))
}
