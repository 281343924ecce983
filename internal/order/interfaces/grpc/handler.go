// Package grpc 订单 gRPC 接口（shop.order.v1.OrderService）
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/pkg/grpcx"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
)

// ServiceName 服务全名
const ServiceName = "shop.order.v1.OrderService"

// OrderServiceServer 服务端接口
type OrderServiceServer interface {
	PlaceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetMyOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetOrderDetails(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	GetAllOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func method(name string, call func(OrderServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpcx.Method(ServiceName, name, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return call(srv.(OrderServiceServer), ctx, req)
	})
}

// ServiceDesc 手写的服务描述
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("PlaceOrder", OrderServiceServer.PlaceOrder),
		method("GetMyOrders", OrderServiceServer.GetMyOrders),
		method("GetOrderDetails", OrderServiceServer.GetOrderDetails),
		method("GetAllOrders", OrderServiceServer.GetAllOrders),
		method("UpdateOrderStatus", OrderServiceServer.UpdateOrderStatus),
	},
	Metadata: "shop/order/v1/order.proto",
}

// Handler gRPC 处理器
// 负责处理与订单相关的 gRPC 请求
type Handler struct {
	service *application.OrderService
}

// NewHandler 创建处理器并注册到 s
func NewHandler(s grpc.ServiceRegistrar, service *application.OrderService) *Handler {
	h := &Handler{service: service}
	s.RegisterService(&ServiceDesc, h)
	return h
}

// PlaceOrderRequest 下单请求
type PlaceOrderRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

// OrderRequest 按订单 ID 操作的请求
type OrderRequest struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status,omitempty"`
}

// PageRequest 分页请求
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func (h *Handler) PlaceOrder(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	var in PlaceOrderRequest
	if err := grpcx.Decode(req, &in); err != nil {
		return nil, err
	}
	return grpcx.Reply(h.service.PlaceOrder(ctx, caller.UserID, in.IdempotencyKey))
}

func (h *Handler) GetMyOrders(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := h.service.GetMyOrders(ctx, caller.UserID)
	return grpcx.Reply(map[string]any{"orders": orders}, err)
}

func (h *Handler) GetOrderDetails(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	var in OrderRequest
	if err := grpcx.Decode(req, &in); err != nil {
		return nil, err
	}
	return grpcx.Reply(h.service.GetOrderDetails(ctx, caller.UserID, in.OrderID))
}

func (h *Handler) GetAllOrders(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	var in PageRequest
	if err := grpcx.Decode(req, &in); err != nil {
		return nil, err
	}
	return grpcx.Reply(h.service.GetAllOrders(ctx, in.Page, in.PageSize))
}

func (h *Handler) UpdateOrderStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	var in OrderRequest
	if err := grpcx.Decode(req, &in); err != nil {
		return nil, err
	}
	return grpcx.Reply(h.service.UpdateOrderStatus(ctx, in.OrderID, in.Status))
}

func requireAdmin(ctx context.Context) (*middleware.Principal, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, status.Error(codes.PermissionDenied, "admin role required")
	}
	return caller, nil
}
