// Package grpc 购物车 gRPC 接口（shop.cart.v1.CartService），调用方身份取自鉴权拦截器
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wyfcoding/ecommerce/internal/cart/application"
	"github.com/wyfcoding/ecommerce/pkg/grpcx"
)

// ServiceName 服务全名
const ServiceName = "shop.cart.v1.CartService"

// CartServiceServer 服务端接口
type CartServiceServer interface {
	ViewCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	AddItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SetItemQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RemoveItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ClearCart(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ItemCount(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

func method(name string, call func(CartServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodDesc {
	return grpcx.Method(ServiceName, name, func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
		return call(srv.(CartServiceServer), ctx, req)
	})
}

// ServiceDesc 手写的服务描述
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		method("ViewCart", CartServiceServer.ViewCart),
		method("AddItem", CartServiceServer.AddItem),
		method("SetItemQuantity", CartServiceServer.SetItemQuantity),
		method("RemoveItem", CartServiceServer.RemoveItem),
		method("ClearCart", CartServiceServer.ClearCart),
		method("ItemCount", CartServiceServer.ItemCount),
	},
	Metadata: "shop/cart/v1/cart.proto",
}

// Server CartService 实现
type Server struct {
	app *application.CartService
}

// NewServer 创建并注册服务
func NewServer(s grpc.ServiceRegistrar, app *application.CartService) *Server {
	srv := &Server{app: app}
	s.RegisterService(&ServiceDesc, srv)
	return srv
}

// AddItemRequest 加购请求
type AddItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// ItemRequest 针对单行的请求
type ItemRequest struct {
	ItemID   uint `json:"item_id"`
	Quantity int  `json:"quantity"`
}

func (s *Server) ViewCart(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	return grpcx.Reply(s.app.ViewCart(ctx, caller.UserID))
}

func (s *Server) AddItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	var in AddItemRequest
	if err := grpcx.Decode(req, &in); err != nil {
		return nil, err
	}
	return grpcx.Reply(s.app.AddItem(ctx, caller.UserID, in.ProductID, in.Quantity))
}

func (s *Server) SetItemQuantity(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	var in ItemRequest
	if err := grpcx.Decode(req, &in); err != nil {
		return nil, err
	}
	return grpcx.Reply(s.app.SetItemQuantity(ctx, caller.UserID, in.ItemID, in.Quantity))
}

func (s *Server) RemoveItem(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	var in ItemRequest
	if err := grpcx.Decode(req, &in); err != nil {
		return nil, err
	}
	return grpcx.Reply(s.app.RemoveItem(ctx, caller.UserID, in.ItemID))
}

func (s *Server) ClearCart(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.app.ClearCart(ctx, caller.UserID)
	return grpcx.Reply(map[string]int{"removed": n}, err)
}

func (s *Server) ItemCount(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	caller, err := grpcx.Caller(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.app.ItemCount(ctx, caller.UserID)
	return grpcx.Reply(map[string]int{"count": n}, err)
}
