// Package grpcx 提供无代码生成的 gRPC 服务定义工具：
// 方法统一收发 google.protobuf.Struct，请求与响应通过 JSON 映射到 Go 结构体。
package grpcx

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
)

// UnaryFunc 一元方法实现，srv 为注册时传入的服务实现
type UnaryFunc func(srv any, ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)

// Method 构造一个收发 Struct 的 MethodDesc，拦截器链照常生效
func Method(service, name string, fn UnaryFunc) grpc.MethodDesc {
	fullMethod := FullMethod(service, name)
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			call := func(ctx context.Context, req any) (any, error) {
				return fn(srv, ctx, req.(*structpb.Struct))
			}
			if interceptor == nil {
				return call(ctx, in)
			}
			return interceptor(ctx, in, &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}, call)
		},
	}
}

// FullMethod 返回 /service/method 形式的方法名
func FullMethod(service, name string) string {
	return "/" + service + "/" + name
}

// Status 把业务错误转换为 gRPC status，内部错误只暴露通用信息
func Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(errorx.GRPCCode(err), errorx.PublicMessage(err))
}

// Caller 读取鉴权拦截器放入的调用方，未认证时返回 Unauthenticated
func Caller(ctx context.Context) (*middleware.Principal, error) {
	p, ok := middleware.PrincipalFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}
	return p, nil
}

// Decode 把 Struct 解码到 out
func Decode(in *structpb.Struct, out any) error {
	raw, err := json.Marshal(in.AsMap())
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// Encode 把任意 JSON 可序列化的值编码为 Struct，值本身必须序列化为 JSON 对象
func Encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal response: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("response is not an object: %w", err)
	}
	return structpb.NewStruct(m)
}

// Reply 编码响应并转换错误，handler 末尾直接 return grpcx.Reply(dto, err)
func Reply(v any, err error) (*structpb.Struct, error) {
	if err != nil {
		return nil, Status(err)
	}
	out, err := Encode(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
