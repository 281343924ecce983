// Package errorx 定义业务错误分类，以及到 HTTP 状态码和 gRPC 状态码的映射
package errorx

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind 错误类别
type Kind string

const (
	KindInternal          Kind = "INTERNAL"
	KindNotFound          Kind = "NOT_FOUND"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindInvalidArgument   Kind = "INVALID_ARGUMENT"
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindForbidden         Kind = "FORBIDDEN"
	KindConflict          Kind = "CONFLICT"
)

// Error 业务错误
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// New 创建业务错误
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// NotFound 资源不存在，格式与 "<Resource> not found with <field>: <value>" 保持一致
func NotFound(resource, field string, value any) *Error {
	return New(KindNotFound, fmt.Sprintf("%s not found with %s: %v", resource, field, value))
}

// InvalidArgument 参数错误
func InvalidArgument(format string, args ...any) *Error {
	return New(KindInvalidArgument, fmt.Sprintf(format, args...))
}

// Forbidden 无权访问
func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

// Unauthenticated 未认证
func Unauthenticated(msg string) *Error {
	return New(KindUnauthenticated, msg)
}

// Conflict 资源冲突
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

// InsufficientStockError 库存不足，携带商品名、可用量和请求量
type InsufficientStockError struct {
	ProductID   uint
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product: %s. Available: %d. Requested: %d",
		e.ProductName, e.Available, e.Requested)
}

// InsufficientStock 创建库存不足错误
func InsufficientStock(productID uint, name string, available, requested int) *InsufficientStockError {
	return &InsufficientStockError{ProductID: productID, ProductName: name, Available: available, Requested: requested}
}

// KindOf 返回错误链上第一个业务错误的类别，非业务错误视为 Internal
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return KindInsufficientStock
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is 判断错误是否属于指定类别
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus 映射为 HTTP 状态码
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficientStock, KindConflict:
		return http.StatusConflict
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case "":
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode 映射为 gRPC 状态码
func GRPCCode(err error) codes.Code {
	switch KindOf(err) {
	case KindNotFound:
		return codes.NotFound
	case KindInsufficientStock:
		return codes.FailedPrecondition
	case KindInvalidArgument:
		return codes.InvalidArgument
	case KindUnauthenticated:
		return codes.Unauthenticated
	case KindForbidden:
		return codes.PermissionDenied
	case KindConflict:
		return codes.AlreadyExists
	case "":
		return codes.OK
	default:
		return codes.Internal
	}
}

// PublicMessage 返回可以暴露给调用方的错误信息，内部错误不外泄细节
func PublicMessage(err error) string {
	if KindOf(err) == KindInternal {
		return "internal server error"
	}
	return err.Error()
}
