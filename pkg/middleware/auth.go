package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Principal 已认证的调用方
type Principal struct {
	UserID uint
	Role   string
}

// IsAdmin 是否管理员
func (p *Principal) IsAdmin() bool { return p != nil && p.Role == RoleAdmin }

// RoleAdmin 管理员角色名
const RoleAdmin = "ADMIN"

// TokenVerifier 校验访问令牌
type TokenVerifier interface {
	Verify(token string) (*Principal, error)
}

const principalKey = "principal"

type principalCtxKey struct{}

// GinAuth 校验 Bearer 令牌，成功后把 Principal 放入 gin 上下文
func GinAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer error="invalid_request"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		p, err := v.Verify(raw)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer error="invalid_token"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(principalKey, p)
		c.Next()
	}
}

// GinRequireRole 要求调用方具有指定角色，必须放在 GinAuth 之后
func GinRequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		if p.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
			return
		}
		c.Next()
	}
}

// PrincipalFrom 读取 GinAuth 写入的 Principal
func PrincipalFrom(c *gin.Context) (*Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok && p != nil
}

// GRPCAuthInterceptor 从 authorization 元数据校验令牌，public 中的方法跳过校验
func GRPCAuthInterceptor(v TokenVerifier, public ...string) grpc.UnaryServerInterceptor {
	skip := make(map[string]struct{}, len(public))
	for _, m := range public {
		skip[m] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := skip[info.FullMethod]; ok {
			return handler(ctx, req)
		}
		raw, ok := bearerToken(firstMetadata(ctx, "authorization"))
		if !ok {
			return nil, status.Error(codes.Unauthenticated, "missing bearer token")
		}
		p, err := v.Verify(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, "invalid token")
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

// WithPrincipal 把 Principal 放入 context，仅供传输层使用
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFromContext 读取 gRPC 拦截器写入的 Principal
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	return p, ok && p != nil
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}
