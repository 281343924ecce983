// Package httpx HTTP 处理器的公共辅助：统一错误输出与调用方解析
package httpx

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
	"github.com/wyfcoding/ecommerce/pkg/middleware"
)

// Error 按错误类别写出响应，内部错误只记录日志不外泄
func Error(c *gin.Context, err error) {
	status := errorx.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	}
	response.ErrorWithStatus(c, status, errorx.PublicMessage(err), string(errorx.KindOf(err)))
	c.Abort()
}

// BadRequest 参数绑定失败
func BadRequest(c *gin.Context, err error) {
	response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), string(errorx.KindInvalidArgument))
	c.Abort()
}

// CurrentUserID 读取鉴权中间件写入的用户 ID，缺失时写出 401
func CurrentUserID(c *gin.Context) (uint, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		Error(c, errorx.Unauthenticated("authentication required"))
		return 0, false
	}
	return p.UserID, true
}

// ParamID 解析路径中的正整数 ID
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		Error(c, errorx.InvalidArgument("invalid %s: %s", name, c.Param(name)))
		return 0, false
	}
	return uint(id), true
}
