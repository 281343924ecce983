// Package http 订单 HTTP 接口
package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/ecommerce/internal/order/application"
	"github.com/wyfcoding/ecommerce/pkg/httpx"
)

// IdempotencyKeyHeader 下单幂等键请求头
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler HTTP 处理器
// 负责处理与订单相关的 HTTP 请求
type OrderHandler struct {
	svc *application.OrderService
}

// NewOrderHandler 创建 HTTP 处理器实例
func NewOrderHandler(svc *application.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes 注册路由；auth 为登录校验链，admin 为管理员校验链（已包含登录校验）
func (h *OrderHandler) RegisterRoutes(api *gin.RouterGroup, auth, admin []gin.HandlerFunc) {
	orders := api.Group("/orders", auth...)
	{
		orders.POST("", h.PlaceOrder)        // 下单
		orders.GET("", h.GetMyOrders)        // 我的订单
		orders.GET("/:id", h.GetOrderDetail) // 订单详情
	}

	mgmt := api.Group("/admin/orders", admin...)
	{
		mgmt.GET("", h.GetAllOrders)
		mgmt.PUT("/:id/status", h.UpdateOrderStatus)
	}
}

// UpdateStatusRequest 修改订单状态请求
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PlaceOrder 把当前购物车下单
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	order, err := h.svc.PlaceOrder(c.Request.Context(), userID, c.GetHeader(IdempotencyKeyHeader))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, order)
}

// GetMyOrders 我的订单
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	orders, err := h.svc.GetMyOrders(c.Request.Context(), userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, orders)
}

// GetOrderDetail 订单详情
func (h *OrderHandler) GetOrderDetail(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.GetOrderDetails(c.Request.Context(), userID, id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, order)
}

// GetAllOrders 管理端订单列表
func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	res, err := h.svc.GetAllOrders(c.Request.Context(), page, size)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, res)
}

// UpdateOrderStatus 管理端修改订单状态
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	order, err := h.svc.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, order)
}
