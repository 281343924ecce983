// Package http 购物车 HTTP 接口，所有路由都要求登录
package http

import (
	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/ecommerce/internal/cart/application"
	"github.com/wyfcoding/ecommerce/pkg/httpx"
)

// Handler 购物车 HTTP 处理器
type Handler struct {
	svc *application.CartService
}

// NewHandler 创建处理器
func NewHandler(svc *application.CartService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册路由，auth 为鉴权中间件链
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth ...gin.HandlerFunc) {
	g := api.Group("/cart", auth...)
	g.GET("", h.ViewCart)
	g.GET("/count", h.ItemCount)
	g.DELETE("", h.ClearCart)
	g.POST("/items", h.AddItem)
	g.PUT("/items/:id", h.SetItemQuantity)
	g.DELETE("/items/:id", h.RemoveItem)
}

// AddItemRequest 加购请求
type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// SetQuantityRequest 修改数量请求，0 或负数表示删除
type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ViewCart 查看购物车
func (h *Handler) ViewCart(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	cart, err := h.svc.ViewCart(c.Request.Context(), userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// ItemCount 购物车件数
func (h *Handler) ItemCount(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	n, err := h.svc.ItemCount(c.Request.Context(), userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, gin.H{"count": n})
}

// AddItem 加购
func (h *Handler) AddItem(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	cart, err := h.svc.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// SetItemQuantity 修改行数量
func (h *Handler) SetItemQuantity(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	itemID, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var req SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	cart, err := h.svc.SetItemQuantity(c.Request.Context(), userID, itemID, *req.Quantity)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// RemoveItem 删除行
func (h *Handler) RemoveItem(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	itemID, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	cart, err := h.svc.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, cart)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	n, err := h.svc.ClearCart(c.Request.Context(), userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, gin.H{"removed": n})
}
