// Package http 商品目录 HTTP 接口
package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/ecommerce/internal/catalog/application"
	"github.com/wyfcoding/ecommerce/pkg/httpx"
)

// Handler 商品 HTTP 处理器
type Handler struct {
	svc *application.CatalogService
}

// NewHandler 创建处理器
func NewHandler(svc *application.CatalogService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 查询接口公开，写接口需要 admin 中间件链
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, admin ...gin.HandlerFunc) {
	g := api.Group("/products")
	g.GET("", h.ListProducts)
	g.GET("/:id", h.GetProduct)

	w := g.Group("", admin...)
	w.POST("", h.CreateProduct)
	w.PUT("/:id", h.UpdateProduct)
	w.DELETE("/:id", h.DeleteProduct)
}

// ProductRequest 创建/更新商品请求
type ProductRequest struct {
	Name          string          `json:"name" binding:"required"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      string          `json:"image_url"`
	Category      string          `json:"category"`
}

func (r ProductRequest) command() application.ProductCommand {
	return application.ProductCommand{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		StockQuantity: r.StockQuantity,
		ImageURL:      r.ImageURL,
		Category:      r.Category,
	}
}

// ListProducts 商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	res, err := h.svc.ListProducts(c.Request.Context(), c.Query("category"), page, size)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetProduct 商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, p)
}

// CreateProduct 新建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	p, err := h.svc.CreateProduct(c.Request.Context(), req.command())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, p)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	p, err := h.svc.UpdateProduct(c.Request.Context(), id, req.command())
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, p)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "deleted": true})
}
