// Package http 用户注册、登录、个人信息与管理端用户接口
package http

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/response"

	"github.com/wyfcoding/ecommerce/internal/user/application"
	"github.com/wyfcoding/ecommerce/pkg/httpx"
)

// Handler 用户 HTTP 处理器
type Handler struct {
	svc *application.UserService
}

// NewHandler 创建处理器
func NewHandler(svc *application.UserService) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes 注册路由，auth 为鉴权中间件，admin 为管理员中间件链
func (h *Handler) RegisterRoutes(api *gin.RouterGroup, auth gin.HandlerFunc, admin ...gin.HandlerFunc) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)

	api.GET("/users/me", auth, h.Me)

	mgmt := api.Group("/admin/users", admin...)
	{
		mgmt.GET("", h.ListUsers)
		mgmt.GET("/:id", h.GetUser)
		mgmt.PUT("/:id", h.UpdateUser)
		mgmt.DELETE("/:id", h.DeactivateUser)
	}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest 管理员修改用户请求，缺省字段保持不变
type UpdateUserRequest struct {
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Active *bool   `json:"active"`
}

// Register 注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	user, err := h.svc.Register(c.Request.Context(), application.RegisterCommand{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, user)
}

// Login 登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	token, err := h.svc.Login(c.Request.Context(), application.LoginCommand{Email: req.Email, Password: req.Password})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, token)
}

// Me 当前用户
func (h *Handler) Me(c *gin.Context) {
	userID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	user, err := h.svc.GetUser(c.Request.Context(), userID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, user)
}

// ListUsers 管理端用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	res, err := h.svc.ListUsers(c.Request.Context(), page, size)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, res)
}

// GetUser 管理端用户详情
func (h *Handler) GetUser(c *gin.Context) {
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateUser 管理端修改用户
func (h *Handler) UpdateUser(c *gin.Context) {
	actorID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err)
		return
	}
	user, err := h.svc.UpdateUser(c.Request.Context(), application.UpdateUserCommand{
		ActorID: actorID,
		UserID:  id,
		Name:    req.Name,
		Role:    req.Role,
		Active:  req.Active,
	})
	if err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, user)
}

// DeactivateUser 删除即停用，账号与订单记录保留
func (h *Handler) DeactivateUser(c *gin.Context) {
	actorID, ok := httpx.CurrentUserID(c)
	if !ok {
		return
	}
	id, ok := httpx.ParamID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeactivateUser(c.Request.Context(), actorID, id); err != nil {
		httpx.Error(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "active": false})
}
