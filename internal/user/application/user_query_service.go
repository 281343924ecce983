package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/utils"
)

// UserQueryService 用户查询服务
type UserQueryService struct {
	repo domain.UserRepository
}

// NewUserQueryService 创建用户查询服务
func NewUserQueryService(repo domain.UserRepository) *UserQueryService {
	return &UserQueryService{repo: repo}
}

// GetUser 根据 ID 获取用户
func (s *UserQueryService) GetUser(ctx context.Context, id uint) (*UserDTO, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errorx.NotFound("User", "id", id)
	}
	return toUserDTO(u), nil
}

// ListUsers 管理端用户列表
func (s *UserQueryService) ListUsers(ctx context.Context, page, pageSize int) (*UserPage, error) {
	pg := utils.NewPagination(page, pageSize)
	users, total, err := s.repo.List(ctx, pg.Offset(), pg.Limit())
	if err != nil {
		return nil, err
	}
	items := make([]*UserDTO, len(users))
	for i, u := range users {
		items[i] = toUserDTO(u)
	}
	return &UserPage{Items: items, Total: total, Page: pg.Page, PageSize: pg.PageSize}, nil
}
