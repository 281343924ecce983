package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/user/domain"
)

// UserService 用户应用服务门面
type UserService struct {
	commandService *UserCommandService
	queryService   *UserQueryService
}

// NewUserService 创建用户应用服务
func NewUserService(repo domain.UserRepository, hasher domain.PasswordHasher, tokens domain.TokenIssuer) *UserService {
	return &UserService{
		commandService: NewUserCommandService(repo, hasher, tokens),
		queryService:   NewUserQueryService(repo),
	}
}

// Register 注册
func (s *UserService) Register(ctx context.Context, cmd RegisterCommand) (*UserDTO, error) {
	return s.commandService.Register(ctx, cmd)
}

// Login 登录
func (s *UserService) Login(ctx context.Context, cmd LoginCommand) (*TokenDTO, error) {
	return s.commandService.Login(ctx, cmd)
}

// EnsureAdmin 初始化管理员
func (s *UserService) EnsureAdmin(ctx context.Context, email, password string) error {
	return s.commandService.EnsureAdmin(ctx, email, password)
}

// GetUser 查询用户
func (s *UserService) GetUser(ctx context.Context, id uint) (*UserDTO, error) {
	return s.queryService.GetUser(ctx, id)
}

// ListUsers 用户列表
func (s *UserService) ListUsers(ctx context.Context, page, pageSize int) (*UserPage, error) {
	return s.queryService.ListUsers(ctx, page, pageSize)
}

// UpdateUser 修改用户
func (s *UserService) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (*UserDTO, error) {
	return s.commandService.UpdateUser(ctx, cmd)
}

// DeactivateUser 停用用户
func (s *UserService) DeactivateUser(ctx context.Context, actorID, userID uint) error {
	return s.commandService.DeactivateUser(ctx, actorID, userID)
}
