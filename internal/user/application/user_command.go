package application

import (
	"context"
	"net/mail"
	"strings"

	"github.com/wyfcoding/ecommerce/internal/user/domain"
	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

const minPasswordLength = 6

// RegisterCommand 注册命令
type RegisterCommand struct {
	Email    string
	Password string
	Name     string
}

// UpdateUserCommand 管理员修改用户，nil 字段保持不变
type UpdateUserCommand struct {
	ActorID uint
	UserID  uint
	Name    *string
	Role    *string
	Active  *bool
}

// LoginCommand 登录命令
type LoginCommand struct {
	Email    string
	Password string
}

// UserCommandService 用户命令服务
type UserCommandService struct {
	repo   domain.UserRepository
	hasher domain.PasswordHasher
	tokens domain.TokenIssuer
}

// NewUserCommandService 创建用户命令服务
func NewUserCommandService(repo domain.UserRepository, hasher domain.PasswordHasher, tokens domain.TokenIssuer) *UserCommandService {
	return &UserCommandService{repo: repo, hasher: hasher, tokens: tokens}
}

// Register 注册普通用户，邮箱重复返回 Conflict
func (s *UserCommandService) Register(ctx context.Context, cmd RegisterCommand) (*UserDTO, error) {
	if _, err := mail.ParseAddress(cmd.Email); err != nil {
		return nil, errorx.InvalidArgument("invalid email: %s", cmd.Email)
	}
	if len(cmd.Password) < minPasswordLength {
		return nil, errorx.InvalidArgument("password must be at least %d characters", minPasswordLength)
	}

	existing, err := s.repo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errorx.Conflict("email already registered: %s", existing.Email)
	}

	hash, err := s.hasher.Hash(cmd.Password)
	if err != nil {
		return nil, err
	}
	user := domain.NewUser(cmd.Email, cmd.Name, hash)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID)
	return toUserDTO(user), nil
}

// Login 校验密码并签发令牌；邮箱不存在与密码错误返回同一错误
func (s *UserCommandService) Login(ctx context.Context, cmd LoginCommand) (*TokenDTO, error) {
	user, err := s.repo.GetByEmail(ctx, cmd.Email)
	if err != nil {
		return nil, err
	}
	if user == nil || !s.hasher.Compare(user.PasswordHash, cmd.Password) {
		return nil, errorx.Unauthenticated("invalid email or password")
	}
	if !user.Active {
		return nil, errorx.Unauthenticated("account is deactivated")
	}

	token, exp, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	return &TokenDTO{AccessToken: token, TokenType: "Bearer", ExpiresAt: exp, User: toUserDTO(user)}, nil
}

// EnsureAdmin 启动时创建管理员；已存在的账号只提升角色，不改密码
func (s *UserCommandService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user != nil {
		if user.IsAdmin() {
			return nil
		}
		user.Role = domain.RoleAdmin
		logger.Warn(ctx, "promoting existing user to admin", "user_id", user.ID)
		return s.repo.Save(ctx, user)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	admin := domain.NewUser(email, "Administrator", hash)
	admin.Role = domain.RoleAdmin
	if err := s.repo.Save(ctx, admin); err != nil {
		return err
	}
	logger.Info(ctx, "admin user created", "user_id", admin.ID)
	return nil
}

// UpdateUser 修改用户名、角色或启用状态；管理员不能停用或降级自己
func (s *UserCommandService) UpdateUser(ctx context.Context, cmd UpdateUserCommand) (*UserDTO, error) {
	user, err := s.repo.GetByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errorx.NotFound("User", "id", cmd.UserID)
	}

	if cmd.Name != nil {
		user.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Role != nil {
		role, ok := domain.ParseRole(*cmd.Role)
		if !ok {
			return nil, errorx.InvalidArgument("invalid role: %s", *cmd.Role)
		}
		if cmd.ActorID == user.ID && role != user.Role {
			return nil, errorx.InvalidArgument("cannot change your own role")
		}
		user.Role = role
	}
	if cmd.Active != nil {
		if cmd.ActorID == user.ID && !*cmd.Active {
			return nil, errorx.InvalidArgument("cannot deactivate your own account")
		}
		user.Active = *cmd.Active
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	logger.Info(ctx, "user updated", "user_id", user.ID, "role", user.Role, "active", user.Active, "by", cmd.ActorID)
	return toUserDTO(user), nil
}

// DeactivateUser 停用账号，记录保留
func (s *UserCommandService) DeactivateUser(ctx context.Context, actorID, userID uint) error {
	inactive := false
	_, err := s.UpdateUser(ctx, UpdateUserCommand{ActorID: actorID, UserID: userID, Active: &inactive})
	return err
}
