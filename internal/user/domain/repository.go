package domain

import (
	"context"
	"time"
)

// UserRepository 用户仓储，查不到时返回 nil, nil
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// Exists 用户存在且未停用
	Exists(ctx context.Context, id uint) (bool, error)
	// List 按 id 升序分页
	List(ctx context.Context, offset, limit int) ([]*User, int64, error)
}

// PasswordHasher 密码哈希
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer 签发访问令牌
type TokenIssuer interface {
	Issue(userID uint, role Role) (token string, expiresAt time.Time, err error)
}
