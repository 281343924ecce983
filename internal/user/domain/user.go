// Package domain 用户领域模型
package domain

import (
	"strings"
	"time"
)

// Role 用户角色
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User 用户实体
type User struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Name         string    `gorm:"column:name;type:varchar(100)" json:"name"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(100);not null" json:"-"`
	Role         Role      `gorm:"column:role;type:varchar(20);not null;default:USER" json:"role"`
	// Active 停用的账号保留记录，订单仍能关联到用户
	Active bool `gorm:"column:active;not null;default:true" json:"active"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// NewUser 创建普通用户，邮箱统一转小写
func NewUser(email, name, passwordHash string) *User {
	return &User{
		Email:        NormalizeEmail(email),
		Name:         strings.TrimSpace(name),
		PasswordHash: passwordHash,
		Role:         RoleUser,
		Active:       true,
	}
}

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// ParseRole 校验角色名，大小写敏感
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleUser, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

// NormalizeEmail 去空白并转小写
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
