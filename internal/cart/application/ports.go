package application

import (
	"context"
	"errors"

	"github.com/wyfcoding/ecommerce/internal/cart/domain"
	catalogdomain "github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// ProductReader 购物车需要的商品读取能力
type ProductReader interface {
	GetByID(ctx context.Context, id uint) (*catalogdomain.Product, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*catalogdomain.Product, error)
}

// UserChecker 校验用户存在
type UserChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// cartLoader 读取或懒创建购物车，命令与查询服务共用
type cartLoader struct {
	carts domain.CartRepository
	users UserChecker
}

// getOrCreate 并发首次访问时依赖 user_id 唯一索引，创建失败后重读
func (l cartLoader) getOrCreate(ctx context.Context, userID uint) (*domain.Cart, error) {
	cart, err := l.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	ok, err := l.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errorx.NotFound("User", "id", userID)
	}

	cart = &domain.Cart{UserID: userID}
	createErr := l.carts.Create(ctx, cart)
	if createErr == nil {
		logger.Debug(ctx, "cart created", "user_id", userID, "cart_id", cart.ID)
		return cart, nil
	}

	existing, err := l.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Join(createErr, err)
	}
	if existing == nil {
		return nil, createErr
	}
	return existing, nil
}
