package application

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/logger"
)

// ProductCommand 创建与更新商品共用的字段
type ProductCommand struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	ImageURL      string
	Category      string
}

func (c ProductCommand) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errorx.InvalidArgument("product name is required")
	}
	if c.Price.IsNegative() {
		return errorx.InvalidArgument("product price must not be negative")
	}
	if c.StockQuantity < 0 {
		return errorx.InvalidArgument("stock quantity must not be negative")
	}
	return nil
}

func (c ProductCommand) apply(p *domain.Product) {
	p.Name = strings.TrimSpace(c.Name)
	p.Description = c.Description
	p.Price = c.Price.Round(2)
	p.StockQuantity = c.StockQuantity
	p.ImageURL = c.ImageURL
	p.Category = c.Category
}

// CatalogCommandService 商品目录命令服务
type CatalogCommandService struct {
	repo domain.ProductRepository
}

// NewCatalogCommandService 创建商品目录命令服务实例
func NewCatalogCommandService(repo domain.ProductRepository) *CatalogCommandService {
	return &CatalogCommandService{repo: repo}
}

// CreateProduct 创建商品
func (s *CatalogCommandService) CreateProduct(ctx context.Context, cmd ProductCommand) (*ProductDTO, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	product := &domain.Product{}
	cmd.apply(product)
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	logger.Info(ctx, "product created", "product_id", product.ID, "stock", product.StockQuantity)
	return toProductDTO(product), nil
}

// UpdateProduct 覆盖更新商品，价格变化不影响已下单的订单
func (s *CatalogCommandService) UpdateProduct(ctx context.Context, id uint, cmd ProductCommand) (*ProductDTO, error) {
	if err := cmd.validate(); err != nil {
		return nil, err
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errorx.NotFound("Product", "id", id)
	}

	oldStock := product.StockQuantity
	cmd.apply(product)
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, err
	}
	if oldStock != product.StockQuantity {
		logger.Info(ctx, "product stock changed", "product_id", id, "old_stock", oldStock, "new_stock", product.StockQuantity)
	}
	return toProductDTO(product), nil
}

// DeleteProduct 软删除商品
func (s *CatalogCommandService) DeleteProduct(ctx context.Context, id uint) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return errorx.NotFound("Product", "id", id)
	}
	return s.repo.Delete(ctx, id)
}
