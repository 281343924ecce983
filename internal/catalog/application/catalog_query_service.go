package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
	"github.com/wyfcoding/ecommerce/pkg/errorx"
	"github.com/wyfcoding/ecommerce/pkg/utils"
)

// CatalogQueryService 商品目录查询服务
type CatalogQueryService struct {
	repo domain.ProductRepository
}

// NewCatalogQueryService 创建商品目录查询服务实例
func NewCatalogQueryService(repo domain.ProductRepository) *CatalogQueryService {
	return &CatalogQueryService{repo: repo}
}

// GetProduct 根据 ID 获取商品
func (s *CatalogQueryService) GetProduct(ctx context.Context, id uint) (*ProductDTO, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errorx.NotFound("Product", "id", id)
	}
	return toProductDTO(p), nil
}

// ListProducts 分页列出商品，category 为空时不过滤
func (s *CatalogQueryService) ListProducts(ctx context.Context, category string, page, pageSize int) (*ProductPage, error) {
	pg := utils.NewPagination(page, pageSize)
	products, total, err := s.repo.List(ctx, category, pg.Offset(), pg.Limit())
	if err != nil {
		return nil, err
	}
	items := make([]*ProductDTO, len(products))
	for i, p := range products {
		items[i] = toProductDTO(p)
	}
	return &ProductPage{Items: items, Total: total, Page: pg.Page, PageSize: pg.PageSize}, nil
}
