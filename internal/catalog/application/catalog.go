package application

import (
	"context"

	"github.com/wyfcoding/ecommerce/internal/catalog/domain"
)

// CatalogService 商品目录服务门面
type CatalogService struct {
	commandService *CatalogCommandService
	queryService   *CatalogQueryService
}

// NewCatalogService 创建商品目录服务门面
func NewCatalogService(repo domain.ProductRepository) *CatalogService {
	return &CatalogService{
		commandService: NewCatalogCommandService(repo),
		queryService:   NewCatalogQueryService(repo),
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, cmd ProductCommand) (*ProductDTO, error) {
	return s.commandService.CreateProduct(ctx, cmd)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, cmd ProductCommand) (*ProductDTO, error) {
	return s.commandService.UpdateProduct(ctx, id, cmd)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.commandService.DeleteProduct(ctx, id)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*ProductDTO, error) {
	return s.queryService.GetProduct(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, category string, page, pageSize int) (*ProductPage, error) {
	return s.queryService.ListProducts(ctx, category, page, pageSize)
}
