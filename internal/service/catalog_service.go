package service

import (
	"context"
	"fmt"

	"github.com/example/gadgetcave/internal/datamodels/category"
	"github.com/example/gadgetcave/internal/datamodels/product"
	"github.com/example/gadgetcave/internal/repository/store"
)

// CatalogService 前台商品浏览
type CatalogService struct {
	categories category.Repository
	products   product.Repository
}

func NewCatalogService(categories category.Repository, products product.Repository) *CatalogService {
	return &CatalogService{categories: categories, products: products}
}

// Catalog 首页或分类页数据
type Catalog struct {
	Category   *category.Category   `json:"category,omitempty"`
	Categories []*category.Category `json:"categories"`
	Products   []*product.Product   `json:"products"`
}

// Home 全部可售商品，keyword 非空时按名称过滤
func (s *CatalogService) Home(ctx context.Context, keyword string) (*Catalog, error) {
	return s.list(ctx, nil, keyword)
}

// ByCategory 分类下的可售商品
func (s *CatalogService) ByCategory(ctx context.Context, slug string) (*Catalog, error) {
	c, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category %q: %w", slug, err)
	}
	return s.list(ctx, c, "")
}

func (s *CatalogService) list(ctx context.Context, c *category.Category, keyword string) (*Catalog, error) {
	cats, err := s.categories.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	available := true
	f := product.Filter{Available: &available, Keyword: keyword}
	if c != nil {
		f.CategoryID = c.ID
	}
	products, err := s.products.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return &Catalog{Category: c, Categories: cats, Products: products}, nil
}

// Product 商品详情，id 与 slug 需同时匹配且商品可售
func (s *CatalogService) Product(ctx context.Context, id int64, slug string) (*product.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if p.Slug != slug || !p.Available {
		return nil, ErrProductNotFound
	}
	return p, nil
}
