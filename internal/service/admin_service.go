package service

import (
	"context"
	"strings"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"

	"github.com/example/gadgetcave/internal/datamodels/cart"
	"github.com/example/gadgetcave/internal/datamodels/category"
	"github.com/example/gadgetcave/internal/datamodels/product"
	"github.com/example/gadgetcave/internal/repository/store"
)

// CategoryInput 后台分类表单，Slug 为空时由名称生成
type CategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// ProductInput 后台商品表单，指针字段为 nil 表示更新时不修改
type ProductInput struct {
	CategoryID  *int64           `json:"category_id"`
	Name        *string          `json:"name"`
	Slug        *string          `json:"slug"`
	MainImage   *string          `json:"main_image"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock"`
	Available   *bool            `json:"available"`
}

// maxPrice 对应 decimal(10,2) 的上限
var maxPrice = decimal.New(1, 8)

// AdminService 后台分类、商品、购物车管理
type AdminService struct {
	repos *store.Repositories
}

func NewAdminService(repos *store.Repositories) *AdminService {
	return &AdminService{repos: repos}
}

func (s *AdminService) ListCategories(ctx context.Context, keyword string) ([]*category.Category, error) {
	return s.repos.Categories.List(ctx, keyword)
}

func (s *AdminService) CreateCategory(ctx context.Context, in CategoryInput) (*category.Category, error) {
	c := &category.Category{}
	if err := applyCategory(c, in); err != nil {
		return nil, err
	}
	if err := s.slugFree(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repos.Categories.Create(ctx, c); err != nil {
		if store.IsDuplicate(err) {
			return nil, fieldError("slug", "Category with this Slug already exists.")
		}
		return nil, err
	}
	return c, nil
}

func (s *AdminService) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (*category.Category, error) {
	c, err := s.repos.Categories.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	if err := applyCategory(c, in); err != nil {
		return nil, err
	}
	if err := s.slugFree(ctx, c); err != nil {
		return nil, err
	}
	if err := s.repos.Categories.Update(ctx, c); err != nil {
		if store.IsDuplicate(err) {
			return nil, fieldError("slug", "Category with this Slug already exists.")
		}
		return nil, err
	}
	return c, nil
}

func (s *AdminService) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.repos.Categories.GetByID(ctx, id); err != nil {
		if store.IsNotFound(err) {
			return ErrCategoryNotFound
		}
		return err
	}
	return s.repos.Categories.Delete(ctx, id)
}

func (s *AdminService) slugFree(ctx context.Context, c *category.Category) error {
	existing, err := s.repos.Categories.GetBySlug(ctx, c.Slug)
	if err != nil {
		if store.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return fieldError("slug", "Category with this Slug already exists.")
	}
	return nil
}

func applyCategory(c *category.Category, in CategoryInput) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fieldError("name", "This field is required.")
	}
	c.Name = name
	c.Slug = strings.TrimSpace(in.Slug)
	if c.Slug == "" {
		c.Slug = slug.Make(name)
	}
	if !slug.IsSlug(c.Slug) {
		return fieldError("slug", "Enter a valid slug.")
	}
	return nil
}

func (s *AdminService) ListProducts(ctx context.Context, f product.Filter) ([]*product.Product, error) {
	return s.repos.Products.List(ctx, f)
}

func (s *AdminService) CreateProduct(ctx context.Context, in ProductInput) (*product.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, fieldError("name", "This field is required.")
	}
	if in.CategoryID == nil {
		return nil, fieldError("category_id", "This field is required.")
	}
	if in.Price == nil {
		return nil, fieldError("price", "This field is required.")
	}
	p := &product.Product{Available: true}
	if err := s.applyProduct(ctx, p, in); err != nil {
		return nil, err
	}
	if err := s.repos.Products.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repos.Products.GetByID(ctx, p.ID)
}

func (s *AdminService) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*product.Product, error) {
	p, err := s.repos.Products.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if err := s.applyProduct(ctx, p, in); err != nil {
		return nil, err
	}
	if err := s.repos.Products.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.repos.Products.GetByID(ctx, p.ID)
}

func (s *AdminService) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.repos.Products.GetByID(ctx, id); err != nil {
		if store.IsNotFound(err) {
			return ErrProductNotFound
		}
		return err
	}
	return s.repos.Products.Delete(ctx, id)
}

func (s *AdminService) applyProduct(ctx context.Context, p *product.Product, in ProductInput) error {
	if in.CategoryID != nil {
		if _, err := s.repos.Categories.GetByID(ctx, *in.CategoryID); err != nil {
			if store.IsNotFound(err) {
				return fieldError("category_id", "Select a valid category.")
			}
			return err
		}
		p.CategoryID = *in.CategoryID
		p.Category = nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return fieldError("name", "This field is required.")
		}
		if len(name) > 200 {
			return fieldError("name", "Ensure this value has at most 200 characters.")
		}
		p.Name = name
	}
	if in.Slug != nil {
		p.Slug = strings.TrimSpace(*in.Slug)
	}
	if p.Slug == "" {
		p.Slug = slug.Make(p.Name)
	}
	if in.MainImage != nil {
		p.MainImage = *in.MainImage
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return fieldError("price", "Ensure this value is greater than or equal to 0.")
		}
		if !in.Price.Equal(in.Price.Round(2)) {
			return fieldError("price", "Ensure that there are no more than 2 decimal places.")
		}
		if in.Price.GreaterThanOrEqual(maxPrice) {
			return fieldError("price", "Ensure that there are no more than 8 digits before the decimal point.")
		}
		p.Price = *in.Price
	}
	if in.Stock != nil {
		if *in.Stock < 0 {
			return fieldError("stock", "Ensure this value is greater than or equal to 0.")
		}
		p.Stock = *in.Stock
	}
	if in.Available != nil {
		p.Available = *in.Available
	}
	return nil
}

// ListCarts 全部购物车（含明细与商品）
func (s *AdminService) ListCarts(ctx context.Context) ([]*cart.Cart, error) {
	return s.repos.Carts.ListAll(ctx)
}
