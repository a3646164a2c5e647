package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/gadgetcave/internal/datamodels/category"
)

// Product 商品模型
type Product struct {
	ID          int64              `gorm:"primaryKey" json:"id"`
	CategoryID  int64              `gorm:"index;not null" json:"category_id"`
	Category    *category.Category `gorm:"constraint:OnDelete:CASCADE" json:"category,omitempty"`
	Name        string             `gorm:"size:200;index;not null" json:"name"`
	Slug        string             `gorm:"size:200;index;not null" json:"slug"`
	MainImage   string             `gorm:"size:255" json:"main_image"`
	Description string             `gorm:"type:text" json:"description"`
	Price       decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"price"`
	Stock       int64              `gorm:"not null" json:"stock"` // 不会小于 0
	Available   bool               `gorm:"index;not null" json:"available"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// Filter 商品查询条件，零值表示不过滤
type Filter struct {
	CategoryID int64
	// Available 为 nil 时不过滤可售状态
	Available *bool
	// Keyword 按名称 / 描述模糊匹配
	Keyword string
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	// GetByIDForUpdate 在事务中加行锁读取
	GetByIDForUpdate(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, f Filter) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	// DecrementStock 条件扣减库存（stock >= qty），库存不足时返回 false
	DecrementStock(ctx context.Context, id, qty int64) (bool, error)
}
