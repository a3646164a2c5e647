package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/gadgetcave/internal/datamodels/product"
)

// Cart 购物车，每个用户最多一个
type Cart struct {
	ID        int64      `gorm:"primaryKey" json:"id"`
	UserID    int64      `gorm:"uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem 购物车明细，(cart_id, product_id) 唯一
type CartItem struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	CartID    int64            `gorm:"uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID int64            `gorm:"uniqueIndex:idx_cart_product;not null" json:"product_id"`
	Product   *product.Product `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Quantity  int64            `gorm:"not null" json:"quantity"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Cost 当前价格 × 数量，需已加载 Product
func (i *CartItem) Cost() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// TotalCost 购物车总价
func (c *Cart) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].Cost())
	}
	return total
}

// Repository 购物车仓储接口
type Repository interface {
	// GetByUser 返回用户的购物车（含明细与商品），不存在时返回 gorm.ErrRecordNotFound
	GetByUser(ctx context.Context, userID int64) (*Cart, error)
	// GetOrCreate 确保用户购物车存在
	GetOrCreate(ctx context.Context, userID int64) (*Cart, error)
	GetItem(ctx context.Context, cartID, productID int64) (*CartItem, error)
	CreateItem(ctx context.Context, item *CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID, quantity int64) error
	// DeleteItem 删除明细，返回是否真的删除了记录
	DeleteItem(ctx context.Context, cartID, productID int64) (bool, error)
	ClearItems(ctx context.Context, cartID int64) error
	ListAll(ctx context.Context) ([]*Cart, error)
}
