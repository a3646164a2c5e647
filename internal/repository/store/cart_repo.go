package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/gadgetcave/internal/datamodels/cart"
)

type cartRepo struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) cart.Repository {
	return &cartRepo{db: db}
}

func (r *cartRepo) withItems(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("cart_items.id ASC") }).
		Preload("Items.Product")
}

func (r *cartRepo) GetByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.withItems(ctx).Where("user_id = ?", userID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetOrCreate 并发首次加购时依赖 user_id 唯一索引去重
func (r *cartRepo) GetOrCreate(ctx context.Context, userID int64) (*cart.Cart, error) {
	c := cart.Cart{UserID: userID}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&c).Error; err != nil {
		return nil, err
	}
	return r.GetByUser(ctx, userID)
}

func (r *cartRepo) GetItem(ctx context.Context, cartID, productID int64) (*cart.CartItem, error) {
	var item cart.CartItem
	if err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepo) CreateItem(ctx context.Context, item *cart.CartItem) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error; err != nil {
		return err
	}
	return r.touch(ctx, item.CartID)
}

func (r *cartRepo) UpdateItemQuantity(ctx context.Context, itemID, quantity int64) error {
	var item cart.CartItem
	if err := r.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(&item).Update("quantity", quantity).Error; err != nil {
		return err
	}
	return r.touch(ctx, item.CartID)
}

func (r *cartRepo) DeleteItem(ctx context.Context, cartID, productID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&cart.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	return true, r.touch(ctx, cartID)
}

func (r *cartRepo) ClearItems(ctx context.Context, cartID int64) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&cart.CartItem{}).Error; err != nil {
		return err
	}
	return r.touch(ctx, cartID)
}

func (r *cartRepo) ListAll(ctx context.Context) ([]*cart.Cart, error) {
	var list []*cart.Cart
	if err := r.withItems(ctx).Order("id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// touch 刷新购物车 updated_at
func (r *cartRepo) touch(ctx context.Context, cartID int64) error {
	return r.db.WithContext(ctx).Model(&cart.Cart{}).
		Where("id = ?", cartID).
		UpdateColumn("updated_at", time.Now()).Error
}
