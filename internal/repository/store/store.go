package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/example/gadgetcave/internal/datamodels/cart"
	"github.com/example/gadgetcave/internal/datamodels/category"
	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/datamodels/orderevent"
	"github.com/example/gadgetcave/internal/datamodels/pending"
	"github.com/example/gadgetcave/internal/datamodels/product"
	"github.com/example/gadgetcave/internal/datamodels/user"
)

// Repositories 绑定到同一个 *gorm.DB（或事务）的一组仓储
type Repositories struct {
	db *gorm.DB

	Categories category.Repository
	Products   product.Repository
	Users      user.Repository
	Carts      cart.Repository
	Orders     order.Repository
	Pending    pending.Repository
	Events     orderevent.Repository
}

// NewRepositories 创建仓储集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:         db,
		Categories: NewCategoryRepository(db),
		Products:   NewProductRepository(db),
		Users:      NewUserRepository(db),
		Carts:      NewCartRepository(db),
		Orders:     NewOrderRepository(db),
		Pending:    NewPendingRepository(db),
		Events:     NewOrderEventRepository(db),
	}
}

// DB 返回底层连接
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// Transaction 在单个数据库事务中执行 fn，fn 返回错误时整体回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicate 判断是否违反唯一约束（依赖 TranslateError）
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
