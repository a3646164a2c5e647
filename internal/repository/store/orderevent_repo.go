package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/gadgetcave/internal/datamodels/orderevent"
)

type orderEventRepo struct {
	db *gorm.DB
}

// NewOrderEventRepository 创建订单事件仓储
func NewOrderEventRepository(db *gorm.DB) orderevent.Repository {
	return &orderEventRepo{db: db}
}

func (r *orderEventRepo) Create(ctx context.Context, e *orderevent.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *orderEventRepo) ListByOrder(ctx context.Context, orderID int64) ([]*orderevent.Event, error) {
	var list []*orderevent.Event
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
