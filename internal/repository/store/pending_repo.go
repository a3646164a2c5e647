package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/gadgetcave/internal/datamodels/pending"
)

type pendingRepo struct {
	db *gorm.DB
}

// NewPendingRepository 创建 "立即购买" 暂存仓储
func NewPendingRepository(db *gorm.DB) pending.Repository {
	return &pendingRepo{db: db}
}

func (r *pendingRepo) Create(ctx context.Context, p *pending.Purchase) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

func (r *pendingRepo) GetByToken(ctx context.Context, token string) (*pending.Purchase, error) {
	var p pending.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("token = ?", token).
		First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pendingRepo) Consume(ctx context.Context, token string) (bool, error) {
	res := r.db.WithContext(ctx).Where("token = ?", token).Delete(&pending.Purchase{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *pendingRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&pending.Purchase{})
	return res.RowsAffected, res.Error
}
