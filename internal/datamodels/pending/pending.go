package pending

import (
	"context"
	"time"

	"github.com/example/gadgetcave/internal/datamodels/product"
)

// Purchase "立即购买" 的暂存记录，凭 Token 在下单时取回
type Purchase struct {
	ID        int64            `gorm:"primaryKey" json:"-"`
	Token     string           `gorm:"size:36;uniqueIndex;not null" json:"token"`
	UserID    *int64           `gorm:"index" json:"user_id"`
	ProductID int64            `gorm:"index;not null" json:"product_id"`
	Product   *product.Product `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Quantity  int64            `gorm:"not null" json:"quantity"`
	ExpiresAt time.Time        `gorm:"index;not null" json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
}

// TableName 固定表名
func (Purchase) TableName() string { return "pending_purchases" }

// Expired 是否已过期
func (p *Purchase) Expired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}

// OwnedBy 判断暂存记录是否属于当前访问者，游客记录只能由游客取回
func (p *Purchase) OwnedBy(userID int64) bool {
	if p.UserID == nil {
		return userID == 0
	}
	return *p.UserID == userID
}

// Repository 暂存记录仓储接口
type Repository interface {
	Create(ctx context.Context, p *Purchase) error
	GetByToken(ctx context.Context, token string) (*Purchase, error)
	// Consume 删除记录，返回是否删除成功（重复提交时为 false）
	Consume(ctx context.Context, token string) (bool, error)
	// PurgeExpired 清理过期记录
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
