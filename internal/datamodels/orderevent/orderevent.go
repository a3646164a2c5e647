package orderevent

import (
	"context"
	"time"
)

// Event 订单事件审计记录，由 order-worker 消费消息后写入
type Event struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	OrderID   int64     `gorm:"index;not null" json:"order_id"`
	Type      string    `gorm:"size:32;index;not null" json:"type"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 固定表名
func (Event) TableName() string { return "order_events" }

// Repository 订单事件仓储接口
type Repository interface {
	Create(ctx context.Context, e *Event) error
	ListByOrder(ctx context.Context, orderID int64) ([]*Event, error)
}
