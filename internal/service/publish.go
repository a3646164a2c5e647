package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/events"
)

// publish 事务提交后投递事件，失败只记录不回滚
func publish(ctx context.Context, pub events.Publisher, e events.Event) {
	if pub == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}
	if err := pub.Publish(ctx, e); err != nil {
		GetMonitor().RecordEventError()
		zap.L().Warn("publish order event failed",
			zap.String("type", string(e.Type)), zap.Int64("order_id", e.OrderID), zap.Error(err))
		return
	}
	GetMonitor().RecordEventPublished()
}

func orderEvent(t events.Type, o *order.Order) events.Event {
	e := events.Event{
		Type:          t,
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
	}
	if len(o.Items) > 0 {
		e.Total = o.TotalCost().StringFixed(2)
	}
	if o.TransactionID != nil {
		e.TransactionID = *o.TransactionID
	}
	return e
}
