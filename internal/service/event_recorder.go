package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/datamodels/orderevent"
	"github.com/example/gadgetcave/internal/events"
	"github.com/example/gadgetcave/internal/repository/store"
)

// EventRecorder order-worker 使用，将消费到的事件写入审计表
type EventRecorder struct {
	repos *store.Repositories
}

func NewEventRecorder(repos *store.Repositories) *EventRecorder {
	return &EventRecorder{repos: repos}
}

// Handle 实现 events.Handler；订单不存在的事件直接丢弃
func (r *EventRecorder) Handle(ctx context.Context, e events.Event) error {
	if e.Type == "" {
		zap.L().Warn("drop event without type", zap.Int64("order_id", e.OrderID))
		GetMonitor().RecordWorker(false)
		return nil
	}
	if _, err := r.repos.Orders.GetByID(ctx, e.OrderID); err != nil {
		if store.IsNotFound(err) {
			zap.L().Warn("drop event for unknown order", zap.String("type", string(e.Type)), zap.Int64("order_id", e.OrderID))
			GetMonitor().RecordWorker(false)
			return nil
		}
		GetMonitor().RecordDBError()
		GetMonitor().RecordWorker(false)
		return err
	}
	body, err := e.Encode()
	if err != nil {
		return err
	}
	if err := r.repos.Events.Create(ctx, &orderevent.Event{
		OrderID: e.OrderID,
		Type:    string(e.Type),
		Payload: string(body),
	}); err != nil {
		GetMonitor().RecordDBError()
		GetMonitor().RecordWorker(false)
		return fmt.Errorf("record event: %w", err)
	}
	GetMonitor().RecordWorker(true)
	zap.L().Info("order event recorded", zap.String("type", string(e.Type)), zap.Int64("order_id", e.OrderID))
	return nil
}
