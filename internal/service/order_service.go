package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/datamodels/orderevent"
	"github.com/example/gadgetcave/internal/events"
	"github.com/example/gadgetcave/internal/repository/store"
)

// Viewer 访问订单的身份：登录用户或持有 access key 的游客
type Viewer struct {
	UserID    int64
	AccessKey string
}

// CanSee 订单属于该用户，或 access key 匹配
func (v Viewer) CanSee(o *order.Order) bool {
	if o.UserID != nil && v.UserID > 0 && *o.UserID == v.UserID {
		return true
	}
	return v.AccessKey != "" && v.AccessKey == o.AccessKey
}

func getOrder(ctx context.Context, repo order.Repository, id int64) (*order.Order, error) {
	o, err := repo.GetByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// getOrderForViewer 无权访问时同样返回 ErrOrderNotFound
func getOrderForViewer(ctx context.Context, repo order.Repository, id int64, v Viewer) (*order.Order, error) {
	o, err := getOrder(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	if !v.CanSee(o) {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// OrderService 订单查询与后台订单管理
type OrderService struct {
	repos *store.Repositories
	pub   events.Publisher
}

// NewOrderService 创建订单服务
func NewOrderService(repos *store.Repositories, pub events.Publisher) *OrderService {
	return &OrderService{repos: repos, pub: pub}
}

// MyOrders 用户的订单，最新的在前
func (s *OrderService) MyOrders(ctx context.Context, userID int64) ([]*order.Order, error) {
	return s.repos.Orders.ListByUser(ctx, userID)
}

func (s *OrderService) Get(ctx context.Context, id int64, v Viewer) (*order.Order, error) {
	return getOrderForViewer(ctx, s.repos.Orders, id, v)
}

// List 后台订单列表
func (s *OrderService) List(ctx context.Context, f order.Filter) ([]*order.Order, error) {
	return s.repos.Orders.List(ctx, f)
}

// Detail 后台订单详情
func (s *OrderService) Detail(ctx context.Context, id int64) (*order.Order, error) {
	return getOrder(ctx, s.repos.Orders, id)
}

// Events 订单事件审计记录
func (s *OrderService) Events(ctx context.Context, id int64) ([]*orderevent.Event, error) {
	if _, err := getOrder(ctx, s.repos.Orders, id); err != nil {
		return nil, err
	}
	return s.repos.Events.ListByOrder(ctx, id)
}

// MakePaid 批量标记已支付，返回更新条数；已支付的订单不计数也不再发事件
func (s *OrderService) MakePaid(ctx context.Context, ids []int64) (int64, error) {
	var (
		unpaid []int64
		n      int64
	)
	err := s.repos.Transaction(ctx, func(tx *store.Repositories) error {
		var err error
		if unpaid, err = tx.Orders.LockUnpaidIDs(ctx, ids); err != nil || len(unpaid) == 0 {
			return err
		}
		n, err = tx.Orders.BulkMarkPaid(ctx, unpaid)
		return err
	})
	if err != nil {
		return 0, err
	}
	zap.L().Info("orders marked as paid", zap.Int64s("ids", unpaid), zap.Int64("updated", n))
	s.publishFor(ctx, events.OrderPaid, unpaid)
	return n, nil
}

// MarkShipped 批量标记已发货
func (s *OrderService) MarkShipped(ctx context.Context, ids []int64) (int64, error) {
	n, err := s.repos.Orders.BulkSetStatus(ctx, ids, order.StatusShipped)
	if err != nil {
		return 0, err
	}
	zap.L().Info("orders marked as shipped", zap.Int64s("ids", ids), zap.Int64("updated", n))
	s.publishFor(ctx, events.OrderStatusChanged, ids)
	return n, nil
}

// SetStatus 修改单个订单的状态或支付状态，空字符串表示不修改
func (s *OrderService) SetStatus(ctx context.Context, id int64, status, paymentStatus string) (*order.Order, error) {
	var (
		st  order.Status
		ps  order.PaymentStatus
		err error
	)
	if status != "" {
		if st, err = order.ParseStatus(status); err != nil {
			return nil, fieldError("status", err.Error())
		}
	}
	if paymentStatus != "" {
		if ps, err = order.ParsePaymentStatus(paymentStatus); err != nil {
			return nil, fieldError("payment_status", err.Error())
		}
	}
	if st == "" && ps == "" {
		return nil, fieldError("status", "Nothing to update.")
	}

	var wasPaid bool
	err = s.repos.Transaction(ctx, func(tx *store.Repositories) error {
		locked, err := tx.Orders.GetByIDForUpdate(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				return ErrOrderNotFound
			}
			return err
		}
		wasPaid = locked.Paid
		if st != "" {
			if _, err := tx.Orders.BulkSetStatus(ctx, []int64{id}, st); err != nil {
				return err
			}
		}
		if ps != "" {
			return tx.Orders.SetPaymentStatus(ctx, id, ps)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	o, err := getOrder(ctx, s.repos.Orders, id)
	if err != nil {
		return nil, err
	}
	if st != "" {
		publish(ctx, s.pub, orderEvent(events.OrderStatusChanged, o))
	}
	if ps == order.PaymentCompleted && !wasPaid {
		publish(ctx, s.pub, orderEvent(events.OrderPaid, o))
	}
	return o, nil
}

func (s *OrderService) publishFor(ctx context.Context, t events.Type, ids []int64) {
	for _, id := range ids {
		o, err := s.repos.Orders.GetByID(ctx, id)
		if err != nil {
			continue
		}
		publish(ctx, s.pub, orderEvent(t, o))
	}
}
