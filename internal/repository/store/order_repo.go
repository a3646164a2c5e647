package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/gadgetcave/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Preload("User")
}

// Create 订单头与明细一起写入，调用方不应在明细上挂 Product
func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Omit("User").Create(o).Error
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.withDetails(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) GetByIDForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ListByUser(ctx context.Context, userID int64) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.withDetails(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) List(ctx context.Context, f order.Filter) ([]*order.Order, error) {
	q := r.withDetails(ctx).Model(&order.Order{})
	if f.Paid != nil {
		q = q.Where("orders.paid = ?", *f.Paid)
	}
	if f.Status != "" {
		q = q.Where("orders.status = ?", f.Status)
	}
	if f.PaymentStatus != "" {
		q = q.Where("orders.payment_status = ?", f.PaymentStatus)
	}
	if f.Search != "" {
		kw := "%" + f.Search + "%"
		q = q.Joins("LEFT JOIN users ON users.id = orders.user_id").
			Where("users.username LIKE ? OR orders.first_name LIKE ? OR orders.last_name LIKE ? OR "+
				"orders.email LIKE ? OR orders.transaction_id LIKE ? OR orders.phone LIKE ?",
				kw, kw, kw, kw, kw, kw)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var list []*order.Order
	if err := q.Order("orders.created_at DESC").Order("orders.id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepo) MarkPaid(ctx context.Context, id int64, transactionID string) (int64, error) {
	values := map[string]interface{}{
		"paid":           true,
		"payment_status": order.PaymentCompleted,
	}
	if transactionID != "" {
		values["transaction_id"] = transactionID
	}
	res := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id = ? AND paid = ?", id, false).
		Updates(values)
	return res.RowsAffected, res.Error
}

func (r *orderRepo) BulkMarkPaid(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"paid":           true,
			"payment_status": order.PaymentCompleted,
		})
	return res.RowsAffected, res.Error
}

func (r *orderRepo) LockUnpaidIDs(ctx context.Context, ids []int64) ([]int64, error) {
	var out []int64
	if len(ids) == 0 {
		return out, nil
	}
	err := r.db.WithContext(ctx).Model(&order.Order{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND paid = ?", ids, false).
		Order("id ASC").
		Pluck("id", &out).Error
	return out, err
}

func (r *orderRepo) BulkSetStatus(ctx context.Context, ids []int64, status order.Status) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&order.Order{}).
		Where("id IN ?", ids).
		Update("status", status)
	return res.RowsAffected, res.Error
}

// SetPaymentStatus 设置为 completed 时同步 paid 标记
func (r *orderRepo) SetPaymentStatus(ctx context.Context, id int64, ps order.PaymentStatus) error {
	values := map[string]interface{}{"payment_status": ps}
	if ps == order.PaymentCompleted {
		values["paid"] = true
	}
	res := r.db.WithContext(ctx).Model(&order.Order{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
