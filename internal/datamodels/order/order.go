package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/gadgetcave/internal/datamodels/product"
	"github.com/example/gadgetcave/internal/datamodels/user"
)

// Status 订单履约状态
type Status string

// PaymentStatus 支付状态
type PaymentStatus string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"

	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// ParseStatus 将字符串映射为订单状态
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("invalid order status %q", s)
	}
}

// ParsePaymentStatus 将字符串映射为支付状态
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch ps := PaymentStatus(strings.ToLower(strings.TrimSpace(s))); ps {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return ps, nil
	default:
		return "", fmt.Errorf("invalid payment status %q", s)
	}
}

// Shipping 收货信息
type Shipping struct {
	FirstName   string `gorm:"size:50;not null" json:"first_name" validate:"required,max=50"`
	LastName    string `gorm:"size:50;not null" json:"last_name" validate:"required,max=50"`
	Email       string `gorm:"size:254;not null" json:"email" validate:"required,email,max=254"`
	Phone       string `gorm:"size:15" json:"phone" validate:"omitempty,max=15"`
	HouseShopNo string `gorm:"size:100" json:"house_shop_no" validate:"omitempty,max=100"`
	Address     string `gorm:"size:250;not null" json:"address" validate:"required,max=250"`
	Landmark    string `gorm:"size:250" json:"landmark" validate:"omitempty,max=250"`
	City        string `gorm:"size:100;not null" json:"city" validate:"required,max=100"`
	District    string `gorm:"size:100" json:"district" validate:"omitempty,max=100"`
	State       string `gorm:"size:100" json:"state" validate:"omitempty,max=100"`
	PostalCode  string `gorm:"size:20;not null" json:"postal_code" validate:"required,max=20"`
}

// Order 订单模型，UserID 为空表示游客订单
type Order struct {
	ID     int64      `gorm:"primaryKey" json:"id"`
	UserID *int64     `gorm:"index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE" json:"user,omitempty"`
	// AccessKey 游客凭此访问自己的订单
	AccessKey     string        `gorm:"size:36;uniqueIndex;not null" json:"-"`
	Shipping      Shipping      `gorm:"embedded" json:"shipping"`
	Status        Status        `gorm:"size:20;index;not null" json:"status"`
	PaymentStatus PaymentStatus `gorm:"size:20;index;not null" json:"payment_status"`
	Paid          bool          `gorm:"index;not null" json:"paid"`
	TransactionID *string       `gorm:"size:100" json:"transaction_id"`
	Items         []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt     time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// OrderItem 订单明细，Price 为下单时的价格快照
type OrderItem struct {
	ID        int64            `gorm:"primaryKey" json:"id"`
	OrderID   int64            `gorm:"index;not null" json:"order_id"`
	ProductID int64            `gorm:"index;not null" json:"product_id"`
	Product   *product.Product `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Price     decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity  int64            `gorm:"not null" json:"quantity"`
}

// Cost 快照价 × 数量
func (i *OrderItem) Cost() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// TotalCost 订单总价，需已加载 Items
func (o *Order) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for i := range o.Items {
		total = total.Add(o.Items[i].Cost())
	}
	return total
}

// ProductNames 逗号拼接的商品名，后台列表展示用
func (o *Order) ProductNames() string {
	names := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Product != nil {
			names = append(names, it.Product.Name)
		}
	}
	return strings.Join(names, ", ")
}

// CustomerName 下单用户名，游客订单显示 Guest
func (o *Order) CustomerName() string {
	if o.User == nil {
		return "Guest"
	}
	return o.User.Username
}

// Filter 后台订单查询条件
type Filter struct {
	Paid          *bool
	Status        Status
	PaymentStatus PaymentStatus
	// Search 匹配用户名、姓名、邮箱、交易号、手机号
	Search string
	Limit  int
}

// Repository 订单仓储接口
type Repository interface {
	// Create 同时写入订单头与明细
	Create(ctx context.Context, o *Order) error
	// GetByID 返回订单（含明细、商品、用户）
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*Order, error)
	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	List(ctx context.Context, f Filter) ([]*Order, error)
	// MarkPaid 标记支付完成，只更新尚未支付的订单，返回受影响行数
	MarkPaid(ctx context.Context, id int64, transactionID string) (int64, error)
	// BulkMarkPaid / BulkSetStatus 后台批量操作，返回受影响行数
	BulkMarkPaid(ctx context.Context, ids []int64) (int64, error)
	// LockUnpaidIDs 锁定 ids 中尚未支付的订单并返回其 ID
	LockUnpaidIDs(ctx context.Context, ids []int64) ([]int64, error)
	BulkSetStatus(ctx context.Context, ids []int64, status Status) (int64, error)
	SetPaymentStatus(ctx context.Context, id int64, ps PaymentStatus) error
}
