package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/events"
	"github.com/example/gadgetcave/internal/repository/store"
)

// PaymentRequest UPI 付款页数据；AlreadyPaid 为 true 时前端直接跳转到确认页
type PaymentRequest struct {
	Order       *order.Order    `json:"order"`
	AlreadyPaid bool            `json:"already_paid"`
	Total       decimal.Decimal `json:"total"`
	UPIID       string          `json:"upi_id,omitempty"`
	PayeeName   string          `json:"payee_name,omitempty"`
	URI         string          `json:"upi_uri,omitempty"`
}

// PaymentService 手动 UPI 收款，不对接支付网关
type PaymentService struct {
	repos *store.Repositories
	pub   events.Publisher
	cfg   *config.PaymentConfig
}

func NewPaymentService(repos *store.Repositories, pub events.Publisher, cfg *config.PaymentConfig) *PaymentService {
	return &PaymentService{repos: repos, pub: pub, cfg: cfg}
}

func upiEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "%40", "@")
}

// UPIURI 生成 upi://pay 链接，金额保留两位小数
func UPIURI(cfg *config.PaymentConfig, o *order.Order) string {
	cu := cfg.Currency
	if cu == "" {
		cu = "INR"
	}
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%s&cu=%s&tr=%d",
		upiEscape(cfg.UPIID), upiEscape(cfg.PayeeName), o.TotalCost().StringFixed(2), cu, o.ID)
}

// Request 付款页
func (s *PaymentService) Request(ctx context.Context, orderID int64, v Viewer) (*PaymentRequest, error) {
	o, err := getOrderForViewer(ctx, s.repos.Orders, orderID, v)
	if err != nil {
		return nil, err
	}
	req := &PaymentRequest{Order: o, AlreadyPaid: o.Paid, Total: o.TotalCost()}
	if o.Paid {
		return req, nil
	}
	req.UPIID = s.cfg.UPIID
	req.PayeeName = s.cfg.PayeeName
	req.URI = UPIURI(s.cfg, o)
	return req, nil
}

// Confirm 用户提交交易号确认付款，已支付的订单不做任何修改
// 返回值 changed 表示本次调用是否真正完成了支付
func (s *PaymentService) Confirm(ctx context.Context, orderID int64, v Viewer, transactionID string) (o *order.Order, changed bool, err error) {
	transactionID = strings.TrimSpace(transactionID)
	if len(transactionID) > 100 {
		return nil, false, fieldError("transaction_id", "Ensure this value has at most 100 characters.")
	}
	err = s.repos.Transaction(ctx, func(tx *store.Repositories) error {
		locked, err := tx.Orders.GetByIDForUpdate(ctx, orderID)
		if err != nil {
			if store.IsNotFound(err) {
				return ErrOrderNotFound
			}
			return err
		}
		if !v.CanSee(locked) {
			return ErrOrderNotFound
		}
		if locked.Paid {
			return nil
		}
		n, err := tx.Orders.MarkPaid(ctx, orderID, transactionID)
		if err != nil {
			return err
		}
		changed = n == 1
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	o, err = getOrder(ctx, s.repos.Orders, orderID)
	if err != nil {
		return nil, false, err
	}
	if changed {
		GetMonitor().RecordPaymentConfirmed()
		zap.L().Info("payment confirmed", zap.Int64("order_id", orderID), zap.String("transaction_id", transactionID))
		publish(ctx, s.pub, orderEvent(events.OrderPaid, o))
	}
	return o, changed, nil
}

// Confirmation 付款完成页
func (s *PaymentService) Confirmation(ctx context.Context, orderID int64, v Viewer) (*order.Order, error) {
	return getOrderForViewer(ctx, s.repos.Orders, orderID, v)
}
