package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/datamodels/pending"
	"github.com/example/gadgetcave/internal/datamodels/product"
	"github.com/example/gadgetcave/internal/events"
	"github.com/example/gadgetcave/internal/repository/store"
)

// Source 下单来源
type Source string

const (
	SourceCart   Source = "cart"
	SourceBuyNow Source = "buy_now"
)

// Line 结算行，Price 为当前商品价格
type Line struct {
	Product  *product.Product `json:"product"`
	Quantity int64            `json:"quantity"`
	Price    decimal.Decimal  `json:"price"`
}

func (l Line) Cost() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

// Summary 结算预览
type Summary struct {
	Source       Source          `json:"source"`
	PendingToken string          `json:"pending_token,omitempty"`
	Lines        []Line          `json:"lines"`
	Total        decimal.Decimal `json:"total"`
}

// CheckoutService 立即购买与购物车结算
type CheckoutService struct {
	repos      *store.Repositories
	pub        events.Publisher
	validate   *validator.Validate
	pendingTTL time.Duration
	now        func() time.Time
}

func NewCheckoutService(repos *store.Repositories, pub events.Publisher, pendingTTL time.Duration) *CheckoutService {
	if pendingTTL <= 0 {
		pendingTTL = 30 * time.Minute
	}
	return &CheckoutService{
		repos:      repos,
		pub:        pub,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		pendingTTL: pendingTTL,
		now:        time.Now,
	}
}

func onlyAvailable(p *product.Product) *StockError {
	return &StockError{
		ProductID: p.ID,
		Message:   fmt.Sprintf("Only %d items of %s are available.", p.Stock, p.Name),
	}
}

func userRef(userID int64) *int64 {
	if userID <= 0 {
		return nil
	}
	id := userID
	return &id
}

// StageBuyNow 暂存 "立即购买"，返回的 token 在结算时使用；userID 为 0 表示游客
func (s *CheckoutService) StageBuyNow(ctx context.Context, userID, productID, quantity int64) (*pending.Purchase, error) {
	if quantity < 1 {
		return nil, fieldError("quantity", "Ensure this value is greater than or equal to 1.")
	}
	p, err := s.repos.Products.GetByID(ctx, productID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !p.Available {
		return nil, ErrProductUnavailable
	}
	if quantity > p.Stock {
		return nil, onlyAvailable(p)
	}

	now := s.now()
	if n, err := s.repos.Pending.PurgeExpired(ctx, now); err != nil {
		zap.L().Warn("purge expired pending purchases failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Debug("purged expired pending purchases", zap.Int64("count", n))
	}

	pp := &pending.Purchase{
		Token:     uuid.NewString(),
		UserID:    userRef(userID),
		ProductID: p.ID,
		Quantity:  quantity,
		ExpiresAt: now.Add(s.pendingTTL),
	}
	if err := s.repos.Pending.Create(ctx, pp); err != nil {
		return nil, err
	}
	pp.Product = p
	return pp, nil
}

func (s *CheckoutService) loadPending(ctx context.Context, repos *store.Repositories, userID int64, token string) (*pending.Purchase, error) {
	pp, err := repos.Pending.GetByToken(ctx, token)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrPendingNotFound
		}
		return nil, err
	}
	if !pp.OwnedBy(userID) || pp.Expired(s.now()) {
		return nil, ErrPendingNotFound
	}
	return pp, nil
}

// Preview 结算页数据，token 非空时为立即购买，否则为购物车
// 立即购买库存不足时丢弃暂存记录
func (s *CheckoutService) Preview(ctx context.Context, userID int64, token string) (*Summary, error) {
	if token != "" {
		pp, err := s.loadPending(ctx, s.repos, userID, token)
		if err != nil {
			return nil, err
		}
		if pp.Product == nil {
			return nil, ErrProductNotFound
		}
		if !pp.Product.Available || pp.Quantity > pp.Product.Stock {
			if _, err := s.repos.Pending.Consume(ctx, token); err != nil {
				zap.L().Warn("discard pending purchase failed", zap.String("token", token), zap.Error(err))
			}
			if !pp.Product.Available {
				return nil, ErrProductUnavailable
			}
			return nil, onlyAvailable(pp.Product)
		}
		line := Line{Product: pp.Product, Quantity: pp.Quantity, Price: pp.Product.Price}
		return &Summary{Source: SourceBuyNow, PendingToken: token, Lines: []Line{line}, Total: line.Cost()}, nil
	}

	if userID <= 0 {
		return nil, ErrLoginRequired
	}
	c, err := s.repos.Carts.GetByUser(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if len(c.Items) == 0 {
		return nil, ErrCartEmpty
	}
	sum := &Summary{Source: SourceCart, Total: decimal.Zero}
	for i := range c.Items {
		it := c.Items[i]
		if it.Product == nil {
			return nil, ErrProductNotFound
		}
		if it.Quantity > it.Product.Stock {
			return nil, onlyAvailable(it.Product)
		}
		line := Line{Product: it.Product, Quantity: it.Quantity, Price: it.Product.Price}
		sum.Lines = append(sum.Lines, line)
		sum.Total = sum.Total.Add(line.Cost())
	}
	return sum, nil
}

type lineRequest struct {
	productID int64
	quantity  int64
}

// PlaceOrder 校验收货信息后在一个事务内完成：写订单头与明细、扣减库存、清空来源
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID int64, token string, shipping order.Shipping) (o *order.Order, err error) {
	defer func() { GetMonitor().RecordCheckout(err == nil) }()

	if err := s.validateShipping(shipping); err != nil {
		return nil, err
	}
	if token == "" && userID <= 0 {
		return nil, ErrLoginRequired
	}

	var orderID int64
	err = s.repos.Transaction(ctx, func(tx *store.Repositories) error {
		var (
			reqs   []lineRequest
			cartID int64
		)
		if token != "" {
			pp, err := s.loadPending(ctx, tx, userID, token)
			if err != nil {
				return err
			}
			consumed, err := tx.Pending.Consume(ctx, token)
			if err != nil {
				return err
			}
			if !consumed {
				return ErrPendingNotFound
			}
			reqs = append(reqs, lineRequest{productID: pp.ProductID, quantity: pp.Quantity})
		} else {
			c, err := tx.Carts.GetByUser(ctx, userID)
			if err != nil {
				if store.IsNotFound(err) {
					return ErrCartNotFound
				}
				return err
			}
			if len(c.Items) == 0 {
				return ErrCartEmpty
			}
			cartID = c.ID
			for _, it := range c.Items {
				reqs = append(reqs, lineRequest{productID: it.ProductID, quantity: it.Quantity})
			}
		}

		created := &order.Order{
			UserID:        userRef(userID),
			AccessKey:     uuid.NewString(),
			Shipping:      shipping,
			Status:        order.StatusPending,
			PaymentStatus: order.PaymentPending,
		}
		// 按商品 ID 顺序加锁
		locked := make([]lineRequest, len(reqs))
		copy(locked, reqs)
		sort.Slice(locked, func(i, j int) bool { return locked[i].productID < locked[j].productID })
		prices := make(map[int64]decimal.Decimal, len(locked))
		for _, r := range locked {
			p, err := tx.Products.GetByIDForUpdate(ctx, r.productID)
			if err != nil {
				if store.IsNotFound(err) {
					return ErrProductNotFound
				}
				return err
			}
			if !p.Available {
				return &StockError{ProductID: p.ID, Message: fmt.Sprintf("%s is no longer available.", p.Name)}
			}
			if r.quantity > p.Stock {
				return onlyAvailable(p)
			}
			ok, err := tx.Products.DecrementStock(ctx, p.ID, r.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return onlyAvailable(p)
			}
			prices[p.ID] = p.Price
		}
		for _, r := range reqs {
			created.Items = append(created.Items, order.OrderItem{
				ProductID: r.productID,
				Price:     prices[r.productID],
				Quantity:  r.quantity,
			})
		}
		if err := tx.Orders.Create(ctx, created); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if cartID != 0 {
			if err := tx.Carts.ClearItems(ctx, cartID); err != nil {
				return err
			}
		}
		orderID = created.ID
		return nil
	})
	if err != nil {
		var se *StockError
		if !errors.As(err, &se) && !isBusinessError(err) {
			GetMonitor().RecordDBError()
			zap.L().Error("place order failed", zap.Int64("user_id", userID), zap.Error(err))
		}
		return nil, err
	}

	o, err = s.repos.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("reload order %d: %w", orderID, err)
	}
	zap.L().Info("order created",
		zap.Int64("order_id", o.ID), zap.Int64("user_id", userID), zap.String("total", o.TotalCost().StringFixed(2)))
	publish(ctx, s.pub, orderEvent(events.OrderCreated, o))
	return o, nil
}

func (s *CheckoutService) validateShipping(sh order.Shipping) error {
	err := s.validate.Struct(sh)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make(map[string]string, len(verrs))}
	for _, fe := range verrs {
		out.Fields[jsonFieldName(fe.Field())] = shippingMessage(fe)
	}
	return out
}

func shippingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}

var shippingFields = map[string]string{
	"FirstName":   "first_name",
	"LastName":    "last_name",
	"Email":       "email",
	"Phone":       "phone",
	"HouseShopNo": "house_shop_no",
	"Address":     "address",
	"Landmark":    "landmark",
	"City":        "city",
	"District":    "district",
	"State":       "state",
	"PostalCode":  "postal_code",
}

func jsonFieldName(f string) string {
	if n, ok := shippingFields[f]; ok {
		return n
	}
	return f
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		ErrProductNotFound, ErrProductUnavailable, ErrCartNotFound, ErrCartEmpty,
		ErrPendingNotFound, ErrLoginRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
