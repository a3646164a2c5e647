package controllers

import (
	"fmt"
	"net/url"

	"github.com/kataras/iris/v12"

	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/middleware"
	"github.com/example/gadgetcave/internal/service"
)

// CheckoutController 立即购买、结算预览与下单
type CheckoutController struct {
	checkoutService *service.CheckoutService
}

func NewCheckoutController(checkoutSvc *service.CheckoutService) *CheckoutController {
	return &CheckoutController{checkoutService: checkoutSvc}
}

// BuyNow POST /api/buy-now/{id}，游客可用
func (c *CheckoutController) BuyNow(ctx iris.Context) {
	productID := ctx.Params().GetInt64Default("id", 0)
	qty, ok := readQuantity(ctx)
	if !ok {
		return
	}
	pp, err := c.checkoutService.StageBuyNow(ctx.Request().Context(), middleware.UserID(ctx), productID, qty)
	if err != nil {
		Fail(ctx, err)
		return
	}
	Created(ctx, iris.Map{
		"pending_token": pp.Token,
		"expires_at":    pp.ExpiresAt,
		"checkout_url":  "/api/checkout?pending=" + url.QueryEscape(pp.Token),
	})
}

type summaryLine struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int64  `json:"quantity"`
	Cost      string `json:"cost"`
}

// Preview GET /api/checkout[?pending=token]
func (c *CheckoutController) Preview(ctx iris.Context) {
	sum, err := c.checkoutService.Preview(ctx.Request().Context(), middleware.UserID(ctx), ctx.URLParamTrim("pending"))
	if err != nil {
		Fail(ctx, err)
		return
	}
	lines := make([]summaryLine, 0, len(sum.Lines))
	for _, l := range sum.Lines {
		lines = append(lines, summaryLine{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     money(l.Price),
			Quantity:  l.Quantity,
			Cost:      money(l.Cost()),
		})
	}
	OK(ctx, iris.Map{
		"source":        sum.Source,
		"pending_token": sum.PendingToken,
		"lines":         lines,
		"total":         money(sum.Total),
	})
}

type placeOrderRequest struct {
	PendingToken string `json:"pending_token"`
	order.Shipping
}

// PlaceOrder POST /api/orders
func (c *CheckoutController) PlaceOrder(ctx iris.Context) {
	var req placeOrderRequest
	if err := ctx.ReadJSON(&req); err != nil {
		BadRequest(ctx, err.Error())
		return
	}
	o, err := c.checkoutService.PlaceOrder(ctx.Request().Context(), middleware.UserID(ctx), req.PendingToken, req.Shipping)
	if err != nil {
		Fail(ctx, err)
		return
	}
	Created(ctx, iris.Map{
		"order":       NewOrderView(o),
		"access_key":  o.AccessKey,
		"payment_url": orderURL(o, "payment"),
	})
}

func orderURL(o *order.Order, page string) string {
	return fmt.Sprintf("/api/orders/%d/%s?key=%s", o.ID, page, url.QueryEscape(o.AccessKey))
}
