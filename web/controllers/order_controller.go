package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/gadgetcave/internal/middleware"
	"github.com/example/gadgetcave/internal/service"
)

// PaymentController 付款页、确认付款与付款完成页
type PaymentController struct {
	paymentService *service.PaymentService
}

func NewPaymentController(paymentSvc *service.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentSvc}
}

func viewer(ctx iris.Context) service.Viewer {
	return service.Viewer{UserID: middleware.UserID(ctx), AccessKey: ctx.URLParamTrim("key")}
}

// Request GET /api/orders/{id}/payment
func (c *PaymentController) Request(ctx iris.Context) {
	id := ctx.Params().GetInt64Default("id", 0)
	req, err := c.paymentService.Request(ctx.Request().Context(), id, viewer(ctx))
	if err != nil {
		Fail(ctx, err)
		return
	}
	if req.AlreadyPaid {
		OK(ctx, iris.Map{
			"already_paid": true,
			"redirect":     orderURL(req.Order, "confirmation"),
		})
		return
	}
	OK(ctx, iris.Map{
		"already_paid": false,
		"order":        NewOrderView(req.Order),
		"total":        money(req.Total),
		"upi_id":       req.UPIID,
		"payee_name":   req.PayeeName,
		"upi_uri":      req.URI,
	})
}

// Confirm POST /api/orders/{id}/confirm，已支付时不做修改
func (c *PaymentController) Confirm(ctx iris.Context) {
	id := ctx.Params().GetInt64Default("id", 0)
	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if !readOptionalJSON(ctx, &req) {
		return
	}
	o, changed, err := c.paymentService.Confirm(ctx.Request().Context(), id, viewer(ctx), req.TransactionID)
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, iris.Map{
		"confirmed":    changed,
		"already_paid": !changed,
		"redirect":     orderURL(o, "confirmation"),
	})
}

// Confirmation GET /api/orders/{id}/confirmation
func (c *PaymentController) Confirmation(ctx iris.Context) {
	id := ctx.Params().GetInt64Default("id", 0)
	o, err := c.paymentService.Confirmation(ctx.Request().Context(), id, viewer(ctx))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, NewOrderView(o))
}
