package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/gadgetcave/internal/middleware"
	"github.com/example/gadgetcave/internal/service"
)

// CartController 购物车接口，均需登录
type CartController struct {
	cartService *service.CartService
}

func NewCartController(cartSvc *service.CartService) *CartController {
	return &CartController{cartService: cartSvc}
}

type quantityRequest struct {
	Quantity int64 `json:"quantity"`
}

// readQuantity 请求体为空时数量默认为 1
func readQuantity(ctx iris.Context) (int64, bool) {
	req := quantityRequest{Quantity: 1}
	if !readOptionalJSON(ctx, &req) {
		return 0, false
	}
	return req.Quantity, true
}

func (c *CartController) Get(ctx iris.Context) {
	crt, err := c.cartService.View(ctx.Request().Context(), middleware.UserID(ctx))
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, NewCartView(crt))
}

// Add POST /api/cart/add/{id}
func (c *CartController) Add(ctx iris.Context) {
	productID := ctx.Params().GetInt64Default("id", 0)
	qty, ok := readQuantity(ctx)
	if !ok {
		return
	}
	crt, err := c.cartService.Add(ctx.Request().Context(), middleware.UserID(ctx), productID, qty)
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, NewCartView(crt))
}

// Remove POST /api/cart/remove/{id}
func (c *CartController) Remove(ctx iris.Context) {
	productID := ctx.Params().GetInt64Default("id", 0)
	crt, err := c.cartService.Remove(ctx.Request().Context(), middleware.UserID(ctx), productID)
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, NewCartView(crt))
}
