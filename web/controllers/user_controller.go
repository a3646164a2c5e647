package controllers

import (
	"github.com/kataras/iris/v12"

	"github.com/example/gadgetcave/internal/middleware"
	"github.com/example/gadgetcave/internal/service"
)

// UserController 前台注册、登录、登出与我的订单
type UserController struct {
	userService  *service.UserService
	orderService *service.OrderService
}

// NewUserController 构造函数，供路由层复用同一套逻辑。
func NewUserController(userSvc *service.UserService, orderSvc *service.OrderService) *UserController {
	return &UserController{userService: userSvc, orderService: orderSvc}
}

// PostRegister 注册成功即登录，返回令牌
func (c *UserController) PostRegister(ctx iris.Context) {
	var req service.RegisterInput
	if err := ctx.ReadJSON(&req); err != nil {
		BadRequest(ctx, err.Error())
		return
	}
	sess, err := c.userService.Register(ctx.Request().Context(), req)
	if err != nil {
		Fail(ctx, err)
		return
	}
	Created(ctx, sess)
}

func (c *UserController) PostLogin(ctx iris.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ctx.ReadJSON(&req); err != nil {
		BadRequest(ctx, err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		BadRequest(ctx, "username and password are required")
		return
	}
	sess, err := c.userService.Login(ctx.Request().Context(), req.Username, req.Password)
	if err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, sess)
}

// Logout 作废当前令牌
func (c *UserController) Logout(ctx iris.Context) {
	if err := c.userService.Logout(ctx.Request().Context(), middleware.Claims(ctx)); err != nil {
		Fail(ctx, err)
		return
	}
	OK(ctx, iris.Map{"logged_out": true})
}

// MyOrders 当前用户的订单，最新的在前
func (c *UserController) MyOrders(ctx iris.Context) {
	list, err := c.orderService.MyOrders(ctx.Request().Context(), middleware.UserID(ctx))
	if err != nil {
		Fail(ctx, err)
		return
	}
	views := make([]OrderView, 0, len(list))
	for _, o := range list {
		views = append(views, NewOrderView(o))
	}
	OK(ctx, views)
}
