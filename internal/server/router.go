package server

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/mvc"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/middleware"
	webcontrollers "github.com/example/gadgetcave/web/controllers"
)

// RegisterRoutes 注册前台 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config, svc *Services) {
	userCtrl := webcontrollers.NewUserController(svc.Users, svc.Orders)
	cartCtrl := webcontrollers.NewCartController(svc.Carts)
	checkoutCtrl := webcontrollers.NewCheckoutController(svc.Checkout)
	paymentCtrl := webcontrollers.NewPaymentController(svc.Payments)

	api := app.Party("/api")
	api.Use(middleware.JWT(&cfg.JWT, svc.Revocations))

	// 健康检查
	api.Get("/health", func(ctx iris.Context) {
		webcontrollers.OK(ctx, iris.Map{"status": "ok"})
	})

	// 用户注册/登录
	api.Post("/register", middleware.RateLimit(&cfg.RateLimit), userCtrl.PostRegister)
	api.Post("/login", middleware.RateLimit(&cfg.RateLimit), userCtrl.PostLogin)
	api.Post("/logout", middleware.RequireUser, userCtrl.Logout)

	// 商品浏览
	catalog := mvc.New(api.Party("/catalog"))
	catalog.Register(svc.Catalog)
	catalog.Handle(new(webcontrollers.CatalogController))

	// 购物车
	cartAPI := api.Party("/cart", middleware.RequireUser)
	cartAPI.Get("/", cartCtrl.Get)
	cartAPI.Post("/add/{id:int64}", cartCtrl.Add)
	cartAPI.Post("/remove/{id:int64}", cartCtrl.Remove)

	// 立即购买与结算，游客可走立即购买
	checkoutLimit := middleware.RateLimit(&cfg.RateLimit)
	api.Post("/buy-now/{id:int64}", checkoutCtrl.BuyNow)
	api.Get("/checkout", checkoutCtrl.Preview)
	api.Post("/orders", checkoutLimit, checkoutCtrl.PlaceOrder)

	// 订单与付款
	api.Get("/orders", middleware.RequireUser, userCtrl.MyOrders)
	api.Get("/orders/{id:int64}/payment", paymentCtrl.Request)
	api.Post("/orders/{id:int64}/confirm", paymentCtrl.Confirm)
	api.Get("/orders/{id:int64}/confirmation", paymentCtrl.Confirmation)
}
