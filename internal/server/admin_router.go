package server

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/sessions"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/datamodels/product"
	"github.com/example/gadgetcave/internal/middleware"
	"github.com/example/gadgetcave/internal/service"
	webcontrollers "github.com/example/gadgetcave/web/controllers"
)

// NewAdminSessions 后台会话管理器
func NewAdminSessions(cfg *config.SessionConfig) *sessions.Sessions {
	cookie := cfg.Cookie
	if cookie == "" {
		cookie = "gadgetcave_admin"
	}
	expires := cfg.Expires
	if expires <= 0 {
		expires = 24 * time.Hour
	}
	return sessions.New(sessions.Config{
		Cookie:       cookie,
		Expires:      expires,
		AllowReclaim: true,
	})
}

// RegisterAdminRoutes 注册后台管理端的 HTTP 路由
// 端口通常是 8081，与前台 Web 服务分离。
func RegisterAdminRoutes(app *iris.Application, cfg *config.Config, svc *Services) {
	sess := NewAdminSessions(&cfg.AdminSession)
	api := app.Party("/api")

	// ---------- 登录 ----------

	api.Post("/login", middleware.RateLimit(&cfg.RateLimit), func(ctx iris.Context) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		u, err := svc.Users.Authenticate(ctx.Request().Context(), req.Username, req.Password)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		if !u.IsStaff {
			ctx.StopWithJSON(iris.StatusForbidden, iris.Map{"code": iris.StatusForbidden, "msg": "staff account required"})
			return
		}
		sess.Start(ctx).Set(middleware.AdminSessionKey, u.ID)
		zap.L().Info("admin login", zap.Int64("user_id", u.ID), zap.String("username", u.Username))
		webcontrollers.OK(ctx, u)
	})

	api.Post("/logout", func(ctx iris.Context) {
		sess.Destroy(ctx)
		webcontrollers.OK(ctx, iris.Map{"logged_out": true})
	})

	staff := api.Party("/", middleware.RequireStaff(sess))

	// ---------- 分类管理 ----------

	staff.Get("/categories", func(ctx iris.Context) {
		list, err := svc.Admin.ListCategories(ctx.Request().Context(), ctx.URLParamTrim("q"))
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, list)
	})

	staff.Post("/categories", func(ctx iris.Context) {
		var req service.CategoryInput
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		c, err := svc.Admin.CreateCategory(ctx.Request().Context(), req)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.Created(ctx, c)
	})

	staff.Put("/categories/{id:int64}", func(ctx iris.Context) {
		var req service.CategoryInput
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		c, err := svc.Admin.UpdateCategory(ctx.Request().Context(), ctx.Params().GetInt64Default("id", 0), req)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, c)
	})

	staff.Delete("/categories/{id:int64}", func(ctx iris.Context) {
		if err := svc.Admin.DeleteCategory(ctx.Request().Context(), ctx.Params().GetInt64Default("id", 0)); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, nil)
	})

	// ---------- 商品管理 ----------

	staff.Get("/products", func(ctx iris.Context) {
		f := product.Filter{
			CategoryID: ctx.URLParamInt64Default("category_id", 0),
			Keyword:    ctx.URLParamTrim("q"),
		}
		if v := ctx.URLParamTrim("available"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				webcontrollers.BadRequest(ctx, "available must be true or false")
				return
			}
			f.Available = &b
		}
		list, err := svc.Admin.ListProducts(ctx.Request().Context(), f)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, list)
	})

	staff.Post("/products", func(ctx iris.Context) {
		var req service.ProductInput
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		p, err := svc.Admin.CreateProduct(ctx.Request().Context(), req)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.Created(ctx, p)
	})

	staff.Put("/products/{id:int64}", func(ctx iris.Context) {
		var req service.ProductInput
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		p, err := svc.Admin.UpdateProduct(ctx.Request().Context(), ctx.Params().GetInt64Default("id", 0), req)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, p)
	})

	staff.Delete("/products/{id:int64}", func(ctx iris.Context) {
		if err := svc.Admin.DeleteProduct(ctx.Request().Context(), ctx.Params().GetInt64Default("id", 0)); err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, nil)
	})

	// ---------- 订单管理 ----------

	staff.Get("/orders", func(ctx iris.Context) {
		f, ok := orderFilter(ctx)
		if !ok {
			return
		}
		list, err := svc.Orders.List(ctx.Request().Context(), f)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		views := make([]webcontrollers.OrderView, 0, len(list))
		for _, o := range list {
			views = append(views, webcontrollers.NewOrderView(o))
		}
		webcontrollers.OK(ctx, views)
	})

	// 导出 Excel，筛选条件与列表一致
	staff.Get("/orders/export", func(ctx iris.Context) {
		f, ok := orderFilter(ctx)
		if !ok {
			return
		}
		ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=orders-%s.xlsx", time.Now().Format("20060102")))
		ctx.ContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		n, err := svc.Orders.ExportXLSX(ctx.Request().Context(), f, ctx.ResponseWriter())
		if err != nil {
			zap.L().Error("export orders failed", zap.Error(err))
			ctx.StatusCode(iris.StatusInternalServerError)
			return
		}
		zap.L().Info("orders exported", zap.Int("count", n))
	})

	staff.Get("/orders/{id:int64}", func(ctx iris.Context) {
		o, err := svc.Orders.Detail(ctx.Request().Context(), ctx.Params().GetInt64Default("id", 0))
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, webcontrollers.NewOrderView(o))
	})

	staff.Get("/orders/{id:int64}/events", func(ctx iris.Context) {
		list, err := svc.Orders.Events(ctx.Request().Context(), ctx.Params().GetInt64Default("id", 0))
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, list)
	})

	staff.Post("/orders/actions/make-paid", bulkAction(svc.Orders.MakePaid))
	staff.Post("/orders/actions/mark-shipped", bulkAction(svc.Orders.MarkShipped))

	staff.Put("/orders/{id:int64}/status", func(ctx iris.Context) {
		var req struct {
			Status        string `json:"status"`
			PaymentStatus string `json:"payment_status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		o, err := svc.Orders.SetStatus(ctx.Request().Context(), ctx.Params().GetInt64Default("id", 0), req.Status, req.PaymentStatus)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, webcontrollers.NewOrderView(o))
	})

	// ---------- 购物车 / 用户 / 监控 ----------

	staff.Get("/carts", func(ctx iris.Context) {
		list, err := svc.Admin.ListCarts(ctx.Request().Context())
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		views := make([]webcontrollers.CartView, 0, len(list))
		for _, c := range list {
			views = append(views, webcontrollers.NewCartView(c))
		}
		webcontrollers.OK(ctx, views)
	})

	staff.Get("/users", func(ctx iris.Context) {
		list, err := svc.Users.ListAll(ctx.Request().Context())
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		webcontrollers.OK(ctx, list)
	})

	staff.Get("/stats", func(ctx iris.Context) {
		webcontrollers.OK(ctx, service.GetMonitor().GetStats())
	})
}

// orderFilter 解析后台订单筛选参数
func orderFilter(ctx iris.Context) (order.Filter, bool) {
	f := order.Filter{
		Search: ctx.URLParamTrim("q"),
		Limit:  ctx.URLParamIntDefault("limit", 0),
	}
	if v := ctx.URLParamTrim("paid"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			webcontrollers.BadRequest(ctx, "paid must be true or false")
			return f, false
		}
		f.Paid = &b
	}
	if v := ctx.URLParamTrim("status"); v != "" {
		st, err := order.ParseStatus(v)
		if err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return f, false
		}
		f.Status = st
	}
	if v := ctx.URLParamTrim("payment_status"); v != "" {
		ps, err := order.ParsePaymentStatus(v)
		if err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return f, false
		}
		f.PaymentStatus = ps
	}
	return f, true
}

// bulkAction 批量操作，返回更新条数
func bulkAction(fn func(ctx context.Context, ids []int64) (int64, error)) iris.Handler {
	return func(ctx iris.Context) {
		var req struct {
			IDs []int64 `json:"ids"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			webcontrollers.BadRequest(ctx, err.Error())
			return
		}
		if len(req.IDs) == 0 {
			webcontrollers.BadRequest(ctx, "ids is required")
			return
		}
		n, err := fn(ctx.Request().Context(), req.IDs)
		if err != nil {
			webcontrollers.Fail(ctx, err)
			return
		}
		word := "orders were"
		if n == 1 {
			word = "order was"
		}
		webcontrollers.OK(ctx, iris.Map{"updated": n, "message": fmt.Sprintf("%d %s successfully updated.", n, word)})
	}
}
