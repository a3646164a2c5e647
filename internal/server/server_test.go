package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/iris-contrib/httpexpect/v2"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/httptest"
	radix "github.com/mediocregopher/radix/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/datamodels/user"
	"github.com/example/gadgetcave/internal/events"
	"github.com/example/gadgetcave/internal/repository/store"
	"github.com/example/gadgetcave/internal/repository/store/storetest"
	"github.com/example/gadgetcave/internal/service"
)

type testEnv struct {
	cfg   *config.Config
	repos *store.Repositories
	pub   *events.Memory
	svc   *Services
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	pool, err := radix.NewPool("tcp", mr.Addr(), 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pool.Close() })

	cfg := config.DefaultConfig()
	cfg.JWT.Secret = "test-secret"
	cfg.RateLimit = config.RateLimitConfig{Capacity: 1000, RefillRate: 1000}
	repos := storetest.New(t)
	pub := &events.Memory{}
	return &testEnv{cfg: cfg, repos: repos, pub: pub, svc: NewServices(cfg, repos, pub, pool)}
}

func (env *testEnv) storefront(t *testing.T) *httptest.Expect {
	app := iris.New()
	RegisterRoutes(app, env.cfg, env.svc)
	return httptest.New(t, app)
}

func (env *testEnv) admin(t *testing.T) *httptest.Expect {
	app := iris.New()
	RegisterAdminRoutes(app, env.cfg, env.svc)
	return httptest.New(t, app)
}

func dataOf(t *testing.T, resp *httpexpect.Response) map[string]interface{} {
	t.Helper()
	body := resp.JSON().Object().Raw()
	assert.EqualValues(t, 0, body["code"])
	d, ok := body["data"].(map[string]interface{})
	require.True(t, ok, "data is not an object: %v", body["data"])
	return d
}

func shippingFixture() order.Shipping {
	return order.Shipping{
		FirstName: "Asha", LastName: "Nair", Email: "asha@example.in",
		Address: "12 MG Road", City: "Kochi", PostalCode: "682001",
	}
}

func shippingJSON(extra map[string]interface{}) map[string]interface{} {
	m := map[string]interface{}{
		"first_name":  "Asha",
		"last_name":   "Nair",
		"email":       "asha@example.in",
		"address":     "12 MG Road",
		"city":        "Kochi",
		"postal_code": "682001",
	}
	for k, v := range extra {
		m[k] = v
	}
	return m
}

func TestStorefront_RegisteredUserCartCheckoutAndPayment(t *testing.T) {
	env := newEnv(t)
	e := env.storefront(t)
	c := storetest.Category(t, env.repos, "phones")
	p := storetest.Product(t, env.repos, c, "pixel", "19999.00", 3)

	e.GET("/api/health").Expect().Status(http.StatusOK)

	reg := dataOf(t, e.POST("/api/register").WithJSON(map[string]string{
		"username": "asha", "phone_number": "9876543210", "password1": "longenough", "password2": "longenough",
	}).Expect().Status(http.StatusCreated))
	token, _ := reg["token"].(string)
	require.NotEmpty(t, token)
	bearer := "Bearer " + token

	catalog := dataOf(t, e.GET("/api/catalog").Expect().Status(http.StatusOK))
	assert.Len(t, catalog["products"], 1)
	e.GET(fmt.Sprintf("/api/catalog/product/%d/%s", p.ID, p.Slug)).Expect().Status(http.StatusOK)
	e.GET(fmt.Sprintf("/api/catalog/product/%d/wrong", p.ID)).Expect().Status(http.StatusNotFound)
	e.GET("/api/catalog/category/" + c.Slug).Expect().Status(http.StatusOK)
	e.GET("/api/catalog/category/missing").Expect().Status(http.StatusNotFound)

	e.POST(fmt.Sprintf("/api/cart/add/%d", p.ID)).Expect().Status(http.StatusUnauthorized)

	cart := dataOf(t, e.POST(fmt.Sprintf("/api/cart/add/%d", p.ID)).
		WithHeader("Authorization", bearer).WithJSON(map[string]int{"quantity": 2}).
		Expect().Status(http.StatusOK))
	assert.Equal(t, "39998.00", cart["total"])

	msg := e.POST(fmt.Sprintf("/api/cart/add/%d", p.ID)).
		WithHeader("Authorization", bearer).WithJSON(map[string]int{"quantity": 2}).
		Expect().Status(http.StatusConflict).JSON().Object().Raw()["msg"]
	assert.Equal(t, "Adding 2 more pixel(s) would exceed stock. Current in cart: 2, Stock: 3.", msg)

	preview := dataOf(t, e.GET("/api/checkout").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK))
	assert.Equal(t, "cart", preview["source"])

	e.POST("/api/orders").WithHeader("Authorization", bearer).
		WithJSON(shippingJSON(map[string]interface{}{"email": "bad"})).
		Expect().Status(http.StatusBadRequest)

	placed := dataOf(t, e.POST("/api/orders").WithHeader("Authorization", bearer).
		WithJSON(shippingJSON(nil)).Expect().Status(http.StatusCreated))
	ord := placed["order"].(map[string]interface{})
	orderID := int64(ord["id"].(float64))
	assert.Equal(t, "39998.00", ord["total"])
	assert.Equal(t, "asha", ord["customer"])

	got, err := env.repos.Products.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Stock)

	pay := dataOf(t, e.GET(fmt.Sprintf("/api/orders/%d/payment", orderID)).
		WithHeader("Authorization", bearer).Expect().Status(http.StatusOK))
	assert.Equal(t, false, pay["already_paid"])
	assert.Equal(t, fmt.Sprintf("upi://pay?pa=gadgetcave@okaxis&pn=GadgetCavePayment&am=39998.00&cu=INR&tr=%d", orderID), pay["upi_uri"])

	confirm := dataOf(t, e.POST(fmt.Sprintf("/api/orders/%d/confirm", orderID)).
		WithHeader("Authorization", bearer).WithJSON(map[string]string{"transaction_id": "T123"}).
		Expect().Status(http.StatusOK))
	assert.Equal(t, true, confirm["confirmed"])
	again := dataOf(t, e.POST(fmt.Sprintf("/api/orders/%d/confirm", orderID)).
		WithHeader("Authorization", bearer).WithJSON(map[string]string{"transaction_id": "T999"}).
		Expect().Status(http.StatusOK))
	assert.Equal(t, true, again["already_paid"])

	pay = dataOf(t, e.GET(fmt.Sprintf("/api/orders/%d/payment", orderID)).
		WithHeader("Authorization", bearer).Expect().Status(http.StatusOK))
	assert.Equal(t, true, pay["already_paid"])

	conf := dataOf(t, e.GET(fmt.Sprintf("/api/orders/%d/confirmation", orderID)).
		WithHeader("Authorization", bearer).Expect().Status(http.StatusOK))
	assert.Equal(t, "T123", conf["transaction_id"])
	assert.Equal(t, "completed", conf["payment_status"])

	mine := e.GET("/api/orders").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK).JSON().Object().Raw()
	assert.Len(t, mine["data"], 1)

	assert.Len(t, env.pub.OfType(events.OrderCreated), 1)
	assert.Len(t, env.pub.OfType(events.OrderPaid), 1)

	e.POST("/api/logout").WithHeader("Authorization", bearer).Expect().Status(http.StatusOK)
	e.GET("/api/cart").WithHeader("Authorization", bearer).Expect().Status(http.StatusUnauthorized)
}

func TestStorefront_GuestBuyNow(t *testing.T) {
	env := newEnv(t)
	e := env.storefront(t)
	c := storetest.Category(t, env.repos, "audio")
	p := storetest.Product(t, env.repos, c, "buds", "1499.50", 1)

	e.POST(fmt.Sprintf("/api/buy-now/%d", p.ID)).WithJSON(map[string]int{"quantity": 2}).
		Expect().Status(http.StatusConflict)

	staged := dataOf(t, e.POST(fmt.Sprintf("/api/buy-now/%d", p.ID)).Expect().Status(http.StatusCreated))
	pending := staged["pending_token"].(string)

	preview := dataOf(t, e.GET("/api/checkout").WithQuery("pending", pending).Expect().Status(http.StatusOK))
	assert.Equal(t, "buy_now", preview["source"])
	assert.Equal(t, "1499.50", preview["total"])

	e.GET("/api/checkout").Expect().Status(http.StatusUnauthorized)

	placed := dataOf(t, e.POST("/api/orders").
		WithJSON(shippingJSON(map[string]interface{}{"pending_token": pending})).
		Expect().Status(http.StatusCreated))
	key := placed["access_key"].(string)
	orderID := int64(placed["order"].(map[string]interface{})["id"].(float64))
	assert.Equal(t, "Guest", placed["order"].(map[string]interface{})["customer"])

	e.POST("/api/orders").WithJSON(shippingJSON(map[string]interface{}{"pending_token": pending})).
		Expect().Status(http.StatusNotFound)

	e.GET(fmt.Sprintf("/api/orders/%d/payment", orderID)).Expect().Status(http.StatusNotFound)
	e.GET(fmt.Sprintf("/api/orders/%d/payment", orderID)).WithQuery("key", key).Expect().Status(http.StatusOK)
	e.POST(fmt.Sprintf("/api/orders/%d/confirm", orderID)).WithQuery("key", key).Expect().Status(http.StatusOK)
}

func TestAdmin_SessionAndOrderActions(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	hash, err := service.HashPassword("adminpass1")
	require.NoError(t, err)
	require.NoError(t, env.repos.Users.Create(ctx, &user.User{Username: "boss", Password: hash, IsStaff: true}))
	require.NoError(t, env.repos.Users.Create(ctx, &user.User{Username: "clerk", Password: hash}))

	c := storetest.Category(t, env.repos, "phones")
	p := storetest.Product(t, env.repos, c, "pixel", "100.00", 5)
	pp, err := env.svc.Checkout.StageBuyNow(ctx, 0, p.ID, 1)
	require.NoError(t, err)
	o, err := env.svc.Checkout.PlaceOrder(ctx, 0, pp.Token, shippingFixture())
	require.NoError(t, err)

	e := env.admin(t)
	e.GET("/api/orders").Expect().Status(http.StatusUnauthorized)
	e.POST("/api/login").WithJSON(map[string]string{"username": "clerk", "password": "adminpass1"}).
		Expect().Status(http.StatusForbidden)
	e.POST("/api/login").WithJSON(map[string]string{"username": "boss", "password": "nope"}).
		Expect().Status(http.StatusUnauthorized)

	login := e.POST("/api/login").WithJSON(map[string]string{"username": "boss", "password": "adminpass1"}).
		Expect().Status(http.StatusOK)
	cookie := login.Cookie(env.cfg.AdminSession.Cookie).Value().Raw()
	require.NotEmpty(t, cookie)
	withSession := func(r *httptest.Request) *httptest.Request {
		return r.WithCookie(env.cfg.AdminSession.Cookie, cookie)
	}

	created := dataOf(t, withSession(e.POST("/api/categories")).WithJSON(map[string]string{"name": "Smart Home"}).
		Expect().Status(http.StatusCreated))
	assert.Equal(t, "smart-home", created["slug"])

	list := withSession(e.GET("/api/orders")).WithQuery("paid", "false").
		Expect().Status(http.StatusOK).JSON().Object().Raw()["data"].([]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "Guest", list[0].(map[string]interface{})["customer"])
	assert.Equal(t, "pixel", list[0].(map[string]interface{})["products"])

	withSession(e.GET("/api/orders")).WithQuery("status", "lost").Expect().Status(http.StatusBadRequest)

	res := dataOf(t, withSession(e.POST("/api/orders/actions/make-paid")).
		WithJSON(map[string][]int64{"ids": {o.ID}}).Expect().Status(http.StatusOK))
	assert.Equal(t, "1 order was successfully updated.", res["message"])
	dataOf(t, withSession(e.POST("/api/orders/actions/mark-shipped")).
		WithJSON(map[string][]int64{"ids": {o.ID}}).Expect().Status(http.StatusOK))

	detail := dataOf(t, withSession(e.GET(fmt.Sprintf("/api/orders/%d", o.ID))).Expect().Status(http.StatusOK))
	assert.Equal(t, true, detail["paid"])
	assert.Equal(t, "shipped", detail["status"])

	withSession(e.PUT(fmt.Sprintf("/api/orders/%d/status", o.ID))).
		WithJSON(map[string]string{"status": "delivered"}).Expect().Status(http.StatusOK)
	withSession(e.PUT(fmt.Sprintf("/api/orders/%d/status", o.ID))).
		WithJSON(map[string]string{"payment_status": "bogus"}).Expect().Status(http.StatusBadRequest)

	withSession(e.GET("/api/orders/export")).Expect().Status(http.StatusOK).
		ContentType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	withSession(e.GET("/api/carts")).Expect().Status(http.StatusOK)
	users := withSession(e.GET("/api/users")).Expect().Status(http.StatusOK).JSON().Object().Raw()["data"].([]interface{})
	assert.Len(t, users, 2)
	withSession(e.GET("/api/stats")).Expect().Status(http.StatusOK)

	withSession(e.POST("/api/logout")).Expect().Status(http.StatusOK)
	withSession(e.GET("/api/orders")).Expect().Status(http.StatusUnauthorized)
}
