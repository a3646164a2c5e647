package server

import (
	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/gadgetcave/internal/auth"
	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/events"
	"github.com/example/gadgetcave/internal/repository/store"
	"github.com/example/gadgetcave/internal/service"
)

// Services 前台与后台共用的服务集合
type Services struct {
	Revocations *auth.Revocations
	Users       *service.UserService
	Catalog     *service.CatalogService
	Carts       *service.CartService
	Checkout    *service.CheckoutService
	Payments    *service.PaymentService
	Orders      *service.OrderService
	Admin       *service.AdminService
}

// NewServices 组装服务；redis 可为 nil
func NewServices(cfg *config.Config, repos *store.Repositories, pub events.Publisher, redis radix.Client) *Services {
	if pub == nil {
		pub = events.Nop{}
	}
	rev := auth.NewRevocations(redis)
	return &Services{
		Revocations: rev,
		Users:       service.NewUserService(repos.Users, &cfg.JWT, rev),
		Catalog:     service.NewCatalogService(repos.Categories, repos.Products),
		Carts:       service.NewCartService(repos),
		Checkout:    service.NewCheckoutService(repos, pub, cfg.Checkout.PendingTTL),
		Payments:    service.NewPaymentService(repos, pub, &cfg.Payment),
		Orders:      service.NewOrderService(repos, pub),
		Admin:       service.NewAdminService(repos),
	}
}
