package controllers

import (
	"github.com/shopspring/decimal"

	"github.com/example/gadgetcave/internal/datamodels/cart"
	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/datamodels/product"
)

// OrderView 订单响应，附带总价与展示字段
type OrderView struct {
	*order.Order
	Customer string `json:"customer"`
	Products string `json:"products"`
	Total    string `json:"total"`
}

func NewOrderView(o *order.Order) OrderView {
	return OrderView{
		Order:    o,
		Customer: o.CustomerName(),
		Products: o.ProductNames(),
		Total:    o.TotalCost().StringFixed(2),
	}
}

type cartLine struct {
	ID       int64            `json:"id"`
	Product  *product.Product `json:"product"`
	Quantity int64            `json:"quantity"`
	Cost     string           `json:"cost"`
}

// CartView 购物车响应
type CartView struct {
	*cart.Cart
	Items []cartLine `json:"items"`
	Total string     `json:"total"`
}

func NewCartView(c *cart.Cart) CartView {
	v := CartView{Cart: c, Items: make([]cartLine, 0, len(c.Items)), Total: c.TotalCost().StringFixed(2)}
	for i := range c.Items {
		it := &c.Items[i]
		v.Items = append(v.Items, cartLine{ID: it.ID, Product: it.Product, Quantity: it.Quantity, Cost: it.Cost().StringFixed(2)})
	}
	return v
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
