package service

import (
	"context"
	"fmt"

	"github.com/example/gadgetcave/internal/datamodels/cart"
	"github.com/example/gadgetcave/internal/repository/store"
)

// CartService 购物车增删查
type CartService struct {
	repos *store.Repositories
}

func NewCartService(repos *store.Repositories) *CartService {
	return &CartService{repos: repos}
}

// Add 加入购物车，同一商品累加数量，累计数量不能超过库存
func (s *CartService) Add(ctx context.Context, userID, productID, quantity int64) (*cart.Cart, error) {
	if quantity < 1 {
		return nil, fieldError("quantity", "Ensure this value is greater than or equal to 1.")
	}
	err := s.repos.Transaction(ctx, func(tx *store.Repositories) error {
		p, err := tx.Products.GetByID(ctx, productID)
		if err != nil {
			if store.IsNotFound(err) {
				return ErrProductNotFound
			}
			return err
		}
		if quantity > p.Stock {
			return &StockError{
				ProductID: p.ID,
				Message:   fmt.Sprintf("Only %d items of %s are available.", p.Stock, p.Name),
			}
		}

		c, err := tx.Carts.GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		item, err := tx.Carts.GetItem(ctx, c.ID, p.ID)
		if err != nil {
			if !store.IsNotFound(err) {
				return err
			}
			return tx.Carts.CreateItem(ctx, &cart.CartItem{CartID: c.ID, ProductID: p.ID, Quantity: quantity})
		}
		if item.Quantity+quantity > p.Stock {
			return &StockError{
				ProductID: p.ID,
				Message: fmt.Sprintf("Adding %d more %s(s) would exceed stock. Current in cart: %d, Stock: %d.",
					quantity, p.Name, item.Quantity, p.Stock),
			}
		}
		return tx.Carts.UpdateItemQuantity(ctx, item.ID, item.Quantity+quantity)
	})
	if err != nil {
		return nil, err
	}
	return s.View(ctx, userID)
}

// Remove 从购物车删除商品
func (s *CartService) Remove(ctx context.Context, userID, productID int64) (*cart.Cart, error) {
	c, err := s.repos.Carts.GetByUser(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	if _, err := s.repos.Products.GetByID(ctx, productID); err != nil {
		if store.IsNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	deleted, err := s.repos.Carts.DeleteItem(ctx, c.ID, productID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		return nil, ErrCartItemNotFound
	}
	return s.View(ctx, userID)
}

// View 查看购物车，没有购物车时返回空车
func (s *CartService) View(ctx context.Context, userID int64) (*cart.Cart, error) {
	c, err := s.repos.Carts.GetByUser(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return &cart.Cart{UserID: userID, Items: []cart.CartItem{}}, nil
		}
		return nil, err
	}
	return c, nil
}
