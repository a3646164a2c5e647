package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/gadgetcave/internal/datamodels/cart"
	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/datamodels/pending"
	"github.com/example/gadgetcave/internal/datamodels/product"
	"github.com/example/gadgetcave/internal/repository/store"
	"github.com/example/gadgetcave/internal/repository/store/storetest"
)

func TestProductRepo_DecrementStockNeverNegative(t *testing.T) {
	repos := storetest.New(t)
	ctx := context.Background()
	c := storetest.Category(t, repos, "phones")
	p := storetest.Product(t, repos, c, "pixel", "100.00", 3)

	ok, err := repos.Products.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repos.Products.DecrementStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "only 1 left, decrement of 2 must be refused")

	got, err := repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Stock)
}

func TestProductRepo_ListFilters(t *testing.T) {
	repos := storetest.New(t)
	ctx := context.Background()
	phones := storetest.Category(t, repos, "phones")
	audio := storetest.Category(t, repos, "audio")
	storetest.Product(t, repos, phones, "zeta phone", "10", 1)
	storetest.Product(t, repos, phones, "alpha phone", "10", 1)
	hidden := storetest.Product(t, repos, audio, "buds", "5", 1)
	hidden.Available = false
	require.NoError(t, repos.Products.Update(ctx, hidden))

	yes := true
	list, err := repos.Products.List(ctx, product.Filter{Available: &yes})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha phone", list[0].Name, "ordered by name")
	require.NotNil(t, list[0].Category)
	assert.Equal(t, "phones", list[0].Category.Name)

	list, err = repos.Products.List(ctx, product.Filter{CategoryID: audio.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Available)

	list, err = repos.Products.List(ctx, product.Filter{Keyword: "zeta"})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestCartRepo_GetOrCreateIsIdempotent(t *testing.T) {
	repos := storetest.New(t)
	ctx := context.Background()
	u := storetest.User(t, repos, "asha")

	first, err := repos.Carts.GetOrCreate(ctx, u.ID)
	require.NoError(t, err)
	second, err := repos.Carts.GetOrCreate(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := repos.Carts.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCartRepo_ItemUniquePerProduct(t *testing.T) {
	repos := storetest.New(t)
	ctx := context.Background()
	u := storetest.User(t, repos, "asha")
	c := storetest.Category(t, repos, "phones")
	p := storetest.Product(t, repos, c, "pixel", "100", 5)
	crt, err := repos.Carts.GetOrCreate(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, repos.Carts.CreateItem(ctx, &cart.CartItem{CartID: crt.ID, ProductID: p.ID, Quantity: 1}))
	err = repos.Carts.CreateItem(ctx, &cart.CartItem{CartID: crt.ID, ProductID: p.ID, Quantity: 1})
	assert.Error(t, err, "second line for the same product must violate the unique index")

	deleted, err := repos.Carts.DeleteItem(ctx, crt.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repos.Carts.DeleteItem(ctx, crt.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestOrderRepo_CreateAndMarkPaidOnce(t *testing.T) {
	repos := storetest.New(t)
	ctx := context.Background()
	u := storetest.User(t, repos, "asha")
	c := storetest.Category(t, repos, "phones")
	p := storetest.Product(t, repos, c, "pixel", "199.99", 5)

	o := &order.Order{
		UserID:        &u.ID,
		AccessKey:     "key-1",
		Shipping:      order.Shipping{FirstName: "A", LastName: "B", Email: "a@b.in", Address: "x", City: "Kochi", PostalCode: "682001"},
		Status:        order.StatusPending,
		PaymentStatus: order.PaymentPending,
		Items:         []order.OrderItem{{ProductID: p.ID, Price: p.Price, Quantity: 2}},
	}
	require.NoError(t, repos.Orders.Create(ctx, o))

	got, err := repos.Orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.True(t, got.TotalCost().Equal(decimal.RequireFromString("399.98")))
	assert.Equal(t, "asha", got.CustomerName())
	assert.Equal(t, "pixel", got.ProductNames())

	n, err := repos.Orders.MarkPaid(ctx, o.ID, "UPI123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	n, err = repos.Orders.MarkPaid(ctx, o.ID, "UPI999")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	got, err = repos.Orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.NotNil(t, got.TransactionID)
	assert.Equal(t, "UPI123", *got.TransactionID)
	assert.Equal(t, order.PaymentCompleted, got.PaymentStatus)
}

func TestOrderRepo_ListSearchAndFilters(t *testing.T) {
	repos := storetest.New(t)
	ctx := context.Background()
	u := storetest.User(t, repos, "ravi")
	mk := func(uid *int64, key, email string, paid bool) {
		o := &order.Order{
			UserID:        uid,
			AccessKey:     key,
			Shipping:      order.Shipping{FirstName: "F", LastName: "L", Email: email, Address: "x", City: "c", PostalCode: "1"},
			Status:        order.StatusPending,
			PaymentStatus: order.PaymentPending,
			Paid:          paid,
		}
		require.NoError(t, repos.Orders.Create(ctx, o))
	}
	mk(&u.ID, "k1", "ravi@mail.in", false)
	mk(nil, "k2", "guest@mail.in", true)

	list, err := repos.Orders.List(ctx, order.Filter{Search: "ravi"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ravi", list[0].CustomerName())

	paid := true
	list, err = repos.Orders.List(ctx, order.Filter{Paid: &paid})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Guest", list[0].CustomerName())
}

func TestPendingRepo_ConsumeOnlyOnce(t *testing.T) {
	repos := storetest.New(t)
	ctx := context.Background()
	c := storetest.Category(t, repos, "phones")
	p := storetest.Product(t, repos, c, "pixel", "10", 5)
	pp := &pending.Purchase{Token: "tok", ProductID: p.ID, Quantity: 1, ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, repos.Pending.Create(ctx, pp))

	got, err := repos.Pending.GetByToken(ctx, "tok")
	require.NoError(t, err)
	require.NotNil(t, got.Product)
	assert.True(t, got.OwnedBy(0))

	ok, err := repos.Pending.Consume(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repos.Pending.Consume(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepositories_TransactionRollsBack(t *testing.T) {
	repos := storetest.New(t)
	ctx := context.Background()
	c := storetest.Category(t, repos, "phones")
	p := storetest.Product(t, repos, c, "pixel", "10", 5)

	boom := errors.New("boom")
	err := repos.Transaction(ctx, func(tx *store.Repositories) error {
		if _, err := tx.Products.DecrementStock(ctx, p.ID, 5); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := repos.Products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Stock)
}
