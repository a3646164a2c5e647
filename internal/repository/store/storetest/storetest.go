// Package storetest 为各层测试提供基于 sqlite 临时文件的仓储与样例数据
package storetest

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/datamodels/category"
	"github.com/example/gadgetcave/internal/datamodels/product"
	"github.com/example/gadgetcave/internal/datamodels/user"
	"github.com/example/gadgetcave/internal/repository/store"
)

// New 打开一个迁移好的独立 sqlite 库
func New(t testing.TB) *store.Repositories {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "gadgetcave.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := store.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return store.NewRepositories(db)
}

// Category 创建分类
func Category(t testing.TB, repos *store.Repositories, name string) *category.Category {
	t.Helper()
	c := &category.Category{Name: name, Slug: fmt.Sprintf("cat-%s", name)}
	require.NoError(t, repos.Categories.Create(context.Background(), c))
	return c
}

// Product 在指定分类下创建可售商品
func Product(t testing.TB, repos *store.Repositories, c *category.Category, name, price string, stock int64) *product.Product {
	t.Helper()
	p := &product.Product{
		CategoryID: c.ID,
		Name:       name,
		Slug:       "p-" + name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
		Available:  true,
	}
	require.NoError(t, repos.Products.Create(context.Background(), p))
	return p
}

// User 创建普通用户（密码字段仅占位）
func User(t testing.TB, repos *store.Repositories, username string) *user.User {
	t.Helper()
	u := &user.User{Username: username, Password: "x"}
	require.NoError(t, repos.Users.Create(context.Background(), u))
	return u
}
