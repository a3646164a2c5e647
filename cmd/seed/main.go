package main

import (
	"context"
	"flag"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/datamodels/category"
	"github.com/example/gadgetcave/internal/datamodels/user"
	"github.com/example/gadgetcave/internal/logger"
	"github.com/example/gadgetcave/internal/repository/store"
	"github.com/example/gadgetcave/internal/service"
)

type demoProduct struct {
	name        string
	description string
	price       string
	stock       int64
}

// 演示数据，按分类组织
var demoCatalog = []struct {
	name     string
	products []demoProduct
}{
	{"Smartphones", []demoProduct{
		{"Pixel 8a", "6.1 inch OLED, Tensor G3", "39999.00", 12},
		{"Galaxy M35", "6000 mAh battery, 120Hz display", "17999.00", 25},
	}},
	{"Audio", []demoProduct{
		{"Nothing Ear (a)", "ANC earbuds with 42 hour playback", "7999.00", 40},
		{"boAt Stone 350", "10W portable bluetooth speaker", "1499.00", 60},
	}},
	{"Accessories", []demoProduct{
		{"65W GaN Charger", "Dual USB-C fast charger", "2299.50", 80},
		{"Braided USB-C Cable", "1.5 m, 60W", "399.00", 150},
	}},
}

func main() {
	username := flag.String("admin-user", "admin", "staff username to create")
	password := flag.String("admin-password", "admin12345", "staff password")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(".")
	if err != nil {
		panic(err)
	}
	log, err := logger.Init(&cfg.Log)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	repos := store.NewRepositories(store.Init(&cfg.Database))

	if err := seedStaff(ctx, repos, *username, *password); err != nil {
		log.Fatal("seed staff user failed", zap.Error(err))
	}
	if err := seedCatalog(ctx, repos); err != nil {
		log.Fatal("seed catalog failed", zap.Error(err))
	}
	log.Info("seed finished")
}

func seedStaff(ctx context.Context, repos *store.Repositories, username, password string) error {
	if _, err := repos.Users.GetByUsername(ctx, username); err == nil {
		zap.L().Info("staff user exists, skip", zap.String("username", username))
		return nil
	} else if !store.IsNotFound(err) {
		return err
	}
	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	u := &user.User{Username: username, Password: hash, IsStaff: true}
	if err := repos.Users.Create(ctx, u); err != nil {
		return err
	}
	zap.L().Info("staff user created", zap.Int64("user_id", u.ID), zap.String("username", username))
	return nil
}

// seedCatalog 已存在的分类整体跳过，可重复执行
func seedCatalog(ctx context.Context, repos *store.Repositories) error {
	admin := service.NewAdminService(repos)
	existing, err := repos.Categories.List(ctx, "")
	if err != nil {
		return err
	}
	seen := make(map[string]*category.Category, len(existing))
	for _, c := range existing {
		seen[c.Name] = c
	}

	for _, dc := range demoCatalog {
		if _, ok := seen[dc.name]; ok {
			zap.L().Info("category exists, skip", zap.String("name", dc.name))
			continue
		}
		c, err := admin.CreateCategory(ctx, service.CategoryInput{Name: dc.name})
		if err != nil {
			return err
		}
		for _, dp := range dc.products {
			name, desc := dp.name, dp.description
			price := decimal.RequireFromString(dp.price)
			stock := dp.stock
			available := true
			p, err := admin.CreateProduct(ctx, service.ProductInput{
				CategoryID:  &c.ID,
				Name:        &name,
				Description: &desc,
				Price:       &price,
				Stock:       &stock,
				Available:   &available,
			})
			if err != nil {
				return err
			}
			zap.L().Info("product created", zap.Int64("id", p.ID), zap.String("slug", p.Slug))
		}
	}
	return nil
}
