package store

import (
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/datamodels/cart"
	"github.com/example/gadgetcave/internal/datamodels/category"
	"github.com/example/gadgetcave/internal/datamodels/order"
	"github.com/example/gadgetcave/internal/datamodels/orderevent"
	"github.com/example/gadgetcave/internal/datamodels/pending"
	"github.com/example/gadgetcave/internal/datamodels/product"
	"github.com/example/gadgetcave/internal/datamodels/user"
)

var (
	db   *gorm.DB
	once sync.Once
)

// Init 初始化全局 GORM 实例并按配置自动迁移表结构，失败直接退出
func Init(cfg *config.DatabaseConfig) *gorm.DB {
	once.Do(func() {
		var err error
		db, err = Open(cfg)
		if err != nil {
			zap.L().Fatal("failed to open database", zap.String("driver", cfg.Driver), zap.Error(err))
		}
		if cfg.AutoMigrate {
			if err = Migrate(db); err != nil {
				zap.L().Fatal("auto migrate failed", zap.Error(err))
			}
		}
	})
	return db
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}

// Open 按驱动打开一个新的连接（测试里每个用例独立一份 sqlite）
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "", "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

// Migrate 自动迁移所有表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&user.User{},
		&category.Category{},
		&product.Product{},
		&cart.Cart{},
		&cart.CartItem{},
		&order.Order{},
		&order.OrderItem{},
		&pending.Purchase{},
		&orderevent.Event{},
	)
}
