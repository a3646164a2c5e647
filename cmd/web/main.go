package main

import (
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/infra/eventbus"
	"github.com/example/gadgetcave/internal/infra/redis"
	"github.com/example/gadgetcave/internal/logger"
	"github.com/example/gadgetcave/internal/repository/store"
	"github.com/example/gadgetcave/internal/server"
)

func main() {
	// .env 可选，仅本地开发使用
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

	db := store.Init(&cfg.Database)
	redisClient := redis.Init(&cfg.Redis)
	pub, err := eventbus.NewPublisher(&cfg.Events)
	if err != nil {
		log.Fatal("failed to create event publisher", zap.Error(err))
	}
	defer func() { _ = pub.Close() }()

	svc := server.NewServices(cfg, store.NewRepositories(db), pub, redisClient)

	app := iris.New()
	app.UseRouter(recover.New())
	server.RegisterRoutes(app, cfg, svc)

	addr := cfg.Server.Addr()
	log.Info("web server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr), iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		log.Fatal("failed to run web server", zap.Error(err))
	}
}
