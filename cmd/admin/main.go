package main

import (
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/recover"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/infra/eventbus"
	"github.com/example/gadgetcave/internal/logger"
	"github.com/example/gadgetcave/internal/repository/store"
	"github.com/example/gadgetcave/internal/server"
)

func main() {
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
	pub, err := eventbus.NewPublisher(&cfg.Events)
	if err != nil {
		log.Fatal("failed to create event publisher", zap.Error(err))
	}
	defer func() { _ = pub.Close() }()

	// 后台不校验 JWT，无需 redis
	svc := server.NewServices(cfg, store.NewRepositories(db), pub, nil)

	app := iris.New()
	app.UseRouter(recover.New())
	server.RegisterAdminRoutes(app, cfg, svc)

	addr := cfg.AdminServer.Addr()
	log.Info("admin server listening", zap.String("addr", addr))
	if err := app.Run(iris.Addr(addr), iris.WithoutServerError(iris.ErrServerClosed)); err != nil {
		log.Fatal("failed to run admin server", zap.Error(err))
	}
}
