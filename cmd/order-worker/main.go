package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/infra/eventbus"
	"github.com/example/gadgetcave/internal/logger"
	"github.com/example/gadgetcave/internal/repository/store"
	"github.com/example/gadgetcave/internal/service"
)

const purgeInterval = 5 * time.Minute

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos := store.NewRepositories(store.Init(&cfg.Database))
	recorder := service.NewEventRecorder(repos)

	consumer, err := eventbus.NewConsumer(&cfg.Events)
	if err != nil {
		log.Fatal("failed to create event consumer", zap.Error(err))
	}
	defer func() { _ = consumer.Close() }()

	go purgePending(ctx, repos)

	log.Info("order worker started, waiting for events...", zap.String("driver", cfg.Events.Driver))
	// Handle 自行记录 worker 统计
	err = consumer.Consume(ctx, recorder.Handle)
	if err != nil && ctx.Err() == nil {
		log.Fatal("consume order events failed", zap.Error(err))
	}
	log.Info("order worker stopped", zap.Any("stats", service.GetMonitor().GetStats()))
}

// purgePending 定期清理过期的 "立即购买" 暂存记录
func purgePending(ctx context.Context, repos *store.Repositories) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repos.Pending.PurgeExpired(ctx, time.Now())
			if err != nil {
				zap.L().Warn("purge expired pending purchases failed", zap.Error(err))
				service.GetMonitor().RecordDBError()
				continue
			}
			if n > 0 {
				zap.L().Info("purged expired pending purchases", zap.Int64("count", n))
			}
		}
	}
}
