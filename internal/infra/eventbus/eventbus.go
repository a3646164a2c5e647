// Package eventbus 按配置选择订单事件驱动
package eventbus

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/events"
	"github.com/example/gadgetcave/internal/infra/kafka"
	"github.com/example/gadgetcave/internal/infra/mq"
)

// NewPublisher 驱动为 none 或空时返回 events.Nop
func NewPublisher(cfg *config.EventsConfig) (events.Publisher, error) {
	switch cfg.Driver {
	case "", "none":
		zap.L().Info("order events disabled")
		return events.Nop{}, nil
	case "rabbitmq":
		return mq.NewPublisher(mq.Init(&cfg.RabbitMQ), cfg.RabbitMQ.Queue)
	case "kafka":
		return kafka.Dial(&cfg.Kafka)
	default:
		return nil, fmt.Errorf("unknown events driver %q", cfg.Driver)
	}
}

func NewConsumer(cfg *config.EventsConfig) (events.Consumer, error) {
	switch cfg.Driver {
	case "rabbitmq":
		return mq.NewConsumer(mq.Init(&cfg.RabbitMQ), cfg.RabbitMQ.Queue)
	case "kafka":
		return kafka.NewConsumer(&cfg.Kafka)
	default:
		return nil, fmt.Errorf("events driver %q has no consumer", cfg.Driver)
	}
}
