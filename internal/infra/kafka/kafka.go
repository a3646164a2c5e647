// Package kafka 基于 sarama 的订单事件投递，作为 RabbitMQ 之外的可选驱动
package kafka

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/example/gadgetcave/internal/config"
	"github.com/example/gadgetcave/internal/events"
)

const dialRetries = 5

func newConfig() *sarama.Config {
	c := sarama.NewConfig()
	c.Producer.Return.Successes = true
	c.Producer.RequiredAcks = sarama.WaitForAll
	c.Producer.Retry.Max = 5
	c.Consumer.Offsets.Initial = sarama.OffsetOldest
	return c
}

// Publisher 同步写入 Kafka，按订单号分区保证同一订单事件有序
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// Dial 连接 broker，启动阶段短暂重试
func Dial(cfg *config.KafkaConfig) (*Publisher, error) {
	var (
		producer sarama.SyncProducer
		err      error
	)
	for i := 1; i <= dialRetries; i++ {
		producer, err = sarama.NewSyncProducer(cfg.Brokers, newConfig())
		if err == nil {
			return NewPublisher(producer, cfg.Topic), nil
		}
		zap.L().Warn("waiting for kafka", zap.Int("attempt", i), zap.Error(err))
		time.Sleep(time.Duration(i) * time.Second)
	}
	return nil, err
}

func NewPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) Publish(_ context.Context, e events.Event) error {
	body, err := e.Encode()
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(e.OrderID, 10)),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(e.Type)},
		},
	})
	return err
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

// Consumer 消费组方式读取订单事件
type Consumer struct {
	group sarama.ConsumerGroup
	topic string
}

func NewConsumer(cfg *config.KafkaConfig) (*Consumer, error) {
	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, newConfig())
	if err != nil {
		return nil, err
	}
	return &Consumer{group: group, topic: cfg.Topic}, nil
}

func (c *Consumer) Consume(ctx context.Context, h events.Handler) error {
	handler := &groupHandler{ctx: ctx, handle: h}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			zap.L().Error("kafka consume error", zap.Error(err))
			time.Sleep(time.Second)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

type groupHandler struct {
	ctx    context.Context
	handle events.Handler
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		e, err := events.Decode(msg.Value)
		if err != nil {
			zap.L().Warn("invalid event message", zap.Int64("offset", msg.Offset), zap.Error(err))
			session.MarkMessage(msg, "")
			continue
		}
		if err := h.handle(h.ctx, e); err != nil {
			// 不提交位点，重平衡后会重新投递
			zap.L().Error("handle event failed",
				zap.String("type", string(e.Type)), zap.Int64("order_id", e.OrderID), zap.Error(err))
			return err
		}
		session.MarkMessage(msg, "")
	}
	return nil
}
