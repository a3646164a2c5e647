// Package events 定义订单生命周期事件及其投递接口
// 事件在数据库事务提交后发出，投递失败不影响业务结果
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderPaid          Type = "order.paid"
	OrderStatusChanged Type = "order.status_changed"
)

// Event 订单事件
type Event struct {
	Type          Type      `json:"type"`
	OrderID       int64     `json:"order_id"`
	UserID        *int64    `json:"user_id,omitempty"`
	Total         string    `json:"total,omitempty"`
	Status        string    `json:"status,omitempty"`
	PaymentStatus string    `json:"payment_status,omitempty"`
	TransactionID string    `json:"transaction_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func Decode(body []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(body, &e)
	return e, err
}

// Publisher 事件发布
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Handler 处理一条事件，返回错误时由驱动决定是否重投
type Handler func(ctx context.Context, e Event) error

// Consumer 事件消费，Consume 阻塞到 ctx 结束
type Consumer interface {
	Consume(ctx context.Context, h Handler) error
	Close() error
}

// Nop 丢弃所有事件
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

// Memory 在内存中记录事件，供测试和单机调试使用
type Memory struct {
	mu     sync.Mutex
	events []Event
	Err    error
}

func (m *Memory) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) Close() error { return nil }

// Events 返回已发布事件的副本
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// OfType 按类型过滤
func (m *Memory) OfType(t Type) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
