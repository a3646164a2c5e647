package service

import (
	"sync"
	"time"
)

// Monitor 监控服务，统计下单、支付与事件投递
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	DBErrors      int64
	EventErrors   int64
	CheckoutFails int64
	WorkerErrors  int64

	// 业务统计
	CheckoutRequests  int64
	OrdersCreated     int64
	PaymentsConfirmed int64
	EventsPublished   int64
	WorkerProcessed   int64

	// 时间统计
	LastDBError    time.Time
	LastEventError time.Time
	LastOrderTime  time.Time
	LastWorkerTime time.Time
}

var globalMonitor = &Monitor{}

// GetMonitor 获取全局监控实例
func GetMonitor() *Monitor {
	return globalMonitor
}

func (m *Monitor) RecordDBError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors++
	m.LastDBError = time.Now()
}

func (m *Monitor) RecordEventError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventErrors++
	m.LastEventError = time.Now()
}

func (m *Monitor) RecordEventPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventsPublished++
}

// RecordCheckout 记录一次下单请求及结果
func (m *Monitor) RecordCheckout(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CheckoutRequests++
	if ok {
		m.OrdersCreated++
		m.LastOrderTime = time.Now()
	} else {
		m.CheckoutFails++
	}
}

func (m *Monitor) RecordPaymentConfirmed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentsConfirmed++
}

// RecordWorker 记录 worker 处理结果
func (m *Monitor) RecordWorker(ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.WorkerProcessed++
		m.LastWorkerTime = time.Now()
	} else {
		m.WorkerErrors++
	}
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.CheckoutRequests > 0 {
		successRate = float64(m.OrdersCreated) / float64(m.CheckoutRequests) * 100
	}

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"db":       m.DBErrors,
			"events":   m.EventErrors,
			"checkout": m.CheckoutFails,
			"worker":   m.WorkerErrors,
		},
		"performance": map[string]interface{}{
			"checkout_requests":     m.CheckoutRequests,
			"orders_created":        m.OrdersCreated,
			"checkout_success_rate": successRate,
			"payments_confirmed":    m.PaymentsConfirmed,
			"events_published":      m.EventsPublished,
			"worker_processed":      m.WorkerProcessed,
		},
		"last_events": map[string]interface{}{
			"db_error":    m.LastDBError,
			"event_error": m.LastEventError,
			"last_order":  m.LastOrderTime,
			"last_worker": m.LastWorkerTime,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DBErrors, m.EventErrors, m.CheckoutFails, m.WorkerErrors = 0, 0, 0, 0
	m.CheckoutRequests, m.OrdersCreated, m.PaymentsConfirmed = 0, 0, 0
	m.EventsPublished, m.WorkerProcessed = 0, 0
}
