package service

import (
	"sync"
	"time"

	"github.com/example/commerceops/internal/errs"
)

// Monitor 监控服务，用于统计错误和关键操作次数
type Monitor struct {
	mu sync.RWMutex

	// 错误统计
	StoreErrors         int64
	NotifyErrors        int64
	RejectedTransitions int64
	BulkItemFailures    int64

	// 操作统计
	StockAdjustments int64
	StockReplays     int64
	OrderTransitions int64
	PaymentUpdates   int64
	Replies          int64

	// 时间统计
	LastStoreError  time.Time
	LastNotifyError time.Time
	LastAdjustment  time.Time
}

// NewMonitor 创建监控实例
func NewMonitor() *Monitor {
	return &Monitor{}
}

// RecordStoreError 记录存储层错误
func (m *Monitor) RecordStoreError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreErrors++
	m.LastStoreError = time.Now()
}

// Observe 按错误类别归类计数
func (m *Monitor) Observe(err error) {
	switch errs.KindOf(err) {
	case errs.Internal:
		m.RecordStoreError()
	case errs.InvalidTransition, errs.TerminalStateViolation:
		m.RecordRejectedTransition()
	}
}

// RecordNotifyError 记录回复通知投递失败
func (m *Monitor) RecordNotifyError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyErrors++
	m.LastNotifyError = time.Now()
}

// RecordRejectedTransition 记录被状态机拒绝的迁移
func (m *Monitor) RecordRejectedTransition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RejectedTransitions++
}

// RecordBulkItemFailure 记录批量操作中的单条失败
func (m *Monitor) RecordBulkItemFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BulkItemFailures++
}

// RecordStockAdjustment 记录库存调整成功
func (m *Monitor) RecordStockAdjustment() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StockAdjustments++
	m.LastAdjustment = time.Now()
}

// RecordStockReplay 记录幂等键命中后的结果回放
func (m *Monitor) RecordStockReplay() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StockReplays++
}

// RecordOrderTransition 记录订单状态迁移成功
func (m *Monitor) RecordOrderTransition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OrderTransitions++
}

// RecordPaymentUpdate 记录支付状态更新成功
func (m *Monitor) RecordPaymentUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PaymentUpdates++
}

// RecordReply 记录留言回复
func (m *Monitor) RecordReply() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Replies++
}

// GetStats 获取统计信息
func (m *Monitor) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"errors": map[string]interface{}{
			"store":                m.StoreErrors,
			"notify":               m.NotifyErrors,
			"rejected_transitions": m.RejectedTransitions,
			"bulk_item_failures":   m.BulkItemFailures,
		},
		"operations": map[string]interface{}{
			"stock_adjustments": m.StockAdjustments,
			"stock_replays":     m.StockReplays,
			"order_transitions": m.OrderTransitions,
			"payment_updates":   m.PaymentUpdates,
			"replies":           m.Replies,
		},
		"last_events": map[string]interface{}{
			"store_error":     m.LastStoreError,
			"notify_error":    m.LastNotifyError,
			"last_adjustment": m.LastAdjustment,
		},
	}
}

// Reset 重置统计（用于测试或定期清理）
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreErrors = 0
	m.NotifyErrors = 0
	m.RejectedTransitions = 0
	m.BulkItemFailures = 0
	m.StockAdjustments = 0
	m.StockReplays = 0
	m.OrderTransitions = 0
	m.PaymentUpdates = 0
	m.Replies = 0
}
