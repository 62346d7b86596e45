package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/errs"
)

// OrderService 后台订单服务：订单状态机与支付状态机都在这里执行
type OrderService struct {
	repo    order.Repository
	policy  config.PolicyConfig
	monitor *Monitor
	log     *zap.Logger
}

// NewOrderService 创建订单服务
func NewOrderService(repo order.Repository, policy config.PolicyConfig, monitor *Monitor, log *zap.Logger) *OrderService {
	return &OrderService{repo: repo, policy: policy, monitor: monitor, log: log}
}

// ListAll 查询全部订单，最新的在前
func (s *OrderService) ListAll(ctx context.Context) ([]*order.Order, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		s.monitor.Observe(err)
	}
	return list, err
}

func (s *OrderService) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return s.repo.GetByID(ctx, id)
}

// Create 写入一笔订单（订单来自前台下单流程，这里用于导入与初始化数据）
func (s *OrderService) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	o.Customer.Name = strings.TrimSpace(o.Customer.Name)
	o.Customer.Email = strings.TrimSpace(o.Customer.Email)
	if o.Customer.Name == "" || o.Customer.Email == "" {
		return nil, errs.New(errs.InvalidInput, "customer name and email are required")
	}
	if len(o.Items) == 0 {
		return nil, errs.New(errs.InvalidInput, "order must contain at least one item")
	}
	amount := decimal.Zero
	for _, it := range o.Items {
		if it.Quantity < 1 {
			return nil, errs.New(errs.InvalidInput, "item quantity must be at least 1")
		}
		if it.UnitPrice.IsNegative() {
			return nil, errs.New(errs.InvalidInput, "item price cannot be negative")
		}
		amount = amount.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
	}
	if o.DeliveryFee.IsNegative() {
		return nil, errs.New(errs.InvalidInput, "delivery fee cannot be negative")
	}
	o.Amount = amount.Round(2)
	if o.PaymentMethod == "" {
		o.PaymentMethod = order.PaymentCOD
	}
	if o.Status == "" {
		o.Status = order.StatusPlaced
	}
	if !o.Status.Valid() {
		return nil, errs.New(errs.InvalidInput, "unknown order status %q", o.Status)
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = order.PaymentPending
	}
	if !o.PaymentStatus.Valid() {
		return nil, errs.New(errs.InvalidInput, "unknown payment status %q", o.PaymentStatus)
	}
	if o.OrderNumber == "" {
		o.OrderNumber = NewOrderNumber(time.Now())
	}
	if err := s.repo.Create(ctx, o); err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	return o, nil
}

// NewOrderNumber 生成订单号，例如 ORD-20261019-1A2B3C4D
func NewOrderNumber(now time.Time) string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "ORD-" + now.Format("20060102") + "-" + id[:8]
}

// Transition 订单状态迁移：终态不可再改，非终态之间可任意切换
func (s *OrderService) Transition(ctx context.Context, id int64, next order.Status) (*order.Order, error) {
	if !next.Valid() {
		s.monitor.RecordRejectedTransition()
		return nil, errs.New(errs.InvalidTransition, "unknown order status %q", next)
	}
	o, err := s.repo.Mutate(ctx, id, func(o *order.Order) error {
		if o.Status.Terminal() {
			return errs.New(errs.TerminalStateViolation, "order is already %s and cannot be changed", o.Status)
		}
		o.Status = next
		return nil
	})
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	s.monitor.RecordOrderTransition()
	s.log.Info("order status changed", zap.Int64("order_id", o.ID), zap.String("status", string(o.Status)))
	return o, nil
}

// SetPaymentStatus 支付状态迁移：pending 可变为 completed/failed，之后锁定。
// 开启 CODCompletionAdvancesOrder 时，货到付款订单确认收款会把未终结的订单推进为 Delivered。
func (s *OrderService) SetPaymentStatus(ctx context.Context, id int64, next order.PaymentStatus) (*order.Order, error) {
	if !next.Valid() {
		s.monitor.RecordRejectedTransition()
		return nil, errs.New(errs.InvalidTransition, "unknown payment status %q", next)
	}
	o, err := s.repo.Mutate(ctx, id, func(o *order.Order) error {
		if o.PaymentStatus.Terminal() {
			return errs.New(errs.TerminalStateViolation, "payment is already %s and cannot be changed", o.PaymentStatus)
		}
		o.PaymentStatus = next
		if s.policy.CODCompletionAdvancesOrder &&
			o.PaymentMethod.IsCOD() &&
			next == order.PaymentCompleted &&
			!o.Status.Terminal() {
			o.Status = order.StatusDelivered
		}
		return nil
	})
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	s.monitor.RecordPaymentUpdate()
	s.log.Info("payment status changed",
		zap.Int64("order_id", o.ID),
		zap.String("payment_status", string(o.PaymentStatus)),
		zap.String("status", string(o.Status)),
	)
	return o, nil
}
