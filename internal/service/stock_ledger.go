package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/errs"
)

// IdempotencyStore 幂等键存储。Claim 的 ttl 是处理中标记的有效期，Complete 写入结果时重新设置 ttl。
// Claim 返回 false 时，result 为首次请求记录的结果，首次请求仍在处理中则为 nil。
type IdempotencyStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (claimed bool, result []byte, err error)
	Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// AdjustRequest 库存调整请求
type AdjustRequest struct {
	ProductID int64
	Quantity  int64
	Operation product.StockOperation
	// IdempotencyKey 可选，相同 key 的重试只生效一次
	IdempotencyKey string
}

// StockResult 调整后的库存及其状态
type StockResult struct {
	ProductID int64               `json:"productId"`
	Name      string              `json:"name"`
	Stock     int64               `json:"stock"`
	Status    product.StockStatus `json:"status"`
	Replayed  bool                `json:"replayed,omitempty"`
}

// idemRecord 幂等键下保存的请求内容与结果，同一 key 换了请求内容时拒绝回放
type idemRecord struct {
	Operation product.StockOperation `json:"operation"`
	Quantity  int64                  `json:"quantity"`
	Result    StockResult            `json:"result"`
}

// StockReport 各库存状态的商品数量
type StockReport struct {
	Total      int `json:"total"`
	InStock    int `json:"inStock"`
	LowStock   int `json:"lowStock"`
	OutOfStock int `json:"outOfStock"`
}

// Add 计入一个商品
func (r *StockReport) Add(stock int64) {
	r.Total++
	switch product.StockStatusOf(stock) {
	case product.InStock:
		r.InStock++
	case product.LowStock:
		r.LowStock++
	default:
		r.OutOfStock++
	}
}

// StockLedger 库存台账：所有库存修改都经由这里，保证原子性与非负
type StockLedger struct {
	repo       product.Repository
	idem       IdempotencyStore
	idemTTL    time.Duration
	pendingTTL time.Duration
	monitor    *Monitor
	log        *zap.Logger
}

// NewStockLedger 创建库存台账，idem 为空时不支持幂等键。
// pendingTTL 限制处理中标记的存活时间，进程在调整途中退出后该 key 很快可以重试。
func NewStockLedger(repo product.Repository, idem IdempotencyStore, idemTTL, pendingTTL time.Duration, monitor *Monitor, log *zap.Logger) *StockLedger {
	if idemTTL <= 0 {
		idemTTL = 24 * time.Hour
	}
	if pendingTTL <= 0 {
		pendingTTL = 30 * time.Second
	}
	if pendingTTL > idemTTL {
		pendingTTL = idemTTL
	}
	return &StockLedger{repo: repo, idem: idem, idemTTL: idemTTL, pendingTTL: pendingTTL, monitor: monitor, log: log}
}

// Adjust 按 set/increment/decrement 调整库存，decrement 不会低于 0
func (l *StockLedger) Adjust(ctx context.Context, req AdjustRequest) (*StockResult, error) {
	if req.Quantity < 0 {
		return nil, errs.ErrInvalidQuantity
	}
	if req.Quantity > product.MaxStock {
		return nil, errs.ErrStockLimit
	}
	if !req.Operation.Valid() {
		return nil, errs.New(errs.InvalidInput, "operation must be one of set, increment, decrement")
	}

	if req.IdempotencyKey == "" || l.idem == nil {
		return l.apply(ctx, req)
	}

	key := fmt.Sprintf("stock:%d:%s", req.ProductID, req.IdempotencyKey)
	claimed, stored, err := l.idem.Claim(ctx, key, l.pendingTTL)
	if err != nil {
		l.log.Warn("idempotency claim failed", zap.String("key", key), zap.Error(err))
		l.monitor.RecordStoreError()
		return nil, errs.Wrap(errs.Internal, err, "idempotency claim")
	}
	if !claimed {
		if stored == nil {
			return nil, errs.New(errs.Conflict, "a request with this idempotency key is still in progress")
		}
		var rec idemRecord
		if err := json.Unmarshal(stored, &rec); err != nil {
			return nil, errs.Wrap(errs.Internal, err, "decode idempotent result")
		}
		if rec.Operation != req.Operation || rec.Quantity != req.Quantity {
			return nil, errs.New(errs.Conflict, "idempotency key was already used with a different stock adjustment")
		}
		res := rec.Result
		res.Replayed = true
		l.monitor.RecordStockReplay()
		return &res, nil
	}

	res, err := l.apply(ctx, req)
	if err != nil {
		if rerr := l.idem.Release(ctx, key); rerr != nil {
			l.log.Warn("idempotency release failed", zap.String("key", key), zap.Error(rerr))
		}
		return nil, err
	}
	body, _ := json.Marshal(idemRecord{Operation: req.Operation, Quantity: req.Quantity, Result: *res})
	if err := l.idem.Complete(ctx, key, body, l.idemTTL); err != nil {
		// 结果已落库，记录失败只影响后续重试的回放
		l.log.Warn("idempotency complete failed", zap.String("key", key), zap.Error(err))
	}
	return res, nil
}

func (l *StockLedger) apply(ctx context.Context, req AdjustRequest) (*StockResult, error) {
	p, err := l.repo.AdjustStock(ctx, req.ProductID, req.Quantity, req.Operation)
	if err != nil {
		l.monitor.Observe(err)
		return nil, err
	}
	l.monitor.RecordStockAdjustment()
	l.log.Info("stock adjusted",
		zap.Int64("product_id", p.ID),
		zap.String("operation", string(req.Operation)),
		zap.Int64("quantity", req.Quantity),
		zap.Int64("stock", p.Stock),
	)
	return &StockResult{
		ProductID: p.ID,
		Name:      p.Name,
		Stock:     p.Stock,
		Status:    product.StockStatusOf(p.Stock),
	}, nil
}

// Report 统计各库存状态的商品数量
func (l *StockLedger) Report(ctx context.Context) (*StockReport, error) {
	list, err := l.repo.ListAll(ctx)
	if err != nil {
		l.monitor.Observe(err)
		return nil, err
	}
	return buildStockReport(list), nil
}

func buildStockReport(list []*product.Product) *StockReport {
	r := &StockReport{}
	for _, p := range list {
		r.Add(p.Stock)
	}
	return r
}
