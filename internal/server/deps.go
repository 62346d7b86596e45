package server

import (
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/auth"
	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/datamodels/message"
	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/datamodels/review"
	"github.com/example/commerceops/internal/service"
)

// Stores 各仓储实现，mysql 或 memory
type Stores struct {
	Products    product.Repository
	Orders      order.Repository
	Messages    message.Repository
	Reviews     review.Repository
	Idempotency service.IdempotencyStore
}

// Deps 路由依赖的全部服务
type Deps struct {
	Config     *config.Config
	Log        *zap.Logger
	Monitor    *service.Monitor
	TokenCache *auth.TokenCache

	Ledger    *service.StockLedger
	Products  *service.ProductService
	Orders    *service.OrderService
	Reviews   *service.ReviewService
	Messages  *service.MessageService
	Analytics *service.AnalyticsService
}

// NewDeps 基于仓储组装服务；notifier 为 nil 时只记日志，cache 可为 nil
func NewDeps(cfg *config.Config, log *zap.Logger, st Stores, notifier service.ReplyNotifier, cache *auth.TokenCache) *Deps {
	if notifier == nil {
		notifier = service.NewLogNotifier(log)
	}
	monitor := service.NewMonitor()
	ledger := service.NewStockLedger(st.Products, st.Idempotency, cfg.Policy.IdempotencyTTL, cfg.Policy.IdempotencyPendingTTL, monitor, log)
	return &Deps{
		Config:     cfg,
		Log:        log,
		Monitor:    monitor,
		TokenCache: cache,
		Ledger:     ledger,
		Products:   service.NewProductService(st.Products, ledger, monitor),
		Orders:     service.NewOrderService(st.Orders, cfg.Policy, monitor, log),
		Reviews:    service.NewReviewService(st.Reviews, monitor),
		Messages:   service.NewMessageService(st.Messages, notifier, monitor, log),
		Analytics:  service.NewAnalyticsService(st.Products, st.Orders, st.Reviews, cfg.Analytics, cfg.Currency, monitor),
	}
}
