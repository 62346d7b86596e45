package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/repository/memory"
)

// fixture 基于内存仓储组装全部服务
type fixture struct {
	products product.Repository
	orders   order.Repository
	idem     *memory.IdempotencyStore
	monitor  *Monitor

	ledger   *StockLedger
	catalog  *ProductService
	orderSvc *OrderService
}

func newFixture(t *testing.T, policy config.PolicyConfig) *fixture {
	t.Helper()
	f := &fixture{
		products: memory.NewProductRepository(),
		orders:   memory.NewOrderRepository(),
		idem:     memory.NewIdempotencyStore(),
		monitor:  NewMonitor(),
	}
	log := zap.NewNop()
	f.ledger = NewStockLedger(f.products, f.idem, 0, 0, f.monitor, log)
	f.catalog = NewProductService(f.products, f.ledger, f.monitor)
	f.orderSvc = NewOrderService(f.orders, policy, f.monitor, log)
	return f
}

func (f *fixture) product(t *testing.T, stock int64) *product.Product {
	t.Helper()
	p := &product.Product{
		Name:        "Cotton Tee",
		Price:       decimal.RequireFromString("19.99"),
		Category:    product.CategoryMen,
		SubCategory: product.SubCategoryTopwear,
		Sizes:       []string{"M"},
		Stock:       stock,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) order(t *testing.T, method order.PaymentMethod) *order.Order {
	t.Helper()
	o, err := f.orderSvc.Create(context.Background(), &order.Order{
		Customer:      order.Customer{Name: "Ann", Email: "ann@example.com"},
		Items:         []order.Item{{ProductID: 1, Name: "Cotton Tee", Size: "M", Quantity: 2, UnitPrice: decimal.NewFromInt(20)}},
		DeliveryFee:   decimal.NewFromInt(10),
		PaymentMethod: method,
	})
	require.NoError(t, err)
	return o
}
