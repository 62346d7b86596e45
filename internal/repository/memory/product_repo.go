// Package memory 提供与 mysql 仓储行为一致的内存实现，用于本地演示和测试。
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/errs"
)

type productRepo struct {
	mu     sync.RWMutex
	nextID int64
	m      map[int64]product.Product
	now    func() time.Time
}

// NewProductRepository 创建内存商品仓储
func NewProductRepository() product.Repository {
	return &productRepo{m: make(map[int64]product.Product), now: time.Now}
}

func cloneProduct(p product.Product) *product.Product {
	p.Sizes = append([]string(nil), p.Sizes...)
	p.Images = append([]string(nil), p.Images...)
	return &p
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.m[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "product not found")
	}
	return cloneProduct(p), nil
}

func (r *productRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*product.Product, 0, len(r.m))
	for _, p := range r.m {
		list = append(list, cloneProduct(p))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.now()
	p.ID = r.nextID
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.m[p.ID] = *cloneProduct(*p)
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.m[p.ID]
	if !ok {
		return errs.New(errs.NotFound, "product not found")
	}
	next := *cloneProduct(*p)
	next.Stock = cur.Stock
	next.CreatedAt = cur.CreatedAt
	next.UpdatedAt = r.now()
	r.m[p.ID] = next
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return errs.New(errs.NotFound, "product not found")
	}
	delete(r.m, id)
	return nil
}

func (r *productRepo) AdjustStock(ctx context.Context, id int64, quantity int64, op product.StockOperation) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.m[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "product not found")
	}
	next, err := op.Apply(p.Stock, quantity)
	if err != nil {
		return nil, err
	}
	p.Stock = next
	p.UpdatedAt = r.now()
	r.m[id] = p
	return cloneProduct(p), nil
}
