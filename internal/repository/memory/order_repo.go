package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/errs"
)

type orderRepo struct {
	mu     sync.RWMutex
	nextID int64
	m      map[int64]order.Order
	now    func() time.Time
}

// NewOrderRepository 创建内存订单仓储
func NewOrderRepository() order.Repository {
	return &orderRepo{m: make(map[int64]order.Order), now: time.Now}
}

func cloneOrder(o order.Order) *order.Order {
	o.Items = append([]order.Item(nil), o.Items...)
	return &o
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.m {
		if existing.OrderNumber == o.OrderNumber {
			return errs.New(errs.Conflict, "order number already exists")
		}
	}
	r.nextID++
	now := r.now()
	o.ID = r.nextID
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	r.m[o.ID] = *cloneOrder(*o)
	return nil
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.m[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "order not found")
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*order.Order, 0, len(r.m))
	for _, o := range r.m {
		list = append(list, cloneOrder(o))
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list, nil
}

func (r *orderRepo) Mutate(ctx context.Context, id int64, fn order.MutateFunc) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.m[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "order not found")
	}
	// 在副本上修改，fn 失败时原记录保持不变
	work := cloneOrder(cur)
	if err := fn(work); err != nil {
		return nil, err
	}
	work.UpdatedAt = r.now()
	r.m[id] = *cloneOrder(*work)
	return work, nil
}
