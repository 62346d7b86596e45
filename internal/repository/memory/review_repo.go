package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/commerceops/internal/datamodels/review"
)

type reviewRepo struct {
	mu     sync.RWMutex
	nextID int64
	list   []review.Review
}

// NewReviewRepository 创建内存评价仓储
func NewReviewRepository() review.Repository {
	return &reviewRepo{}
}

func cloneReview(rv review.Review) *review.Review {
	rv.Helpful = append([]string(nil), rv.Helpful...)
	return &rv
}

func (r *reviewRepo) sorted(keep func(*review.Review) bool) []*review.Review {
	out := make([]*review.Review, 0, len(r.list))
	for _, rv := range r.list {
		rv := rv
		if keep == nil || keep(&rv) {
			out = append(out, cloneReview(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *reviewRepo) ListAll(ctx context.Context) ([]*review.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(nil), nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID int64) ([]*review.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sorted(func(rv *review.Review) bool { return rv.ProductID == productID }), nil
}

func (r *reviewRepo) Create(ctx context.Context, rv *review.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rv.ID = r.nextID
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now()
	}
	r.list = append(r.list, *cloneReview(*rv))
	return nil
}
