package service

import (
	"context"

	"github.com/example/commerceops/internal/datamodels/review"
)

// ReviewService 商品评价（只读）
type ReviewService struct {
	repo    review.Repository
	monitor *Monitor
}

func NewReviewService(repo review.Repository, monitor *Monitor) *ReviewService {
	return &ReviewService{repo: repo, monitor: monitor}
}

// List productID 为 0 时返回全部评价
func (s *ReviewService) List(ctx context.Context, productID int64) ([]*review.Review, error) {
	var (
		list []*review.Review
		err  error
	)
	if productID > 0 {
		list, err = s.repo.ListByProduct(ctx, productID)
	} else {
		list, err = s.repo.ListAll(ctx)
	}
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	return list, nil
}
