package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/commerceops/internal/datamodels/review"
)

type reviewRepo struct {
	db *gorm.DB
}

// NewReviewRepository 创建评价仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepo{db: db}
}

func (r *reviewRepo) ListAll(ctx context.Context) ([]*review.Review, error) {
	var list []*review.Review
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, translate(err, "list reviews")
	}
	return list, nil
}

func (r *reviewRepo) ListByProduct(ctx context.Context, productID int64) ([]*review.Review, error) {
	var list []*review.Review
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, translate(err, "list reviews")
	}
	return list, nil
}

func (r *reviewRepo) Create(ctx context.Context, rv *review.Review) error {
	return translate(r.db.WithContext(ctx).Create(rv).Error, "create review")
}
