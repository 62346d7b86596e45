package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/commerceops/internal/datamodels/order"
)

type orderRepo struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, o *order.Order) error {
	return translate(r.db.WithContext(ctx).Create(o).Error, "create order")
}

func (r *orderRepo) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}

func (r *orderRepo) ListAll(ctx context.Context) ([]*order.Order, error) {
	var list []*order.Order
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, translate(err, "list orders")
	}
	return list, nil
}

func (r *orderRepo) Mutate(ctx context.Context, id int64, fn order.MutateFunc) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 锁定订单行，检查与写入在同一事务内完成
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, id).Error; err != nil {
			return err
		}
		if err := fn(&o); err != nil {
			return err
		}
		return tx.Model(&o).Select("status", "payment_status", "updated_at").Updates(&o).Error
	})
	if err != nil {
		return nil, translate(err, "order")
	}
	return &o, nil
}
