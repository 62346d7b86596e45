package mysql

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/commerceops/internal/datamodels/product"
)

type productRepo struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepo{db: db}
}

func (r *productRepo) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}

func (r *productRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	var list []*product.Product
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, translate(err, "list products")
	}
	return list, nil
}

func (r *productRepo) Create(ctx context.Context, p *product.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error, "create product")
}

func (r *productRepo) Update(ctx context.Context, p *product.Product) error {
	// 库存只允许通过 AdjustStock 修改，这里不写 stock 列，避免覆盖并发调整
	err := r.db.WithContext(ctx).Model(p).Select("*").Omit("id", "stock", "created_at").Updates(p).Error
	return translate(err, "update product")
}

func (r *productRepo) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&product.Product{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "product")
	}
	return nil
}

func (r *productRepo) AdjustStock(ctx context.Context, id int64, quantity int64, op product.StockOperation) (*product.Product, error) {
	var p product.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 行锁保证并发调整不会丢失更新
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&p, id).Error; err != nil {
			return err
		}
		next, err := op.Apply(p.Stock, quantity)
		if err != nil {
			return err
		}
		if err := tx.Model(&p).Update("stock", next).Error; err != nil {
			return err
		}
		p.Stock = next
		return nil
	})
	if err != nil {
		return nil, translate(err, "product")
	}
	return &p, nil
}
