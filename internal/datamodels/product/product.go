package product

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/commerceops/internal/errs"
)

// Category 商品大类
type Category string

const (
	CategoryMen   Category = "Men"
	CategoryWomen Category = "Women"
	CategoryKids  Category = "Kids"
)

// SubCategory 商品子类，决定尺码体系
type SubCategory string

const (
	SubCategoryTopwear    SubCategory = "Topwear"
	SubCategoryBottomwear SubCategory = "Bottomwear"
	SubCategoryWinterwear SubCategory = "Winterwear"
)

// MaxImages 每个商品最多保存的图片数量
const MaxImages = 4

var (
	letterSizes = []string{"XS", "S", "M", "L", "XL", "XXL"}
	inchSizes   = []string{"28", "30", "32", "34", "36", "38", "40"}
)

func (c Category) Valid() bool {
	switch c {
	case CategoryMen, CategoryWomen, CategoryKids:
		return true
	}
	return false
}

func (s SubCategory) Valid() bool {
	switch s {
	case SubCategoryTopwear, SubCategoryBottomwear, SubCategoryWinterwear:
		return true
	}
	return false
}

// SizeVocabulary 返回子类可用的尺码：Bottomwear 用腰围英寸，其余用字母码
func (s SubCategory) SizeVocabulary() []string {
	if s == SubCategoryBottomwear {
		return inchSizes
	}
	return letterSizes
}

// AllowsSize 判断尺码是否属于该子类的尺码体系
func (s SubCategory) AllowsSize(size string) bool {
	for _, v := range s.SizeVocabulary() {
		if v == size {
			return true
		}
	}
	return false
}

// Product 商品模型
type Product struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:128;not null" json:"name"`
	Description string          `gorm:"size:2048" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Category    Category        `gorm:"size:16;index;not null" json:"category"`
	SubCategory SubCategory     `gorm:"size:16;index;not null" json:"subCategory"`
	Sizes       []string        `gorm:"serializer:json;type:json" json:"sizes"`
	Bestseller  bool            `gorm:"not null;default:false" json:"bestseller"`
	Stock       int64           `gorm:"not null;default:0" json:"stock"`
	Images      []string        `gorm:"serializer:json;type:json" json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// StockStatus 库存状态标签
type StockStatus string

const (
	OutOfStock StockStatus = "OutOfStock"
	LowStock   StockStatus = "LowStock"
	InStock    StockStatus = "InStock"
)

// LowStockThreshold 低库存阈值（含），固定策略常量
const LowStockThreshold = 10

// MaxStock 单个商品库存上限，调整结果超过上限时拒绝
const MaxStock int64 = 1_000_000_000

// StockStatusOf 根据库存数量推导状态：0 缺货，1-10 低库存，>10 有货
func StockStatusOf(stock int64) StockStatus {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock <= LowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}

// StockOperation 库存调整方式
type StockOperation string

const (
	OpSet       StockOperation = "set"
	OpIncrement StockOperation = "increment"
	OpDecrement StockOperation = "decrement"
)

func (op StockOperation) Valid() bool {
	switch op {
	case OpSet, OpIncrement, OpDecrement:
		return true
	}
	return false
}

// Apply 计算调整后的库存，decrement 在 0 处截断，结果超过 MaxStock 返回 ErrStockLimit
func (op StockOperation) Apply(current, quantity int64) (int64, error) {
	if quantity < 0 {
		return current, errs.ErrInvalidQuantity
	}
	switch op {
	case OpSet:
		if quantity > MaxStock {
			return current, errs.ErrStockLimit
		}
		return quantity, nil
	case OpIncrement:
		// 先比较再相加，避免 int64 溢出
		if quantity > MaxStock-current {
			return current, errs.ErrStockLimit
		}
		return current + quantity, nil
	case OpDecrement:
		if quantity >= current {
			return 0, nil
		}
		return current - quantity, nil
	}
	return current, errs.New(errs.InvalidInput, "operation must be one of set, increment, decrement")
}

// Repository 商品仓储接口
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) error
	// AdjustStock 原子地读-改-写库存，返回调整后的商品
	AdjustStock(ctx context.Context, id int64, quantity int64, op StockOperation) (*Product, error)
}
