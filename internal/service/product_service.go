package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/errs"
)

// ProductInput 新增/编辑商品的字段。编辑时 Images 为 nil 表示保留原图，
// Stock 为 nil 表示不改库存。
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    product.Category
	SubCategory product.SubCategory
	Sizes       []string
	Bestseller  bool
	Stock       *int64
	Images      []string
}

type ProductService struct {
	repo    product.Repository
	ledger  *StockLedger
	monitor *Monitor
}

func NewProductService(repo product.Repository, ledger *StockLedger, monitor *Monitor) *ProductService {
	return &ProductService{repo: repo, ledger: ledger, monitor: monitor}
}

func (s *ProductService) ListAll(ctx context.Context) ([]*product.Product, error) {
	list, err := s.repo.ListAll(ctx)
	if err != nil {
		s.monitor.Observe(err)
	}
	return list, err
}

func (s *ProductService) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Create 校验并新增商品
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*product.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &product.Product{}
	in.applyTo(p)
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	return p, nil
}

// Update 编辑商品；库存与当前值不同时交给 StockLedger 以 set 方式原子写入，
// 未改动的库存不会覆盖并发的扣减
func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput) (*product.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stockChanged := in.Stock != nil && *in.Stock != p.Stock
	in.applyTo(p)
	if err := s.repo.Update(ctx, p); err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	if stockChanged {
		if _, err := s.ledger.Adjust(ctx, AdjustRequest{ProductID: id, Quantity: *in.Stock, Operation: product.OpSet}); err != nil {
			return nil, err
		}
	}
	return s.repo.GetByID(ctx, id)
}

// Delete 删除商品（物理删除）
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.monitor.Observe(err)
		return err
	}
	return nil
}

func (in *ProductInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return errs.New(errs.InvalidInput, "name is required")
	}
	if !in.Price.IsPositive() {
		return errs.New(errs.InvalidInput, "price must be greater than 0")
	}
	if !in.Category.Valid() {
		return errs.New(errs.InvalidInput, "category must be one of Men, Women, Kids")
	}
	if !in.SubCategory.Valid() {
		return errs.New(errs.InvalidInput, "subCategory must be one of Topwear, Bottomwear, Winterwear")
	}
	if len(in.Sizes) == 0 {
		return errs.New(errs.InvalidInput, "select at least one size")
	}
	seen := make(map[string]bool, len(in.Sizes))
	sizes := make([]string, 0, len(in.Sizes))
	for _, sz := range in.Sizes {
		sz = strings.ToUpper(strings.TrimSpace(sz))
		if !in.SubCategory.AllowsSize(sz) {
			return errs.New(errs.InvalidInput, "size %q is not valid for %s", sz, in.SubCategory)
		}
		if !seen[sz] {
			seen[sz] = true
			sizes = append(sizes, sz)
		}
	}
	in.Sizes = sizes
	if in.Stock != nil && *in.Stock < 0 {
		return errs.ErrInvalidQuantity
	}
	if in.Stock != nil && *in.Stock > product.MaxStock {
		return errs.ErrStockLimit
	}
	if len(in.Images) > product.MaxImages {
		return errs.New(errs.InvalidInput, "at most %d images are allowed", product.MaxImages)
	}
	return nil
}

func (in *ProductInput) applyTo(p *product.Product) {
	p.Name = in.Name
	p.Description = strings.TrimSpace(in.Description)
	p.Price = in.Price.Round(2)
	p.Category = in.Category
	p.SubCategory = in.SubCategory
	p.Sizes = in.Sizes
	p.Bestseller = in.Bestseller
	if in.Images != nil {
		p.Images = compactImages(in.Images)
	}
}

func compactImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		if img = strings.TrimSpace(img); img != "" {
			out = append(out, img)
		}
	}
	return out
}
