package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/datamodels/review"
)

var hundred = decimal.NewFromInt(100)

// MonthRevenue 单月营收
type MonthRevenue struct {
	Month   string  `json:"month"` // YYYY-MM
	Label   string  `json:"label"` // Jan
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

type RecentOrder struct {
	ID           int64     `json:"id"`
	OrderNumber  string    `json:"orderNumber"`
	CustomerName string    `json:"customerName"`
	Amount       float64   `json:"amount"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

type LowStockProduct struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Stock int64  `json:"stock"`
}

type PaymentMethodStat struct {
	Method  string  `json:"method"`
	Count   int     `json:"count"`
	Revenue float64 `json:"revenue"`
}

// Dashboard 仪表盘快照，每次请求重新计算
type Dashboard struct {
	Currency                config.CurrencyConfig `json:"currency"`
	TotalProducts           int                   `json:"totalProducts"`
	TotalOrders             int                   `json:"totalOrders"`
	TotalRevenue            float64               `json:"totalRevenue"`
	TotalCustomers          int                   `json:"totalCustomers"`
	TotalReviews            int                   `json:"totalReviews"`
	AverageRating           float64               `json:"averageRating"`
	OrderStatusCounts       map[string]int        `json:"orderStatusCounts"`
	CompletedOrders         int                   `json:"completedOrders"`
	CancelledOrders         int                   `json:"cancelledOrders"`
	PendingOrders           int                   `json:"pendingOrders"`
	CompletionRate          float64               `json:"completionRate"`
	CancellationRate        float64               `json:"cancellationRate"`
	AverageOrderValue       float64               `json:"averageOrderValue"`
	MonthlyRevenue          []MonthRevenue        `json:"monthlyRevenue"`
	TopCategories           []CategoryCount       `json:"topCategories"`
	OrderStatusDistribution []StatusCount         `json:"orderStatusDistribution"`
	RecentOrders            []RecentOrder         `json:"recentOrders"`
	LowStockProducts        []LowStockProduct     `json:"lowStockProducts"`
	StockReport             StockReport           `json:"stockReport"`
	RevenueGrowth           float64               `json:"revenueGrowth"`
	PaymentMethods          []PaymentMethodStat   `json:"paymentMethods"`
}

// AnalyticsService 仪表盘统计，无缓存
type AnalyticsService struct {
	products product.Repository
	orders   order.Repository
	reviews  review.Repository
	cfg      config.AnalyticsConfig
	currency config.CurrencyConfig
	monitor  *Monitor
	now      func() time.Time
}

// NewAnalyticsService 创建统计服务
func NewAnalyticsService(products product.Repository, orders order.Repository, reviews review.Repository,
	cfg config.AnalyticsConfig, currency config.CurrencyConfig, monitor *Monitor) *AnalyticsService {
	if cfg.RevenueMonths <= 0 {
		cfg.RevenueMonths = 6
	}
	if cfg.RecentOrders <= 0 {
		cfg.RecentOrders = 5
	}
	if cfg.TopCategories <= 0 {
		cfg.TopCategories = 5
	}
	return &AnalyticsService{
		products: products,
		orders:   orders,
		reviews:  reviews,
		cfg:      cfg,
		currency: currency,
		monitor:  monitor,
		now:      time.Now,
	}
}

// Dashboard 读取商品、订单、评价并计算快照
func (s *AnalyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	products, err := s.products.ListAll(ctx)
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	reviews, err := s.reviews.ListAll(ctx)
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	return s.compute(products, orders, reviews), nil
}

func (s *AnalyticsService) compute(products []*product.Product, orders []*order.Order, reviews []*review.Review) *Dashboard {
	d := &Dashboard{
		Currency:      s.currency,
		TotalProducts: len(products),
		TotalOrders:   len(orders),
		TotalReviews:  len(reviews),
	}

	// 订单
	revenue := decimal.Zero
	customers := make(map[string]bool)
	statusCounts := make(map[order.Status]int, len(order.Statuses))
	type methodAgg struct {
		count   int
		revenue decimal.Decimal
	}
	methods := make(map[order.PaymentMethod]*methodAgg)
	for _, o := range orders {
		total := o.Total()
		revenue = revenue.Add(total)
		if email := strings.ToLower(strings.TrimSpace(o.Customer.Email)); email != "" {
			customers[email] = true
		}
		statusCounts[o.Status]++
		switch {
		case o.Status.Completed():
			d.CompletedOrders++
		case o.Status.Cancelled():
			d.CancelledOrders++
		default:
			d.PendingOrders++
		}
		agg := methods[o.PaymentMethod]
		if agg == nil {
			agg = &methodAgg{revenue: decimal.Zero}
			methods[o.PaymentMethod] = agg
		}
		agg.count++
		agg.revenue = agg.revenue.Add(total)
	}
	d.TotalRevenue = money(revenue)
	d.TotalCustomers = len(customers)
	if n := len(orders); n > 0 {
		d.AverageOrderValue = money(revenue.Div(decimal.NewFromInt(int64(n))))
	}
	d.CompletionRate = percent(d.CompletedOrders, len(orders))
	d.CancellationRate = percent(d.CancelledOrders, len(orders))

	d.OrderStatusCounts = make(map[string]int, len(order.Statuses))
	d.OrderStatusDistribution = make([]StatusCount, 0, len(order.Statuses))
	for _, st := range order.Statuses {
		d.OrderStatusCounts[string(st)] = statusCounts[st]
		d.OrderStatusDistribution = append(d.OrderStatusDistribution, StatusCount{Status: string(st), Count: statusCounts[st]})
	}

	d.PaymentMethods = make([]PaymentMethodStat, 0, len(methods))
	for m, agg := range methods {
		d.PaymentMethods = append(d.PaymentMethods, PaymentMethodStat{Method: string(m), Count: agg.count, Revenue: money(agg.revenue)})
	}
	sort.Slice(d.PaymentMethods, func(i, j int) bool {
		a, b := d.PaymentMethods[i], d.PaymentMethods[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Method < b.Method
	})

	d.MonthlyRevenue, d.RevenueGrowth = s.monthly(orders)
	d.RecentOrders = s.recent(orders)

	// 评价
	if len(reviews) > 0 {
		sum := 0
		for _, rv := range reviews {
			sum += rv.Rating
		}
		d.AverageRating = decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(len(reviews)))).Round(1).InexactFloat64()
	}

	// 商品
	d.TopCategories = s.topCategories(products)
	d.LowStockProducts = lowStock(products)
	d.StockReport = *buildStockReport(products)
	return d
}

// monthly 最近 N 个自然月的营收（旧的在前）以及本月相对上月的增长率
func (s *AnalyticsService) monthly(orders []*order.Order) ([]MonthRevenue, float64) {
	now := s.now()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	previous := current.AddDate(0, -1, 0)

	n := s.cfg.RevenueMonths
	months := make([]MonthRevenue, n)
	sums := make([]decimal.Decimal, n)
	index := make(map[string]int, n)
	for i := 0; i < n; i++ {
		start := current.AddDate(0, i-n+1, 0)
		key := start.Format("2006-01")
		months[i] = MonthRevenue{Month: key, Label: start.Format("Jan")}
		sums[i] = decimal.Zero
		index[key] = i
	}

	cur, prev := decimal.Zero, decimal.Zero
	curKey, prevKey := current.Format("2006-01"), previous.Format("2006-01")
	for _, o := range orders {
		key := o.CreatedAt.In(now.Location()).Format("2006-01")
		total := o.Total()
		if i, ok := index[key]; ok {
			sums[i] = sums[i].Add(total)
			months[i].Orders++
		}
		switch key {
		case curKey:
			cur = cur.Add(total)
		case prevKey:
			prev = prev.Add(total)
		}
	}
	for i := range months {
		months[i].Revenue = money(sums[i])
	}

	growth := 0.0
	if prev.IsPositive() {
		growth = cur.Sub(prev).Div(prev).Mul(hundred).Round(1).InexactFloat64()
	}
	return months, growth
}

func (s *AnalyticsService) recent(orders []*order.Order) []RecentOrder {
	sorted := append([]*order.Order(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	if len(sorted) > s.cfg.RecentOrders {
		sorted = sorted[:s.cfg.RecentOrders]
	}
	out := make([]RecentOrder, 0, len(sorted))
	for _, o := range sorted {
		out = append(out, RecentOrder{
			ID:           o.ID,
			OrderNumber:  o.OrderNumber,
			CustomerName: o.Customer.Name,
			Amount:       money(o.Total()),
			Status:       string(o.Status),
			CreatedAt:    o.CreatedAt,
		})
	}
	return out
}

func (s *AnalyticsService) topCategories(products []*product.Product) []CategoryCount {
	counts := make(map[product.Category]int)
	for _, p := range products {
		counts[p.Category]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		out = append(out, CategoryCount{Category: string(c), Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	if len(out) > s.cfg.TopCategories {
		out = out[:s.cfg.TopCategories]
	}
	return out
}

// lowStock 库存在 (0, LowStockThreshold] 之间的商品，库存少的在前
func lowStock(products []*product.Product) []LowStockProduct {
	out := make([]LowStockProduct, 0)
	for _, p := range products {
		if product.StockStatusOf(p.Stock) == product.LowStock {
			out = append(out, LowStockProduct{ID: p.ID, Name: p.Name, Stock: p.Stock})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Stock != out[j].Stock {
			return out[i].Stock < out[j].Stock
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(total))).Round(1).InexactFloat64()
}
