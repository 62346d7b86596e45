// Package seed 写入一套演示数据：商品、订单、评价和留言，便于本地联调后台页面。
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/commerceops/internal/datamodels/order"
	"github.com/example/commerceops/internal/datamodels/product"
	"github.com/example/commerceops/internal/datamodels/review"
	"github.com/example/commerceops/internal/service"
)

// Summary 写入数量
type Summary struct {
	Products int
	Orders   int
	Reviews  int
	Messages int
}

func (s Summary) String() string {
	return fmt.Sprintf("products=%d orders=%d reviews=%d messages=%d", s.Products, s.Orders, s.Reviews, s.Messages)
}

type catalogItem struct {
	name  string
	price string
	cat   product.Category
	sub   product.SubCategory
	sizes []string
	stock int64
	best  bool
}

var catalog = []catalogItem{
	{"Classic Cotton Tee", "19.99", product.CategoryMen, product.SubCategoryTopwear, []string{"S", "M", "L", "XL"}, 120, true},
	{"Slim Fit Chinos", "39.50", product.CategoryMen, product.SubCategoryBottomwear, []string{"30", "32", "34"}, 8, false},
	{"Quilted Puffer Jacket", "89.00", product.CategoryMen, product.SubCategoryWinterwear, []string{"M", "L"}, 0, false},
	{"Linen Blouse", "29.00", product.CategoryWomen, product.SubCategoryTopwear, []string{"XS", "S", "M"}, 45, true},
	{"High Waist Jeans", "49.99", product.CategoryWomen, product.SubCategoryBottomwear, []string{"28", "30", "32"}, 3, false},
	{"Wool Blend Coat", "129.00", product.CategoryWomen, product.SubCategoryWinterwear, []string{"S", "M", "L"}, 15, false},
	{"Kids Graphic Hoodie", "24.00", product.CategoryKids, product.SubCategoryWinterwear, []string{"XS", "S"}, 10, true},
}

// Demo 通过服务层写入演示数据，校验规则与后台接口一致
func Demo(ctx context.Context, products *service.ProductService, orders *service.OrderService,
	messages *service.MessageService, reviews review.Repository, now time.Time) (Summary, error) {
	var sum Summary

	created := make([]*product.Product, 0, len(catalog))
	for _, c := range catalog {
		stock := c.stock
		p, err := products.Create(ctx, service.ProductInput{
			Name:        c.name,
			Description: c.name + " from the demo catalog",
			Price:       decimal.RequireFromString(c.price),
			Category:    c.cat,
			SubCategory: c.sub,
			Sizes:       c.sizes,
			Bestseller:  c.best,
			Stock:       &stock,
			Images:      []string{fmt.Sprintf("demo/%s.jpg", slug(c.name))},
		})
		if err != nil {
			return sum, fmt.Errorf("seed product %q: %w", c.name, err)
		}
		created = append(created, p)
		sum.Products++
	}

	type demoOrder struct {
		customer string
		email    string
		items    []int
		method   order.PaymentMethod
		status   order.Status
		paid     order.PaymentStatus
		daysAgo  int
	}
	demoOrders := []demoOrder{
		{"Ann Lee", "ann@example.com", []int{0, 3}, order.PaymentStripe, order.StatusDelivered, order.PaymentCompleted, 70},
		{"Bob Ray", "bob@example.com", []int{1}, order.PaymentCOD, order.StatusDelivered, order.PaymentCompleted, 40},
		{"Cy Tan", "cy@example.com", []int{5}, order.PaymentRazorpay, order.StatusCancelled, order.PaymentFailed, 35},
		{"Ann Lee", "ANN@example.com", []int{4, 6}, order.PaymentCOD, order.StatusShipped, order.PaymentPending, 6},
		{"Dee Fox", "dee@example.com", []int{2}, order.PaymentStripe, order.StatusProcessing, order.PaymentCompleted, 2},
		{"Eli Moss", "eli@example.com", []int{0}, order.PaymentCOD, order.StatusPlaced, order.PaymentPending, 0},
	}
	for _, d := range demoOrders {
		o := &order.Order{
			Customer:      order.Customer{Name: d.customer, Email: d.email},
			Address:       order.Address{Street: "1 Demo St", City: "Springfield", Country: "US", Zipcode: "00001"},
			DeliveryFee:   decimal.NewFromInt(10),
			PaymentMethod: d.method,
			Status:        d.status,
			PaymentStatus: d.paid,
			CreatedAt:     now.AddDate(0, 0, -d.daysAgo),
		}
		for _, idx := range d.items {
			p := created[idx]
			o.Items = append(o.Items, order.Item{ProductID: p.ID, Name: p.Name, Size: p.Sizes[0], Quantity: 1, UnitPrice: p.Price})
		}
		if _, err := orders.Create(ctx, o); err != nil {
			return sum, fmt.Errorf("seed order for %s: %w", d.email, err)
		}
		sum.Orders++
	}

	for i, r := range []struct {
		product int
		rating  int
		comment string
	}{
		{0, 5, "Soft and fits well"},
		{0, 4, "Good value"},
		{3, 4, "Nice fabric"},
		{5, 3, "Runs a bit large"},
	} {
		rv := &review.Review{
			ProductID: created[r.product].ID,
			User:      review.Reviewer{Name: fmt.Sprintf("Reviewer %d", i+1), Email: fmt.Sprintf("reviewer%d@example.com", i+1)},
			Rating:    r.rating,
			Comment:   r.comment,
			Helpful:   []string{},
		}
		if err := reviews.Create(ctx, rv); err != nil {
			return sum, fmt.Errorf("seed review: %w", err)
		}
		sum.Reviews++
	}

	for _, m := range []service.SubmitInput{
		{Name: "Ann Lee", Email: "ann@example.com", Subject: "Refund for jeans", Message: "The jeans were too small, can I get a refund?"},
		{Name: "Bob Ray", Email: "bob@example.com", Subject: "Delivery time", Message: "When will my order arrive?"},
		{Name: "Cy Tan", Email: "cy@example.com", Subject: "Payment failed", Message: "My card payment failed twice."},
	} {
		if _, err := messages.Submit(ctx, m); err != nil {
			return sum, fmt.Errorf("seed message: %w", err)
		}
		sum.Messages++
	}
	return sum, nil
}

func slug(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+'a'-'A')
		case r == ' ':
			out = append(out, '-')
		}
	}
	return string(out)
}
