package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status 订单状态
type Status string

const (
	StatusPlaced     Status = "Order Placed"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Statuses 全部订单状态，顺序即生命周期顺序
var Statuses = []Status{StatusPlaced, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Terminal Delivered 与 Cancelled 为终态
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Completed 统计口径：Delivered 视为完成
func (s Status) Completed() bool { return s == StatusDelivered }

// Cancelled 统计口径：Cancelled 视为取消
func (s Status) Cancelled() bool { return s == StatusCancelled }

// PaymentStatus 支付状态
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentCompleted, PaymentFailed:
		return true
	}
	return false
}

// Terminal completed 与 failed 为支付终态
func (p PaymentStatus) Terminal() bool {
	return p == PaymentCompleted || p == PaymentFailed
}

// PaymentMethod 支付方式，cod 以外的都属于在线支付
type PaymentMethod string

const (
	PaymentCOD      PaymentMethod = "cod"
	PaymentStripe   PaymentMethod = "stripe"
	PaymentRazorpay PaymentMethod = "razorpay"
)

func (m PaymentMethod) IsCOD() bool { return m == PaymentCOD }

// Customer 下单客户
type Customer struct {
	Name  string `gorm:"size:128" json:"name"`
	Email string `gorm:"size:255;index" json:"email"`
}

// Address 收货地址
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zipcode string `json:"zipcode"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// Item 订单行
type Item struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Size      string          `json:"size"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Order 订单模型
type Order struct {
	ID            int64           `gorm:"primaryKey" json:"id"`
	OrderNumber   string          `gorm:"size:64;uniqueIndex;not null" json:"orderNumber"`
	Customer      Customer        `gorm:"embedded;embeddedPrefix:customer_" json:"customer"`
	Address       Address         `gorm:"serializer:json;type:json" json:"address"`
	Items         []Item          `gorm:"serializer:json;type:json" json:"items"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	DeliveryFee   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"deliveryFee"`
	PaymentMethod PaymentMethod   `gorm:"size:16;index;not null" json:"paymentMethod"`
	Status        Status          `gorm:"size:32;index;not null" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"size:16;index;not null" json:"paymentStatus"`
	CreatedAt     time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Total 实收金额 = 商品小计 + 运费
func (o *Order) Total() decimal.Decimal {
	return o.Amount.Add(o.DeliveryFee)
}

// MutateFunc 在行锁内修改订单；返回错误则放弃本次写入
type MutateFunc func(o *Order) error

// Repository 订单仓储接口
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	ListAll(ctx context.Context) ([]*Order, error)
	// Mutate 原子地检查并修改订单，用于状态机迁移
	Mutate(ctx context.Context, id int64, fn MutateFunc) (*Order, error)
}
