package review

import (
	"context"
	"time"
)

// Reviewer 评价用户
type Reviewer struct {
	Name  string `gorm:"size:128" json:"name"`
	Email string `gorm:"size:255" json:"email"`
}

// Review 商品评价，本服务只读
type Review struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	ProductID int64     `gorm:"index;not null" json:"productId"`
	User      Reviewer  `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	Rating    int       `gorm:"not null" json:"rating"` // 1-5
	Comment   string    `gorm:"type:text" json:"comment"`
	Helpful   []string  `gorm:"serializer:json;type:json" json:"helpful"` // 点过“有用”的用户邮箱
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// Repository 评价仓储接口
type Repository interface {
	ListAll(ctx context.Context) ([]*Review, error)
	ListByProduct(ctx context.Context, productID int64) ([]*Review, error)
	Create(ctx context.Context, r *Review) error
}
