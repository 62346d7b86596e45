package message

import (
	"context"
	"time"
)

// Status 留言处理状态，不限定迁移顺序
type Status string

const (
	StatusNew      Status = "new"
	StatusRead     Status = "read"
	StatusReplied  Status = "replied"
	StatusResolved Status = "resolved"
	StatusArchived Status = "archived"
)

// Statuses 全部留言状态
var Statuses = []Status{StatusNew, StatusRead, StatusReplied, StatusResolved, StatusArchived}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// Priority 留言优先级
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Message 联系我们留言
type Message struct {
	ID           uint64     `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:128;not null" json:"name"`
	Email        string     `gorm:"size:255;index;not null" json:"email"`
	Subject      string     `gorm:"size:255;not null" json:"subject"`
	Body         string     `gorm:"column:message;type:text;not null" json:"message"`
	Status       Status     `gorm:"size:16;index;not null" json:"status"`
	Priority     Priority   `gorm:"size:16;index;not null" json:"priority"`
	Reply        string     `gorm:"type:text" json:"reply,omitempty"`
	RespondedBy  string     `gorm:"size:128" json:"respondedBy,omitempty"`
	ResponseDate *time.Time `json:"responseDate,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Filter 列表查询条件，Page 从 1 开始
type Filter struct {
	Status   Status
	Priority Priority
	Search   string
	Page     int
	PageSize int
}

// Offset 分页偏移量
func (f Filter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// MutateFunc 在行锁内修改留言；返回错误则放弃本次写入
type MutateFunc func(m *Message) error

// Repository 留言仓储接口
type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uint64) (*Message, error)
	Delete(ctx context.Context, id uint64) error
	// List 按条件分页查询，返回当前页数据和符合条件的总数，按创建时间倒序
	List(ctx context.Context, f Filter) ([]*Message, int64, error)
	CountByStatus(ctx context.Context) (map[Status]int64, error)
	Mutate(ctx context.Context, id uint64, fn MutateFunc) (*Message, error)
}
