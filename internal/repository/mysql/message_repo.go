package mysql

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/commerceops/internal/datamodels/message"
)

type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepository 创建留言仓储
func NewMessageRepository(db *gorm.DB) message.Repository {
	return &messageRepo{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *messageRepo) Create(ctx context.Context, m *message.Message) error {
	return translate(r.db.WithContext(ctx).Create(m).Error, "create message")
}

func (r *messageRepo) GetByID(ctx context.Context, id uint64) (*message.Message, error) {
	var m message.Message
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "message")
	}
	return &m, nil
}

func (r *messageRepo) Delete(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Delete(&message.Message{}, id)
	if res.Error != nil {
		return translate(res.Error, "delete message")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "message")
	}
	return nil
}

func (r *messageRepo) List(ctx context.Context, f message.Filter) ([]*message.Message, int64, error) {
	q := r.db.WithContext(ctx).Model(&message.Message{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		q = q.Where("priority = ?", f.Priority)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(subject) LIKE ? OR LOWER(message) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count messages")
	}

	var list []*message.Message
	if err := q.Order("created_at DESC").
		Order("id DESC").
		Offset(f.Offset()).
		Limit(f.PageSize).
		Find(&list).Error; err != nil {
		return nil, 0, translate(err, "list messages")
	}
	return list, total, nil
}

func (r *messageRepo) CountByStatus(ctx context.Context) (map[message.Status]int64, error) {
	var rows []struct {
		Status message.Status
		Count  int64
	}
	if err := r.db.WithContext(ctx).
		Model(&message.Message{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, translate(err, "count messages")
	}
	out := make(map[message.Status]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

func (r *messageRepo) Mutate(ctx context.Context, id uint64, fn message.MutateFunc) (*message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&m, id).Error; err != nil {
			return err
		}
		if err := fn(&m); err != nil {
			return err
		}
		return tx.Model(&m).
			Select("status", "priority", "reply", "responded_by", "response_date", "updated_at").
			Updates(&m).Error
	})
	if err != nil {
		return nil, translate(err, "message")
	}
	return &m, nil
}
