package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/example/commerceops/internal/datamodels/message"
	"github.com/example/commerceops/internal/errs"
)

type messageRepo struct {
	mu     sync.RWMutex
	nextID uint64
	m      map[uint64]message.Message
	now    func() time.Time
}

// NewMessageRepository 创建内存留言仓储
func NewMessageRepository() message.Repository {
	return &messageRepo{m: make(map[uint64]message.Message), now: time.Now}
}

func cloneMessage(m message.Message) *message.Message {
	if m.ResponseDate != nil {
		t := *m.ResponseDate
		m.ResponseDate = &t
	}
	return &m
}

func (r *messageRepo) Create(ctx context.Context, m *message.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := r.now()
	m.ID = r.nextID
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	r.m[m.ID] = *cloneMessage(*m)
	return nil
}

func (r *messageRepo) GetByID(ctx context.Context, id uint64) (*message.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.m[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "message not found")
	}
	return cloneMessage(m), nil
}

func (r *messageRepo) Delete(ctx context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[id]; !ok {
		return errs.New(errs.NotFound, "message not found")
	}
	delete(r.m, id)
	return nil
}

func matches(m *message.Message, f message.Filter) bool {
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	if f.Priority != "" && m.Priority != f.Priority {
		return false
	}
	s := strings.ToLower(strings.TrimSpace(f.Search))
	if s == "" {
		return true
	}
	for _, field := range []string{m.Name, m.Email, m.Subject, m.Body} {
		if strings.Contains(strings.ToLower(field), s) {
			return true
		}
	}
	return false
}

func (r *messageRepo) List(ctx context.Context, f message.Filter) ([]*message.Message, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var hits []*message.Message
	for _, m := range r.m {
		m := m
		if matches(&m, f) {
			hits = append(hits, cloneMessage(m))
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if !hits[i].CreatedAt.Equal(hits[j].CreatedAt) {
			return hits[i].CreatedAt.After(hits[j].CreatedAt)
		}
		return hits[i].ID > hits[j].ID
	})

	total := int64(len(hits))
	start := f.Offset()
	if start >= len(hits) {
		return []*message.Message{}, total, nil
	}
	end := len(hits)
	if f.PageSize > 0 && start+f.PageSize < end {
		end = start + f.PageSize
	}
	return hits[start:end], total, nil
}

func (r *messageRepo) CountByStatus(ctx context.Context) (map[message.Status]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[message.Status]int64)
	for _, m := range r.m {
		out[m.Status]++
	}
	return out, nil
}

func (r *messageRepo) Mutate(ctx context.Context, id uint64, fn message.MutateFunc) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.m[id]
	if !ok {
		return nil, errs.New(errs.NotFound, "message not found")
	}
	work := cloneMessage(cur)
	if err := fn(work); err != nil {
		return nil, err
	}
	work.UpdatedAt = r.now()
	r.m[id] = *cloneMessage(*work)
	return work, nil
}
