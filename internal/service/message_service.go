package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/datamodels/message"
	"github.com/example/commerceops/internal/errs"
)

const (
	defaultPageSize  = 10
	maxPageSize      = 100
	defaultAdminName = "Admin"
)

// BulkAction 批量操作类型
type BulkAction string

const (
	BulkMarkRead       BulkAction = "mark_read"
	BulkMarkResolved   BulkAction = "mark_resolved"
	BulkArchive        BulkAction = "archive"
	BulkUpdateStatus   BulkAction = "update_status"
	BulkUpdatePriority BulkAction = "update_priority"
)

// SubmitInput 前台提交的留言
type SubmitInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ListQuery 留言列表查询参数
type ListQuery struct {
	Status   message.Status
	Priority message.Priority
	Search   string
	Page     int
	PageSize int
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

// MessageStats 各状态留言数量
type MessageStats struct {
	New      int64 `json:"new"`
	Read     int64 `json:"read"`
	Replied  int64 `json:"replied"`
	Resolved int64 `json:"resolved"`
	Archived int64 `json:"archived"`
	Total    int64 `json:"total"`
}

// MessagePage 列表查询结果
type MessagePage struct {
	Messages   []*message.Message `json:"messages"`
	Pagination Pagination         `json:"pagination"`
	Stats      MessageStats       `json:"stats"`
}

// BulkOutcome 批量操作中单条留言的结果
type BulkOutcome struct {
	ID      uint64 `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkResult 批量操作结果
type BulkResult struct {
	Updated int           `json:"updated"`
	Results []BulkOutcome `json:"results"`
}

// MessageService 留言分拣：状态、优先级、回复与批量操作
type MessageService struct {
	repo     message.Repository
	notifier ReplyNotifier
	monitor  *Monitor
	log      *zap.Logger
	now      func() time.Time
}

// NewMessageService 创建留言服务
func NewMessageService(repo message.Repository, notifier ReplyNotifier, monitor *Monitor, log *zap.Logger) *MessageService {
	return &MessageService{repo: repo, notifier: notifier, monitor: monitor, log: log, now: time.Now}
}

// Submit 公开入口：新留言状态为 new，优先级为 medium
func (s *MessageService) Submit(ctx context.Context, in SubmitInput) (*message.Message, error) {
	m := &message.Message{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Subject:  strings.TrimSpace(in.Subject),
		Body:     strings.TrimSpace(in.Message),
		Status:   message.StatusNew,
		Priority: message.PriorityMedium,
	}
	if m.Name == "" || m.Email == "" || m.Subject == "" || m.Body == "" {
		return nil, errs.New(errs.InvalidInput, "name, email, subject and message are required")
	}
	if addr, err := mail.ParseAddress(m.Email); err != nil || addr.Address != m.Email {
		return nil, errs.New(errs.InvalidInput, "invalid email address")
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	return m, nil
}

func (s *MessageService) Get(ctx context.Context, id uint64) (*message.Message, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *MessageService) Delete(ctx context.Context, id uint64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.monitor.Observe(err)
		return err
	}
	return nil
}

// List 按状态、优先级、关键字过滤并分页，附带全量状态统计
func (s *MessageService) List(ctx context.Context, q ListQuery) (*MessagePage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, errs.New(errs.InvalidInput, "unknown status %q", q.Status)
	}
	if q.Priority != "" && !q.Priority.Valid() {
		return nil, errs.New(errs.InvalidInput, "unknown priority %q", q.Priority)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}

	list, total, err := s.repo.List(ctx, message.Filter{
		Status:   q.Status,
		Priority: q.Priority,
		Search:   strings.TrimSpace(q.Search),
		Page:     q.Page,
		PageSize: q.PageSize,
	})
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	size := int64(q.PageSize)
	return &MessagePage{
		Messages: list,
		Pagination: Pagination{
			Page:       q.Page,
			PageSize:   q.PageSize,
			Total:      total,
			TotalPages: (total + size - 1) / size,
		},
		Stats: *stats,
	}, nil
}

// Stats 各状态数量，五种状态都会出现
func (s *MessageService) Stats(ctx context.Context) (*MessageStats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	st := &MessageStats{
		New:      counts[message.StatusNew],
		Read:     counts[message.StatusRead],
		Replied:  counts[message.StatusReplied],
		Resolved: counts[message.StatusResolved],
		Archived: counts[message.StatusArchived],
	}
	st.Total = st.New + st.Read + st.Replied + st.Resolved + st.Archived
	return st, nil
}

// UpdateStatus 修改状态和/或优先级。replied 只能通过 Reply 设置。
func (s *MessageService) UpdateStatus(ctx context.Context, id uint64, status *message.Status, priority *message.Priority) (*message.Message, error) {
	if status == nil && priority == nil {
		return nil, errs.New(errs.InvalidInput, "status or priority is required")
	}
	if status != nil {
		if err := checkManualStatus(*status); err != nil {
			return nil, err
		}
	}
	if priority != nil && !priority.Valid() {
		return nil, errs.New(errs.InvalidInput, "priority must be one of low, medium, high, urgent")
	}
	m, err := s.repo.Mutate(ctx, id, func(m *message.Message) error {
		if status != nil {
			m.Status = *status
		}
		if priority != nil {
			m.Priority = *priority
		}
		return nil
	})
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	return m, nil
}

func checkManualStatus(st message.Status) error {
	if st == message.StatusReplied {
		return errs.New(errs.InvalidTransition, "status replied can only be set by replying to the message")
	}
	if !st.Valid() {
		return errs.New(errs.InvalidInput, "status must be one of new, read, resolved, archived")
	}
	return nil
}

// Reply 记录回复并投递通知；通知失败只记日志，不回滚回复
func (s *MessageService) Reply(ctx context.Context, id uint64, text, adminName string) (*message.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errs.ErrEmptyReply
	}
	adminName = strings.TrimSpace(adminName)
	if adminName == "" {
		adminName = defaultAdminName
	}
	m, err := s.repo.Mutate(ctx, id, func(m *message.Message) error {
		now := s.now()
		m.Status = message.StatusReplied
		m.Reply = text
		m.RespondedBy = adminName
		m.ResponseDate = &now
		return nil
	})
	if err != nil {
		s.monitor.Observe(err)
		return nil, err
	}
	s.monitor.RecordReply()

	n := ReplyNotification{
		ID:        uuid.NewString(),
		MessageID: m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Subject:   m.Subject,
		Reply:     m.Reply,
		AdminName: m.RespondedBy,
	}
	if err := s.notifier.NotifyReply(ctx, n); err != nil {
		s.monitor.RecordNotifyError()
		s.log.Error("reply notification failed",
			zap.Uint64("message_id", m.ID),
			zap.String("notification_id", n.ID),
			zap.Error(err),
		)
	}
	return m, nil
}

// BulkUpdate 批量操作。参数错误在写入前整体拒绝；之后每条独立处理，单条失败不影响其他。
func (s *MessageService) BulkUpdate(ctx context.Context, ids []uint64, action BulkAction, value string) (*BulkResult, error) {
	if len(ids) == 0 {
		return nil, errs.New(errs.InvalidInput, "messageIds cannot be empty")
	}
	fn, err := bulkMutation(action, value)
	if err != nil {
		return nil, err
	}

	res := &BulkResult{Results: make([]BulkOutcome, 0, len(ids))}
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.repo.Mutate(ctx, id, fn); err != nil {
			s.monitor.Observe(err)
			s.monitor.RecordBulkItemFailure()
			res.Results = append(res.Results, BulkOutcome{ID: id, Error: errs.Message(err)})
			continue
		}
		res.Updated++
		res.Results = append(res.Results, BulkOutcome{ID: id, Success: true})
	}
	s.log.Info("bulk message update",
		zap.String("action", string(action)),
		zap.Int("requested", len(seen)),
		zap.Int("updated", res.Updated),
	)
	return res, nil
}

func bulkMutation(action BulkAction, value string) (message.MutateFunc, error) {
	setStatus := func(st message.Status) message.MutateFunc {
		return func(m *message.Message) error {
			m.Status = st
			return nil
		}
	}
	switch action {
	case BulkMarkRead:
		return setStatus(message.StatusRead), nil
	case BulkMarkResolved:
		return setStatus(message.StatusResolved), nil
	case BulkArchive:
		return setStatus(message.StatusArchived), nil
	case BulkUpdateStatus:
		st := message.Status(value)
		if value == "" || !st.Valid() || st == message.StatusReplied {
			return nil, errs.New(errs.InvalidInput, "update_status requires a value of new, read, resolved or archived")
		}
		return setStatus(st), nil
	case BulkUpdatePriority:
		p := message.Priority(value)
		if !p.Valid() {
			return nil, errs.New(errs.InvalidInput, "update_priority requires a value of low, medium, high or urgent")
		}
		return func(m *message.Message) error {
			m.Priority = p
			return nil
		}, nil
	default:
		return nil, errs.New(errs.InvalidInput, "unknown bulk action %q", action)
	}
}
