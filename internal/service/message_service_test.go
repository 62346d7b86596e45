package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/datamodels/message"
	"github.com/example/commerceops/internal/errs"
	"github.com/example/commerceops/internal/repository/memory"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []ReplyNotification
	err  error
}

func (n *recordingNotifier) NotifyReply(ctx context.Context, rn ReplyNotification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, rn)
	return n.err
}

func newMessageService(t *testing.T, notifier ReplyNotifier) (*MessageService, *Monitor) {
	t.Helper()
	monitor := NewMonitor()
	svc := NewMessageService(memory.NewMessageRepository(), notifier, monitor, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC) }
	return svc, monitor
}

func submit(t *testing.T, svc *MessageService, name, email, subject, body string) *message.Message {
	t.Helper()
	m, err := svc.Submit(context.Background(), SubmitInput{Name: name, Email: email, Subject: subject, Message: body})
	require.NoError(t, err)
	return m
}

func TestSubmitMessage(t *testing.T) {
	svc, _ := newMessageService(t, &recordingNotifier{})
	m := submit(t, svc, "Bob", "bob@example.com", "Sizing", "Does M run small?")
	assert.Equal(t, message.StatusNew, m.Status)
	assert.Equal(t, message.PriorityMedium, m.Priority)

	_, err := svc.Submit(context.Background(), SubmitInput{Name: "Bob", Email: "not-an-email", Subject: "x", Message: "y"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = svc.Submit(context.Background(), SubmitInput{Name: "Bob", Email: "bob@example.com", Subject: "x"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestListFilterAndSearch(t *testing.T) {
	svc, _ := newMessageService(t, &recordingNotifier{})
	ctx := context.Background()
	submit(t, svc, "Ann", "ann@example.com", "REFUND please", "wrong size")
	submit(t, svc, "Cat", "cat@example.com", "Question", "how do I get a Refund?")
	read := submit(t, svc, "Dan", "dan@example.com", "refund", "already read")
	submit(t, svc, "Eve", "eve@example.com", "Shipping", "where is my parcel")

	st := message.StatusRead
	_, err := svc.UpdateStatus(ctx, read.ID, &st, nil)
	require.NoError(t, err)

	page, err := svc.List(ctx, ListQuery{Status: message.StatusNew, Search: "refund", Page: 1, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "Cat", page.Messages[0].Name, "newest first")
	assert.Equal(t, Pagination{Page: 1, PageSize: 1, Total: 2, TotalPages: 2}, page.Pagination)
	assert.Equal(t, MessageStats{New: 3, Read: 1, Total: 4}, page.Stats)

	page, err = svc.List(ctx, ListQuery{Status: message.StatusNew, Search: "refund", Page: 2, PageSize: 1})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "Ann", page.Messages[0].Name)
}

func TestListPageDefaults(t *testing.T) {
	svc, _ := newMessageService(t, &recordingNotifier{})
	page, err := svc.List(context.Background(), ListQuery{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Pagination.Page)
	assert.Equal(t, 100, page.Pagination.PageSize)
	assert.Empty(t, page.Messages)
	assert.Equal(t, MessageStats{}, page.Stats)

	_, err = svc.List(context.Background(), ListQuery{Status: "spam"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
}

func TestUpdateStatus(t *testing.T) {
	svc, _ := newMessageService(t, &recordingNotifier{})
	ctx := context.Background()
	m := submit(t, svc, "Ann", "ann@example.com", "Hi", "hello")

	_, err := svc.UpdateStatus(ctx, m.ID, nil, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	replied := message.StatusReplied
	_, err = svc.UpdateStatus(ctx, m.ID, &replied, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidTransition)

	bad := message.Priority("critical")
	_, err = svc.UpdateStatus(ctx, m.ID, nil, &bad)
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	resolved, urgent := message.StatusResolved, message.PriorityUrgent
	got, err := svc.UpdateStatus(ctx, m.ID, &resolved, &urgent)
	require.NoError(t, err)
	assert.Equal(t, message.StatusResolved, got.Status)
	assert.Equal(t, message.PriorityUrgent, got.Priority)

	_, err = svc.UpdateStatus(ctx, 999, &resolved, nil)
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReply(t *testing.T) {
	n := &recordingNotifier{}
	svc, monitor := newMessageService(t, n)
	ctx := context.Background()
	m := submit(t, svc, "Ann", "ann@example.com", "Refund", "where is it")

	_, err := svc.Reply(ctx, m.ID, "   ", "Sam")
	assert.ErrorIs(t, err, errs.ErrEmptyReply)

	got, err := svc.Reply(ctx, m.ID, "Refund issued.", "")
	require.NoError(t, err)
	assert.Equal(t, message.StatusReplied, got.Status)
	assert.Equal(t, "Admin", got.RespondedBy)
	require.NotNil(t, got.ResponseDate)
	assert.Equal(t, svc.now(), *got.ResponseDate)

	require.Len(t, n.sent, 1)
	assert.Equal(t, m.ID, n.sent[0].MessageID)
	assert.Equal(t, "ann@example.com", n.sent[0].Email)
	assert.Equal(t, "Refund issued.", n.sent[0].Reply)
	assert.Equal(t, int64(1), monitor.Replies)
}

func TestReplySurvivesNotifyFailure(t *testing.T) {
	svc, monitor := newMessageService(t, &recordingNotifier{err: errors.New("broker down")})
	ctx := context.Background()
	m := submit(t, svc, "Ann", "ann@example.com", "Refund", "where is it")

	got, err := svc.Reply(ctx, m.ID, "On its way", "Sam")
	require.NoError(t, err)
	assert.Equal(t, message.StatusReplied, got.Status)
	assert.Equal(t, int64(1), monitor.NotifyErrors)

	stored, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "On its way", stored.Reply)
	assert.Equal(t, "Sam", stored.RespondedBy)
}

func TestBulkUpdatePartialFailure(t *testing.T) {
	svc, monitor := newMessageService(t, &recordingNotifier{})
	ctx := context.Background()
	a := submit(t, svc, "Ann", "ann@example.com", "a", "a")
	b := submit(t, svc, "Bob", "bob@example.com", "b", "b")

	res, err := svc.BulkUpdate(ctx, []uint64{a.ID, 404, b.ID, a.ID}, BulkMarkResolved, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, []BulkOutcome{
		{ID: a.ID, Success: true},
		{ID: 404, Error: "message not found"},
		{ID: b.ID, Success: true},
	}, res.Results)
	assert.Equal(t, int64(1), monitor.BulkItemFailures)

	for _, id := range []uint64{a.ID, b.ID} {
		m, err := svc.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, message.StatusResolved, m.Status)
	}
}

func TestBulkUpdateRejectsBeforeWriting(t *testing.T) {
	svc, _ := newMessageService(t, &recordingNotifier{})
	ctx := context.Background()
	m := submit(t, svc, "Ann", "ann@example.com", "a", "a")

	cases := []struct {
		ids    []uint64
		action BulkAction
		value  string
	}{
		{nil, BulkArchive, ""},
		{[]uint64{m.ID}, "delete_all", ""},
		{[]uint64{m.ID}, BulkUpdateStatus, ""},
		{[]uint64{m.ID}, BulkUpdateStatus, "replied"},
		{[]uint64{m.ID}, BulkUpdatePriority, "critical"},
	}
	for _, c := range cases {
		_, err := svc.BulkUpdate(ctx, c.ids, c.action, c.value)
		assert.ErrorIs(t, err, errs.ErrInvalidInput, string(c.action))
	}

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, message.StatusNew, got.Status)
	assert.Equal(t, message.PriorityMedium, got.Priority)
}

func TestBulkUpdatePriority(t *testing.T) {
	svc, _ := newMessageService(t, &recordingNotifier{})
	ctx := context.Background()
	m := submit(t, svc, "Ann", "ann@example.com", "a", "a")

	res, err := svc.BulkUpdate(ctx, []uint64{m.ID}, BulkUpdatePriority, "high")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, message.PriorityHigh, got.Priority)
}
