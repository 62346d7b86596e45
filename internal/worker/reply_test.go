package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/service"
)

type fakeMailer struct {
	sent []service.ReplyNotification
	err  error
}

func (m *fakeMailer) SendReply(ctx context.Context, n service.ReplyNotification) error {
	m.sent = append(m.sent, n)
	return m.err
}

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAck) Ack(bool) error { a.acked = true; return nil }

func (a *fakeAck) Nack(_ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func body(t *testing.T, n service.ReplyNotification) []byte {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return b
}

var valid = service.ReplyNotification{ID: "n1", MessageID: 7, Email: "ann@example.com", Subject: "Refund", Reply: "Done", AdminName: "Sam"}

func TestSettleDelivers(t *testing.T) {
	m := &fakeMailer{}
	h := NewReplyHandler(m, zap.NewNop())
	ack := &fakeAck{}

	h.Settle(context.Background(), body(t, valid), false, ack)
	assert.True(t, ack.acked)
	require.Len(t, m.sent, 1)
	assert.Equal(t, uint64(7), m.sent[0].MessageID)
}

func TestSettleDropsMalformed(t *testing.T) {
	h := NewReplyHandler(&fakeMailer{}, zap.NewNop())

	ack := &fakeAck{}
	h.Settle(context.Background(), []byte("{not json"), false, ack)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)

	missing := valid
	missing.Email = ""
	ack = &fakeAck{}
	h.Settle(context.Background(), body(t, missing), false, ack)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestSettleRetriesOnce(t *testing.T) {
	h := NewReplyHandler(&fakeMailer{err: errors.New("smtp down")}, zap.NewNop())

	ack := &fakeAck{}
	h.Settle(context.Background(), body(t, valid), false, ack)
	assert.True(t, ack.nacked)
	assert.True(t, ack.requeue)

	ack = &fakeAck{}
	h.Settle(context.Background(), body(t, valid), true, ack)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, NewLogMailer(zap.NewNop()).SendReply(context.Background(), valid))
}
