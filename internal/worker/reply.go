// Package worker 消费留言回复通知队列。
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/infra/mq"
	"github.com/example/commerceops/internal/service"
)

// ErrMalformed 消息无法解析或缺少必填字段，重试也不会成功
var ErrMalformed = errors.New("malformed reply notification")

// Mailer 实际发信接口，由部署方实现（SMTP、邮件服务商等）
type Mailer interface {
	SendReply(ctx context.Context, n service.ReplyNotification) error
}

// LogMailer 只记录日志，未接入邮件服务时使用
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer { return &LogMailer{log: log} }

func (m *LogMailer) SendReply(ctx context.Context, n service.ReplyNotification) error {
	m.log.Info("reply email",
		zap.String("to", n.Email),
		zap.String("subject", "Re: "+n.Subject),
		zap.String("from", n.AdminName),
		zap.Uint64("message_id", n.MessageID),
	)
	return nil
}

// ReplyHandler 解析并投递一条回复通知
type ReplyHandler struct {
	mailer Mailer
	log    *zap.Logger
}

func NewReplyHandler(mailer Mailer, log *zap.Logger) *ReplyHandler {
	return &ReplyHandler{mailer: mailer, log: log}
}

// Handle 返回 ErrMalformed 表示应丢弃，其它错误可重试
func (h *ReplyHandler) Handle(ctx context.Context, body []byte) error {
	var n service.ReplyNotification
	if err := json.Unmarshal(body, &n); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if n.MessageID == 0 || strings.TrimSpace(n.Email) == "" || strings.TrimSpace(n.Reply) == "" {
		return ErrMalformed
	}
	return h.mailer.SendReply(ctx, n)
}

// Ack 手动确认接口，便于替换 amqp.Delivery
type Ack interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Settle 根据处理结果确认消息：成功 ack；格式错误丢弃；投递失败首次重新入队，再次失败丢弃
func (h *ReplyHandler) Settle(ctx context.Context, body []byte, redelivered bool, ack Ack) {
	err := h.Handle(ctx, body)
	switch {
	case err == nil:
		_ = ack.Ack(false)
	case errors.Is(err, ErrMalformed):
		h.log.Warn("dropping malformed reply notification", zap.Error(err))
		_ = ack.Nack(false, false)
	case !redelivered:
		h.log.Warn("reply delivery failed, requeue", zap.Error(err))
		_ = ack.Nack(false, true)
	default:
		h.log.Error("reply delivery failed after retry, dropping", zap.Error(err))
		_ = ack.Nack(false, false)
	}
}

// Consume 阻塞消费队列直到 ctx 结束或通道关闭
func (h *ReplyHandler) Consume(ctx context.Context, conn *amqp.Connection, queue string) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer ch.Close()

	if err := mq.DeclareQueue(ch, queue); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}
	// 手动确认模式（auto-ack=false）
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume: %w", err)
	}

	h.log.Info("reply worker started", zap.String("queue", queue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			h.Settle(ctx, d.Body, d.Redelivered, &d)
		}
	}
}
