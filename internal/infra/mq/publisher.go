package mq

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/commerceops/internal/service"
)

// ReplyPublisher 把留言回复通知写入队列，由 reply-worker 负责投递邮件
type ReplyPublisher struct {
	conn  *amqp.Connection
	queue string
}

// NewReplyPublisher 创建回复通知发布者
func NewReplyPublisher(conn *amqp.Connection, queue string) *ReplyPublisher {
	return &ReplyPublisher{conn: conn, queue: queue}
}

func (p *ReplyPublisher) NotifyReply(ctx context.Context, n service.ReplyNotification) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err = DeclareQueue(ch, p.queue); err != nil {
		return err
	}

	body, err := json.Marshal(&n)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    n.ID,
			Body:         body,
		},
	)
}
