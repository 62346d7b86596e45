package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/commerceops/internal/config"
)

// Dial 建立 RabbitMQ 连接
func Dial(cfg *config.RabbitMQConfig) (*amqp.Connection, error) {
	c, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect rabbitmq: %w", err)
	}
	return c, nil
}

// DeclareQueue 声明持久化队列，生产者与消费者共用
func DeclareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(name, true, false, false, false, nil)
	return err
}
