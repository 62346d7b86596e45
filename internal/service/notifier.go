package service

import (
	"context"

	"go.uber.org/zap"
)

// ReplyNotification 留言回复通知，由外部投递为邮件
type ReplyNotification struct {
	ID        string `json:"id"`
	MessageID uint64 `json:"message_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Subject   string `json:"subject"`
	Reply     string `json:"reply"`
	AdminName string `json:"admin_name"`
}

// ReplyNotifier 回复通知投递接口
type ReplyNotifier interface {
	NotifyReply(ctx context.Context, n ReplyNotification) error
}

// LogNotifier 未配置 MQ 时使用，只记录日志
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyReply(ctx context.Context, rn ReplyNotification) error {
	n.log.Info("reply notification (not dispatched, no queue configured)",
		zap.Uint64("message_id", rn.MessageID),
		zap.String("email", rn.Email),
		zap.String("subject", rn.Subject),
	)
	return nil
}
