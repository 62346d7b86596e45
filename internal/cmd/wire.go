package cmd

import (
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/example/commerceops/internal/auth"
	"github.com/example/commerceops/internal/config"
	"github.com/example/commerceops/internal/infra/mq"
	"github.com/example/commerceops/internal/infra/redis"
	"github.com/example/commerceops/internal/repository/memory"
	"github.com/example/commerceops/internal/repository/mysql"
	"github.com/example/commerceops/internal/server"
	"github.com/example/commerceops/internal/service"
)

// runtime 进程级资源，Close 时统一释放
type runtime struct {
	stores   server.Stores
	notifier service.ReplyNotifier
	cache    *auth.TokenCache

	redis  radix.Client
	mqConn *amqp.Connection
}

// buildRuntime 按配置选择存储驱动；Redis/RabbitMQ 地址为空时退化为内存幂等与日志通知
func buildRuntime(cfg *config.Config, log *zap.Logger) (*runtime, error) {
	rt := &runtime{}

	switch cfg.Storage.Driver {
	case "memory":
		rt.stores = server.Stores{
			Products: memory.NewProductRepository(),
			Orders:   memory.NewOrderRepository(),
			Messages: memory.NewMessageRepository(),
			Reviews:  memory.NewReviewRepository(),
		}
	case "mysql":
		db, err := mysql.Open(&cfg.MySQL)
		if err != nil {
			return nil, err
		}
		rt.stores = server.Stores{
			Products: mysql.NewProductRepository(db),
			Orders:   mysql.NewOrderRepository(db),
			Messages: mysql.NewMessageRepository(db),
			Reviews:  mysql.NewReviewRepository(db),
		}
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.New(&cfg.Redis)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.redis = client
		rt.stores.Idempotency = redis.NewIdempotencyStore(client)
		ring := auth.NewHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
		rt.cache = auth.NewTokenCache(client, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)
		log.Info("redis connected, token cache enabled",
			zap.String("addr", cfg.Redis.Addr),
			zap.Int("auth_nodes", ring.Len()),
		)
	} else {
		log.Info("redis not configured, using in-process idempotency store")
		rt.stores.Idempotency = memory.NewIdempotencyStore()
	}

	if cfg.RabbitMQ.URL != "" {
		conn, err := mq.Dial(&cfg.RabbitMQ)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.mqConn = conn
		rt.notifier = mq.NewReplyPublisher(conn, cfg.RabbitMQ.ReplyQueue)
	} else {
		log.Info("rabbitmq not configured, reply notifications are only logged")
	}
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.mqConn != nil {
		_ = rt.mqConn.Close()
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
}
