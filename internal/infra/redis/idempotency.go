package redis

import (
	"context"
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

const (
	idempotencyKey = "commerceops:idem:%s"
	pendingMarker  = "__pending__"
)

// IdempotencyStore 基于 SET NX 的幂等键存储，多实例部署时共享
type IdempotencyStore struct {
	redis radix.Client
}

// NewIdempotencyStore 创建 Redis 幂等键存储
func NewIdempotencyStore(redis radix.Client) *IdempotencyStore {
	return &IdempotencyStore{redis: redis}
}

// Claim 以处理中标记占用 key，ttl 到期后标记自动失效；未占用成功时返回已记录的结果（处理中则为 nil）
func (s *IdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, []byte, error) {
	k := fmt.Sprintf(idempotencyKey, key)
	var reply string
	if err := s.redis.Do(radix.FlatCmd(&reply, "SET", k, pendingMarker, "NX", "PX", ttl.Milliseconds())); err != nil {
		return false, nil, err
	}
	if reply == "OK" {
		return true, nil, nil
	}
	var stored string
	if err := s.redis.Do(radix.Cmd(&stored, "GET", k)); err != nil {
		return false, nil, err
	}
	if stored == "" || stored == pendingMarker {
		return false, nil, nil
	}
	return false, []byte(stored), nil
}

// Complete 用结果覆盖处理中标记并重新设置过期时间，重试时直接回放
func (s *IdempotencyStore) Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	k := fmt.Sprintf(idempotencyKey, key)
	return s.redis.Do(radix.FlatCmd(nil, "SET", k, result, "PX", ttl.Milliseconds()))
}

// Release 处理失败时释放 key，允许调用方重试
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.redis.Do(radix.Cmd(nil, "DEL", fmt.Sprintf(idempotencyKey, key)))
}
