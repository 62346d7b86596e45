package redis

import (
	"fmt"

	radix "github.com/mediocregopher/radix/v3"

	"github.com/example/commerceops/internal/config"
)

// New 初始化 Redis 连接池
func New(cfg *config.RedisConfig) (radix.Client, error) {
	size := cfg.PoolSize
	if size <= 0 {
		size = 10
	}
	pool, err := radix.NewPool("tcp", cfg.Addr, size)
	if err != nil {
		return nil, fmt.Errorf("failed to connect redis: %w", err)
	}
	return pool, nil
}
