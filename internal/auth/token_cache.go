package auth

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	radix "github.com/mediocregopher/radix/v3"
)

// TokenCache 缓存 JWT 解析结果，redis 为 nil 时所有操作都是空操作
type TokenCache struct {
	redis radix.Client
	ring  *HashRing
	ttl   time.Duration
}

// NewTokenCache 构建缓存器
func NewTokenCache(redis radix.Client, ring *HashRing, ttl time.Duration) *TokenCache {
	if ring == nil {
		ring = NewHashRing(nil, 0)
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &TokenCache{redis: redis, ring: ring, ttl: ttl}
}

func (c *TokenCache) cacheKey(token string) string {
	sum := sha1.Sum([]byte(token))
	return fmt.Sprintf("commerceops:auth:%s:%s", c.ring.Node(token), hex.EncodeToString(sum[:]))
}

// expiry 缓存时间不超过 token 剩余有效期
func (c *TokenCache) expiry(claims *Claims, now time.Time) time.Duration {
	ttl := c.ttl
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Sub(now); left < ttl {
			ttl = left
		}
	}
	return ttl
}

// Get 命中时返回缓存的 claims
func (c *TokenCache) Get(ctx context.Context, token string) (*Claims, bool, error) {
	if c == nil || c.redis == nil {
		return nil, false, nil
	}
	key := c.cacheKey(token)
	var raw []byte
	mn := radix.MaybeNil{Rcv: &raw}
	if err := c.redis.Do(radix.Cmd(&mn, "GET", key)); err != nil {
		return nil, false, err
	}
	if mn.Nil {
		return nil, false, nil
	}
	var claims Claims
	if err := json.Unmarshal(raw, &claims); err != nil {
		// 数据损坏，清理后走正常解析
		_ = c.redis.Do(radix.Cmd(nil, "DEL", key))
		return nil, false, nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(time.Now()) {
		return nil, false, nil
	}
	return &claims, true, nil
}

// Set 缓存解析结果
func (c *TokenCache) Set(ctx context.Context, token string, claims *Claims) error {
	if c == nil || c.redis == nil || claims == nil {
		return nil
	}
	ttl := c.expiry(claims, time.Now())
	if ttl < time.Second {
		return nil
	}
	body, err := json.Marshal(claims)
	if err != nil {
		return err
	}
	return c.redis.Do(radix.FlatCmd(nil, "SET", c.cacheKey(token), body, "PX", ttl.Milliseconds()))
}
