package middleware

import (
	"sync"
	"time"

	"github.com/kataras/iris/v12"
)

// TokenBucket 令牌桶限流器
type TokenBucket struct {
	capacity   float64    // 桶容量
	tokens     float64    // 当前令牌数
	refillRate float64    // 每秒补充的令牌数
	lastRefill time.Time  // 上次补充时间
	mu         sync.Mutex // 互斥锁
	now        func() time.Time
}

// NewTokenBucket 创建令牌桶
func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	if capacity <= 0 {
		capacity = 1
	}
	tb := &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: float64(refillRate),
		now:        time.Now,
	}
	tb.lastRefill = tb.now()
	return tb
}

// Allow 检查是否允许请求
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	// 按经过的时间补充令牌
	now := tb.now()
	if elapsed := now.Sub(tb.lastRefill).Seconds(); elapsed > 0 {
		tb.tokens += elapsed * tb.refillRate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RateLimit 限流中间件，后台所有写接口共用一个桶
func RateLimit(bucket *TokenBucket) iris.Handler {
	return func(ctx iris.Context) {
		if !bucket.Allow() {
			ctx.StopWithJSON(iris.StatusTooManyRequests, iris.Map{
				"success": false,
				"message": "too many requests, please slow down",
			})
			return
		}
		ctx.Next()
	}
}

// WritesOnly 只对修改类请求执行 h，GET/HEAD/OPTIONS 直接放行
func WritesOnly(h iris.Handler) iris.Handler {
	return func(ctx iris.Context) {
		switch ctx.Method() {
		case iris.MethodGet, iris.MethodHead, iris.MethodOptions:
			ctx.Next()
		default:
			h(ctx)
		}
	}
}
