package memory

import (
	"context"
	"sync"
	"time"
)

type idemEntry struct {
	result  []byte // nil 表示请求仍在处理中
	expires time.Time
}

// IdempotencyStore 进程内幂等键存储，Redis 未配置时使用
type IdempotencyStore struct {
	mu  sync.Mutex
	m   map[string]idemEntry
	now func() time.Time
}

// NewIdempotencyStore 创建内存幂等键存储
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{m: make(map[string]idemEntry), now: time.Now}
}

func (s *IdempotencyStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if e, ok := s.m[key]; ok && now.Before(e.expires) {
		return false, e.result, nil
	}
	s.m[key] = idemEntry{expires: now.Add(ttl)}
	return true, nil, nil
}

func (s *IdempotencyStore) Complete(ctx context.Context, key string, result []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = idemEntry{result: append([]byte(nil), result...), expires: s.now().Add(ttl)}
	return nil
}

func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
