package auth

import (
	"hash/crc32"
	"sort"
	"strconv"
	"sync"
)

// HashRing 一致性哈希环，把 token 缓存分散到多个鉴权节点的 key 空间
type HashRing struct {
	mu       sync.RWMutex
	hash     func(data []byte) uint32
	replicas int
	keys     []uint32 // 已排序的虚拟节点哈希
	owners   map[uint32]string
	nodes    map[string]struct{}
}

// NewHashRing 创建哈希环，nodes 为空时使用一个默认节点
func NewHashRing(nodes []string, replicas int) *HashRing {
	if replicas <= 0 {
		replicas = 50
	}
	if len(nodes) == 0 {
		nodes = []string{"auth-node-default"}
	}
	r := &HashRing{
		hash:     crc32.ChecksumIEEE,
		replicas: replicas,
		owners:   make(map[uint32]string),
		nodes:    make(map[string]struct{}),
	}
	r.Add(nodes...)
	return r
}

func (r *HashRing) virtualKey(node string, i int) uint32 {
	return r.hash([]byte(node + "#" + strconv.Itoa(i)))
}

// Add 添加节点，重复节点忽略
func (r *HashRing) Add(nodes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, node := range nodes {
		if _, ok := r.nodes[node]; ok || node == "" {
			continue
		}
		r.nodes[node] = struct{}{}
		for i := 0; i < r.replicas; i++ {
			h := r.virtualKey(node, i)
			r.keys = append(r.keys, h)
			r.owners[h] = node
		}
	}
	sort.Slice(r.keys, func(i, j int) bool { return r.keys[i] < r.keys[j] })
}

// Node 返回负责 key 的节点，环为空时返回空串
func (r *HashRing) Node(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.keys) == 0 {
		return ""
	}
	h := r.hash([]byte(key))
	idx := sort.Search(len(r.keys), func(i int) bool { return r.keys[i] >= h })
	if idx == len(r.keys) {
		idx = 0
	}
	return r.owners[r.keys[idx]]
}

// Len 节点数
func (r *HashRing) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}
