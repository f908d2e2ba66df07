package service

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"secret-reactor/project/domain"
)

// identityCache は ID -> IdentityEntry のキャッシュです
type identityCache interface {
	Get(id string) (domain.IdentityEntry, bool)
	Add(entry domain.IdentityEntry)
	Len() int
}

// newIdentityCache は maxSize が 0 以下なら無制限、それ以外は LRU のキャッシュを作成します
func newIdentityCache(maxSize int) (identityCache, error) {
	if maxSize <= 0 {
		return &mapCache{entries: make(map[string]domain.IdentityEntry)}, nil
	}
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, fmt.Errorf("identity cache: LRU 作成失敗 (size=%d): %w", maxSize, err)
	}
	return &lruCache{cache: c}, nil
}

// mapCache はプロセス生存期間中エントリを保持し続ける無制限キャッシュです。
// 表示名の変更は再起動まで反映されません
type mapCache struct {
	mu      sync.RWMutex
	entries map[string]domain.IdentityEntry
}

func (c *mapCache) Get(id string) (domain.IdentityEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[id]
	return entry, ok
}

// Add は最初に登録されたエントリを残します
func (c *mapCache) Add(entry domain.IdentityEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[entry.ID]; exists {
		return
	}
	c.entries[entry.ID] = entry
}

func (c *mapCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

type lruCache struct {
	cache *lru.Cache
}

func (c *lruCache) Get(id string) (domain.IdentityEntry, bool) {
	v, ok := c.cache.Get(id)
	if !ok {
		return domain.IdentityEntry{}, false
	}
	entry, ok := v.(domain.IdentityEntry)
	return entry, ok
}

func (c *lruCache) Add(entry domain.IdentityEntry) {
	c.cache.ContainsOrAdd(entry.ID, entry)
}

func (c *lruCache) Len() int {
	return c.cache.Len()
}
