package lru

import (
	"container/list"
	"sync"
	"time"
)

// Cache 按字节数限容的LRU缓存，仪表盘/评论/推荐的响应缓存共用
type Cache struct {
	mu        sync.RWMutex
	maxBytes  int64
	usedBytes int64
	ttl       time.Duration // 0表示不过期
	ll        *list.List
	index     map[string]*list.Element
	OnEvicted func(key string, value Value)
}

// Value 缓存值接口
type Value interface {
	Len() int
}

// Entry 缓存条目
type Entry struct {
	Key      string
	Value    Value
	CreateAt int64 // unix秒
}

// New 创建LRU缓存
func New(maxBytes int64, ttl time.Duration, onEvicted func(string, Value)) *Cache {
	return &Cache{
		maxBytes:  maxBytes,
		ttl:       ttl,
		ll:        list.New(),
		index:     make(map[string]*list.Element),
		OnEvicted: onEvicted,
	}
}

// Get 获取缓存值，过期条目视为未命中
func (c *Cache) Get(key string) (Value, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ele, ok := c.index[key]
	if !ok {
		return nil, false
	}
	entry := ele.Value.(*Entry)
	if c.expired(entry, time.Now().Unix()) {
		c.removeElement(ele)
		return nil, false
	}
	c.ll.MoveToFront(ele)
	return entry.Value, true
}

// Add 写入缓存，超容时从队尾淘汰
func (c *Cache) Add(key string, value Value) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().Unix()
	if ele, ok := c.index[key]; ok {
		c.ll.MoveToFront(ele)
		entry := ele.Value.(*Entry)
		c.usedBytes += int64(value.Len()) - int64(entry.Value.Len())
		entry.Value = value
		entry.CreateAt = now
	} else {
		ele := c.ll.PushFront(&Entry{Key: key, Value: value, CreateAt: now})
		c.index[key] = ele
		c.usedBytes += int64(len(key)) + int64(value.Len())
	}

	c.pruneExpired(now)
	for c.maxBytes > 0 && c.usedBytes > c.maxBytes {
		c.removeOldest()
	}
}

// Remove 移除指定key
func (c *Cache) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, ok := c.index[key]; ok {
		c.removeElement(ele)
	}
}

// Len 当前条目数
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ll.Len()
}

// UsedBytes 当前占用字节数
func (c *Cache) UsedBytes() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.usedBytes
}

// Clear 清空缓存
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ll.Init()
	c.index = make(map[string]*list.Element)
	c.usedBytes = 0
}

// Entries 所有条目的拷贝，快照持久化用
func (c *Cache) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]*Entry, 0, c.ll.Len())
	for ele := c.ll.Front(); ele != nil; ele = ele.Next() {
		entry := ele.Value.(*Entry)
		entries = append(entries, &Entry{
			Key:      entry.Key,
			Value:    entry.Value,
			CreateAt: entry.CreateAt,
		})
	}
	return entries
}

// Restore 从快照恢复条目，保留原创建时间以便TTL继续生效
func (c *Cache) Restore(entries []*Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().Unix()
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if c.expired(entry, now) {
			continue
		}
		if _, ok := c.index[entry.Key]; ok {
			continue
		}
		ele := c.ll.PushFront(&Entry{Key: entry.Key, Value: entry.Value, CreateAt: entry.CreateAt})
		c.index[entry.Key] = ele
		c.usedBytes += int64(len(entry.Key)) + int64(entry.Value.Len())
	}
	for c.maxBytes > 0 && c.usedBytes > c.maxBytes {
		c.removeOldest()
	}
}

func (c *Cache) expired(e *Entry, now int64) bool {
	return c.ttl > 0 && now > e.CreateAt+int64(c.ttl/time.Second)
}

func (c *Cache) removeOldest() {
	if ele := c.ll.Back(); ele != nil {
		c.removeElement(ele)
	}
}

func (c *Cache) removeElement(ele *list.Element) {
	c.ll.Remove(ele)
	entry := ele.Value.(*Entry)
	delete(c.index, entry.Key)
	c.usedBytes -= int64(len(entry.Key)) + int64(entry.Value.Len())

	if c.OnEvicted != nil {
		c.OnEvicted(entry.Key, entry.Value)
	}
}

// pruneExpired 从队尾开始清过期条目，碰到未过期的就停
func (c *Cache) pruneExpired(now int64) {
	for ele := c.ll.Back(); ele != nil; {
		entry := ele.Value.(*Entry)
		if !c.expired(entry, now) {
			break
		}
		prev := ele.Prev()
		c.removeElement(ele)
		ele = prev
	}
}
