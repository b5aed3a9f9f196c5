package lru

import (
	"testing"
	"time"
)

type testValue string

func (v testValue) Len() int { return len(v) }

func TestGetAdd(t *testing.T) {
	cache := New(1024, 0, nil)

	cache.Add("k1", testValue("v1"))
	if v, ok := cache.Get("k1"); !ok || string(v.(testValue)) != "v1" {
		t.Fatalf("Get(k1) = %v, %v", v, ok)
	}
	if _, ok := cache.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
}

func TestEvictOldest(t *testing.T) {
	// 容量只够两个条目：len("k1")+len("v1") = 4字节/条
	cache := New(8, 0, nil)

	cache.Add("k1", testValue("v1"))
	cache.Add("k2", testValue("v2"))
	cache.Add("k3", testValue("v3"))

	if _, ok := cache.Get("k1"); ok {
		t.Error("k1 should have been evicted")
	}
	if _, ok := cache.Get("k3"); !ok {
		t.Error("k3 should be present")
	}
	if cache.Len() != 2 {
		t.Errorf("Len = %d, want 2", cache.Len())
	}
}

func TestLRUOrder(t *testing.T) {
	cache := New(8, 0, nil)

	cache.Add("k1", testValue("v1"))
	cache.Add("k2", testValue("v2"))
	cache.Get("k1") // 提升k1
	cache.Add("k3", testValue("v3"))

	if _, ok := cache.Get("k1"); !ok {
		t.Error("recently used k1 should survive")
	}
	if _, ok := cache.Get("k2"); ok {
		t.Error("k2 should have been evicted")
	}
}

func TestOnEvicted(t *testing.T) {
	var evicted []string
	cache := New(8, 0, func(key string, _ Value) {
		evicted = append(evicted, key)
	})

	cache.Add("k1", testValue("v1"))
	cache.Add("k2", testValue("v2"))
	cache.Add("k3", testValue("v3"))

	if len(evicted) != 1 || evicted[0] != "k1" {
		t.Errorf("evicted = %v, want [k1]", evicted)
	}
}

func TestTTLExpiry(t *testing.T) {
	cache := New(1024, time.Second, nil)
	cache.Add("k1", testValue("v1"))

	// 手动把条目做旧
	ele := cache.index["k1"]
	ele.Value.(*Entry).CreateAt = time.Now().Unix() - 10

	if _, ok := cache.Get("k1"); ok {
		t.Fatal("expired entry should be a miss")
	}
	if cache.Len() != 0 {
		t.Errorf("expired entry should be removed, Len = %d", cache.Len())
	}
}

func TestEntriesRestore(t *testing.T) {
	cache := New(1024, 0, nil)
	cache.Add("k1", testValue("v1"))
	cache.Add("k2", testValue("v2"))

	entries := cache.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries = %d, want 2", len(entries))
	}

	restored := New(1024, 0, nil)
	restored.Restore(entries)

	for _, key := range []string{"k1", "k2"} {
		if _, ok := restored.Get(key); !ok {
			t.Errorf("restored cache missing %s", key)
		}
	}
	if restored.UsedBytes() != cache.UsedBytes() {
		t.Errorf("UsedBytes = %d, want %d", restored.UsedBytes(), cache.UsedBytes())
	}
}

func TestUsedBytes(t *testing.T) {
	cache := New(1024, 0, nil)
	cache.Add("key", testValue("value"))

	if got := cache.UsedBytes(); got != 8 {
		t.Errorf("UsedBytes = %d, want 8", got)
	}

	cache.Remove("key")
	if got := cache.UsedBytes(); got != 0 {
		t.Errorf("UsedBytes after remove = %d, want 0", got)
	}
}
