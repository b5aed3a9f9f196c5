package snapshot

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/cache/lru"
	"github.com/Jiawei57/steam-analytics-engine/pkg/common"
	"github.com/Jiawei57/steam-analytics-engine/pkg/json"
)

// Manager 响应缓存快照管理器
// 缓存值统一是序列化后的ByteView，所以条目可以无损落盘再恢复，
// 服务重启后热点查询不用重新算
type Manager struct {
	cache        *lru.Cache
	snapshotPath string
	mu           sync.Mutex
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// persistedEntry 落盘格式，字节内容base64编码
type persistedEntry struct {
	Key      string `json:"key"`
	Data     string `json:"data"`
	CreateAt int64  `json:"create_at"`
}

// NewManager 创建快照管理器
func NewManager(cache *lru.Cache, snapshotPath string) *Manager {
	return &Manager{
		cache:        cache,
		snapshotPath: snapshotPath,
		stopChan:     make(chan struct{}),
	}
}

// Save 保存快照（写临时文件后原子改名）
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.snapshotPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	entries := m.cache.Entries()
	persisted := make([]*persistedEntry, 0, len(entries))
	for _, e := range entries {
		view, ok := e.Value.(common.ByteView)
		if !ok {
			continue
		}
		persisted = append(persisted, &persistedEntry{
			Key:      e.Key,
			Data:     base64.StdEncoding.EncodeToString(view.ByteSlice()),
			CreateAt: e.CreateAt,
		})
	}

	data, err := json.Marshal(persisted)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot data: %w", err)
	}

	tmpFile := m.snapshotPath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := os.Rename(tmpFile, m.snapshotPath); err != nil {
		return fmt.Errorf("failed to rename snapshot file: %w", err)
	}

	logrus.Infof("[Snapshot] saved %d cache entries to %s", len(persisted), m.snapshotPath)
	return nil
}

// Load 加载快照，返回恢复的条目数
func (m *Manager) Load() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.snapshotPath); os.IsNotExist(err) {
		return 0, fmt.Errorf("snapshot file not found: %s", m.snapshotPath)
	}

	data, err := os.ReadFile(m.snapshotPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var persisted []*persistedEntry
	if err := json.Unmarshal(data, &persisted); err != nil {
		return 0, fmt.Errorf("failed to unmarshal snapshot data: %w", err)
	}

	entries := make([]*lru.Entry, 0, len(persisted))
	for _, p := range persisted {
		raw, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			continue
		}
		entries = append(entries, &lru.Entry{
			Key:      p.Key,
			Value:    common.NewByteView(raw),
			CreateAt: p.CreateAt,
		})
	}

	m.cache.Restore(entries)
	return len(entries), nil
}

// AutoSnapshot 按固定间隔自动保存快照
func (m *Manager) AutoSnapshot(interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.Save(); err != nil {
					logrus.Warnf("[Snapshot] auto save failed: %v", err)
				}
			case <-m.stopChan:
				return
			}
		}
	}()
}

// Stop 停止自动快照并保存最后一次
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
	if err := m.Save(); err != nil {
		logrus.Warnf("[Snapshot] final save failed: %v", err)
	}
}
