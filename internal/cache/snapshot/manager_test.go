package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/Jiawei57/steam-analytics-engine/internal/cache/lru"
	"github.com/Jiawei57/steam-analytics-engine/pkg/common"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots", "cache.json")

	cache := lru.New(1024*1024, 0, nil)
	cache.Add("dashboard:abc", common.NewByteView([]byte(`{"kpi":{"total_games":10}}`)))
	cache.Add("reviews:def", common.NewByteView([]byte(`{"app_id":730}`)))

	mgr := NewManager(cache, path)
	if err := mgr.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fresh := lru.New(1024*1024, 0, nil)
	restored := NewManager(fresh, path)
	n, err := restored.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("restored %d entries, want 2", n)
	}

	v, ok := fresh.Get("dashboard:abc")
	if !ok {
		t.Fatal("dashboard entry missing after restore")
	}
	if got := v.(common.ByteView).String(); got != `{"kpi":{"total_games":10}}` {
		t.Errorf("restored bytes = %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cache := lru.New(1024, 0, nil)
	mgr := NewManager(cache, filepath.Join(t.TempDir(), "nope.json"))

	if _, err := mgr.Load(); err == nil {
		t.Fatal("expected error for missing snapshot file")
	}
}
