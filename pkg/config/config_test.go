package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.ini"))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	// 文件缺失时走默认配置
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Driver = %q, want sqlite", cfg.Database.Driver)
	}
	if cfg.Recommend.MaxFeatures != 5000 {
		t.Errorf("MaxFeatures = %d, want 5000", cfg.Recommend.MaxFeatures)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	content := `
[server]
port = 9000
debug = true

[database]
driver = postgres
host = db.internal
port = 5432
username = steam
database = steamdb

[recommend]
max_features = 2000
`
	path := filepath.Join(t.TempDir(), "server.ini")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != 9000 || !cfg.Server.Debug {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("Driver = %q", cfg.Database.Driver)
	}
	if cfg.Recommend.MaxFeatures != 2000 {
		t.Errorf("MaxFeatures = %d", cfg.Recommend.MaxFeatures)
	}
	// 未覆盖的节保留默认值
	if cfg.Cache.MaxBytes != 512*1024*1024 {
		t.Errorf("Cache.MaxBytes = %d", cfg.Cache.MaxBytes)
	}
}

func TestDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: "sqlite", Path: "./data/steam.db"}
	if got := sqlite.DSN(); got != "./data/steam.db" {
		t.Errorf("sqlite DSN = %q", got)
	}

	pg := DatabaseConfig{
		Driver: "postgres", Host: "localhost", Port: 5432,
		Username: "steam", Password: "secret", Database: "steamdb", SSLMode: "disable",
	}
	got := pg.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "user=steam", "dbname=steamdb", "sslmode=disable"} {
		if !strings.Contains(got, part) {
			t.Errorf("postgres DSN %q missing %q", got, part)
		}
	}
}
