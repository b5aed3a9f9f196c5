package config

import (
	"fmt"
	"os"

	"github.com/go-ini/ini"
	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server    ServerConfig    `ini:"server"`
	Database  DatabaseConfig  `ini:"database"`
	Cache     CacheConfig     `ini:"cache"`
	ETL       ETLConfig       `ini:"etl"`
	Reviews   ReviewsConfig   `ini:"reviews"`
	Recommend RecommendConfig `ini:"recommend"`
	Etcd      EtcdConfig      `ini:"etcd"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int    `ini:"port"`         // 服务端口
	Debug       bool   `ini:"debug"`        // 调试模式
	ServiceName string `ini:"service_name"` // 服务名称
	ServiceAddr string `ini:"service_addr"` // 注册到etcd的服务地址
}

// DatabaseConfig 数据库配置，driver支持 sqlite / postgres
type DatabaseConfig struct {
	Driver   string `ini:"driver"`
	Path     string `ini:"path"` // sqlite数据库文件
	Host     string `ini:"host"`
	Port     int    `ini:"port"`
	Username string `ini:"username"`
	Password string `ini:"password"`
	Database string `ini:"database"`
	SSLMode  string `ini:"sslmode"`
}

// CacheConfig 缓存配置
type CacheConfig struct {
	MaxBytes         int64  `ini:"max_bytes"`         // 最大缓存字节数
	TTLSeconds       int64  `ini:"ttl_seconds"`       // 条目过期时间（秒）
	SnapshotPath     string `ini:"snapshot_path"`     // 快照文件路径
	SnapshotInterval int    `ini:"snapshot_interval"` // 快照间隔（分钟）
}

// ETLConfig 数据清洗配置
type ETLConfig struct {
	RawDir       string `ini:"raw_dir"`       // 原始数据目录
	ProcessedCSV string `ini:"processed_csv"` // 处理后CSV（数据库不可用时的降级数据源）
	BatchSize    int    `ini:"batch_size"`    // 批量写入大小
}

// ReviewsConfig 评论数据配置
type ReviewsConfig struct {
	Path string `ini:"path"` // 合并后的大评论文件（csv或parquet）
}

// RecommendConfig 推荐模型配置
type RecommendConfig struct {
	ModelPath   string `ini:"model_path"`   // 模型快照文件
	MaxFeatures int    `ini:"max_features"` // TF-IDF词表上限
	TopK        int    `ini:"top_k"`        // 默认推荐数量
}

// EtcdConfig etcd配置，endpoints为空则不注册服务
type EtcdConfig struct {
	Endpoints string `ini:"endpoints"` // etcd地址列表，逗号分隔
	Prefix    string `ini:"prefix"`    // 键前缀
	TTL       int64  `ini:"ttl"`       // 租约TTL（秒）
}

// DefaultConfig 默认配置，配置文件缺失时兜底
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			ServiceName: "steam-analytics",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/steam.db",
		},
		Cache: CacheConfig{
			MaxBytes:         512 * 1024 * 1024,
			TTLSeconds:       3600,
			SnapshotPath:     "./data/cache_snapshot.json",
			SnapshotInterval: 10,
		},
		ETL: ETLConfig{
			RawDir:       "./data/raw",
			ProcessedCSV: "./data/processed/steam_processed_data.csv",
			BatchSize:    1000,
		},
		Reviews: ReviewsConfig{
			Path: "./data/raw/reviews_2024.csv",
		},
		Recommend: RecommendConfig{
			ModelPath:   "./data/models/tfidf_model.json",
			MaxFeatures: 5000,
			TopK:        10,
		},
		Etcd: EtcdConfig{
			Prefix: "/steam-analytics/services",
			TTL:    10,
		},
	}
}

// LoadConfig 加载配置文件，文件不存在时返回默认配置
func LoadConfig(filePath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		logrus.Warnf("Config file not found: %s, using defaults", filePath)
		return cfg, nil
	}

	if err := ini.MapTo(cfg, filePath); err != nil {
		logrus.Errorf("Failed to load config file: %v", err)
		return nil, err
	}

	logrus.Infof("Config loaded successfully from: %s", filePath)
	return cfg, nil
}

// DSN 获取数据库连接字符串
func (d *DatabaseConfig) DSN() string {
	if d.Driver == "postgres" {
		sslmode := d.SSLMode
		if sslmode == "" {
			sslmode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslmode)
	}
	return d.Path
}
