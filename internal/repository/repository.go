package repository

import "github.com/Jiawei57/steam-analytics-engine/internal/model"

// GameStore 游戏数据读取接口
// SQLRepository是常规实现，数据库不可用时由MemoryRepository降级兜底
type GameStore interface {
	ListGames() ([]*model.GameRecord, error)
	Stats() (map[string]interface{}, error)
	Close() error
}
