package repository

import (
	"sync"

	"github.com/Jiawei57/steam-analytics-engine/internal/ingest"
	"github.com/Jiawei57/steam-analytics-engine/internal/model"
)

// MemoryRepository 内存仓库
// 数据库连不上时从处理后的CSV加载，保证仪表盘还能出数据
type MemoryRepository struct {
	mu    sync.RWMutex
	games []*model.GameRecord
}

// NewMemoryRepository 从已清洗的记录构建内存仓库
func NewMemoryRepository(games []*model.GameRecord) *MemoryRepository {
	return &MemoryRepository{games: games}
}

// NewMemoryRepositoryFromCSV 加载降级CSV（与ETL产物同构）
func NewMemoryRepositoryFromCSV(path string) (*MemoryRepository, error) {
	table, err := ingest.ReadGamesCSV(path)
	if err != nil {
		return nil, err
	}
	games, err := ingest.Transformer{}.Process(table)
	if err != nil {
		return nil, err
	}
	return &MemoryRepository{games: games}, nil
}

// ListGames 返回记录切片的拷贝
func (r *MemoryRepository) ListGames() ([]*model.GameRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.GameRecord, len(r.games))
	copy(out, r.games)
	return out, nil
}

// Stats 统计信息
func (r *MemoryRepository) Stats() (map[string]interface{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	freeGames := 0
	var totalReviews int64
	for _, g := range r.games {
		if g.Price == 0 {
			freeGames++
		}
		totalReviews += g.TotalReviews
	}

	return map[string]interface{}{
		"total_games":   len(r.games),
		"free_games":    freeGames,
		"total_reviews": totalReviews,
		"driver":        "memory",
	}, nil
}

// Close 无资源可释放
func (r *MemoryRepository) Close() error {
	return nil
}
