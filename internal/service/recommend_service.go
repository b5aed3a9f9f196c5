package service

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/internal/recommend"
	"github.com/Jiawei57/steam-analytics-engine/internal/repository"
)

// RecommendService 内容推荐服务，持有内存中的TF-IDF模型
type RecommendService struct {
	mu          sync.RWMutex
	model       *recommend.Model
	modelPath   string
	store       repository.GameStore
	maxFeatures int
	defaultTopK int
}

// NewRecommendService 创建推荐服务（模型未加载，需Load或Rebuild）
func NewRecommendService(store repository.GameStore, modelPath string, maxFeatures, topK int) *RecommendService {
	if maxFeatures <= 0 {
		maxFeatures = 5000
	}
	if topK <= 0 {
		topK = 10
	}
	return &RecommendService{
		store:       store,
		modelPath:   modelPath,
		maxFeatures: maxFeatures,
		defaultTopK: topK,
	}
}

// Load 从快照文件加载模型，失败时尝试现场重建
func (s *RecommendService) Load() error {
	m, err := recommend.LoadModel(s.modelPath)
	if err != nil {
		logrus.Warnf("Failed to load model snapshot: %v, rebuilding from store", err)
		return s.Rebuild()
	}

	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
	return nil
}

// Rebuild 从数据库重建模型并保存快照
func (s *RecommendService) Rebuild() error {
	games, err := s.store.ListGames()
	if err != nil {
		return fmt.Errorf("failed to load games for model build: %w", err)
	}
	if len(games) == 0 {
		return model.ErrNotFound("no games in store, run etl first")
	}

	m := recommend.Build(games, s.maxFeatures)
	if err := m.Save(s.modelPath); err != nil {
		logrus.Warnf("Failed to save model snapshot: %v", err)
	}

	s.mu.Lock()
	s.model = m
	s.mu.Unlock()
	return nil
}

// Recommend 对给定标题生成推荐
func (s *RecommendService) Recommend(req *model.RecommendRequest) ([]*model.Recommendation, error) {
	if req.Title == "" {
		return nil, model.ErrInvalidParameter("title is required")
	}

	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()
	if m == nil {
		return nil, model.ErrNotFound("recommendation model not loaded, run train first")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultTopK
	}
	return m.Recommend(req.Title, limit)
}

// Titles 可推荐的全部标题
func (s *RecommendService) Titles() []string {
	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()
	if m == nil {
		return nil
	}
	return m.Titles()
}

// ModelInfo 模型元信息
func (s *RecommendService) ModelInfo() map[string]interface{} {
	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()

	if m == nil {
		return map[string]interface{}{"loaded": false}
	}
	return map[string]interface{}{
		"loaded":     true,
		"games":      len(m.Games),
		"vocabulary": len(m.Vectorizer.Vocab),
		"built_at":   m.BuiltAt,
	}
}

// Warmup 预热：给最热门的几款游戏先算一遍推荐
func (s *RecommendService) Warmup() {
	s.mu.RLock()
	m := s.model
	s.mu.RUnlock()
	if m == nil {
		return
	}

	top := topByReviews(m.Games, 3)
	for _, g := range top {
		if _, err := m.Recommend(g.GameTitle, s.defaultTopK); err != nil {
			logrus.Debugf("Recommend warmup skipped %q: %v", g.GameTitle, err)
		}
	}
	logrus.Infof("Recommend warmup completed: %d titles", len(top))
}
