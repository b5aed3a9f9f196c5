package service

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/cache/lru"
	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/internal/repository"
	"github.com/Jiawei57/steam-analytics-engine/pkg/common"
	"github.com/Jiawei57/steam-analytics-engine/pkg/json"
)

// 趋势图的统计窗口
const (
	trendYearMin = 2010
	trendYearMax = 2025
)

// DashboardService 市场仪表盘服务
// 游戏表全量驻留内存（几万行量级），聚合实时算，响应进LRU缓存
type DashboardService struct {
	store     repository.GameStore
	cache     *lru.Cache
	cacheHits int64
	cacheMiss int64

	mu       sync.RWMutex
	games    []*model.GameRecord
	loadedAt time.Time
}

// NewDashboardService 创建仪表盘服务并加载游戏表
func NewDashboardService(store repository.GameStore, cache *lru.Cache) (*DashboardService, error) {
	s := &DashboardService{store: store, cache: cache}
	if err := s.Refresh(); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh 重新加载游戏表
func (s *DashboardService) Refresh() error {
	games, err := s.store.ListGames()
	if err != nil {
		return fmt.Errorf("failed to load games: %w", err)
	}

	s.mu.Lock()
	s.games = games
	s.loadedAt = time.Now()
	s.mu.Unlock()

	logrus.Infof("Dashboard data refreshed: %d games", len(games))
	return nil
}

// Games 当前内存中的游戏表
func (s *DashboardService) Games() []*model.GameRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.games
}

// Query 仪表盘聚合查询
func (s *DashboardService) Query(req *model.DashboardRequest) (*model.DashboardData, error) {
	key := cacheKey("dashboard", req)
	if cached, ok := s.cache.Get(key); ok {
		atomic.AddInt64(&s.cacheHits, 1)
		data := &model.DashboardData{}
		if err := json.Unmarshal(cached.(common.ByteView).ByteSlice(), data); err == nil {
			logrus.Debugf("Cache hit: %s", key)
			return data, nil
		}
	}
	atomic.AddInt64(&s.cacheMiss, 1)

	all := s.Games()
	filtered := FilterGames(all, req)

	data := &model.DashboardData{
		KPI:       computeKPI(filtered),
		Heatmap:   computeHeatmap(filtered),
		TierBoxes: computeTierBoxes(filtered),
		Supply:    supplyTrend(filtered, all),
		Demand:    demandTrend(filtered, all),
		TopGames:  topByReviews(filtered, 10),
		Games:     detailPage(filtered, req),
		Matched:   len(filtered),
	}

	if raw, err := json.Marshal(data); err == nil {
		s.cache.Add(key, common.NewByteView(raw))
	}
	return data, nil
}

// FilterGames 依次套用筛选条件：年份、价格、类型、标题搜索
func FilterGames(games []*model.GameRecord, req *model.DashboardRequest) []*model.GameRecord {
	search := strings.ToLower(strings.TrimSpace(req.Search))

	out := make([]*model.GameRecord, 0, len(games))
	for _, g := range games {
		if req.YearFrom > 0 || req.YearTo > 0 {
			year := g.ReleaseYear()
			if req.YearFrom > 0 && year < req.YearFrom {
				continue
			}
			if req.YearTo > 0 && year > req.YearTo {
				continue
			}
		}
		if g.Price < req.PriceMin {
			continue
		}
		if req.PriceMax > 0 && g.Price > req.PriceMax {
			continue
		}
		if len(req.Genres) > 0 && !matchesGenres(g, req.Genres) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.GameTitle), search) {
			continue
		}
		out = append(out, g)
	}
	return out
}

// matchesGenres 任一选中类型出现在genres字段即命中
func matchesGenres(g *model.GameRecord, genres []string) bool {
	for _, want := range genres {
		if want != "" && strings.Contains(g.Genres, want) {
			return true
		}
	}
	return false
}

// GenreList 全部主类型（去重排序），前端筛选器用
func (s *DashboardService) GenreList() []string {
	seen := make(map[string]bool)
	for _, g := range s.Games() {
		seen[g.MainGenre()] = true
	}
	genres := make([]string, 0, len(seen))
	for genre := range seen {
		genres = append(genres, genre)
	}
	sort.Strings(genres)
	return genres
}

func computeKPI(games []*model.GameRecord) *model.KPISummary {
	kpi := &model.KPISummary{TotalGames: len(games)}
	if len(games) == 0 {
		return kpi
	}

	var priceSum float64
	for _, g := range games {
		priceSum += g.Price
		if g.Price == 0 {
			kpi.FreeGames++
		}
		kpi.TotalReviews += g.TotalReviews
	}
	kpi.AvgPrice = priceSum / float64(len(games))
	return kpi
}

// computeHeatmap 价格分层 x 热度分层 的平均好评率
func computeHeatmap(games []*model.GameRecord) []*model.HeatmapCell {
	type agg struct {
		sum   float64
		count int
	}
	cells := make(map[string]*agg)
	for _, g := range games {
		key := model.PriceTier(g.Price) + "|" + model.ReviewTier(g.TotalReviews)
		a, ok := cells[key]
		if !ok {
			a = &agg{}
			cells[key] = a
		}
		a.sum += g.PositiveRatio
		a.count++
	}

	// 全矩阵输出，空单元格保留占位方便前端画完整热力图
	out := make([]*model.HeatmapCell, 0, len(model.PriceTierLabels)*len(model.ReviewTierLabels))
	for _, rt := range model.ReviewTierLabels {
		for _, pt := range model.PriceTierLabels {
			cell := &model.HeatmapCell{PriceTier: pt, ReviewTier: rt}
			if a, ok := cells[pt+"|"+rt]; ok && a.count > 0 {
				cell.AvgRatio = a.sum / float64(a.count)
				cell.Count = a.count
				cell.HasGames = true
			}
			out = append(out, cell)
		}
	}
	return out
}

// computeTierBoxes 各价格分层的好评率箱形统计
func computeTierBoxes(games []*model.GameRecord) []*model.TierBoxStats {
	grouped := make(map[string][]float64)
	for _, g := range games {
		tier := model.PriceTier(g.Price)
		grouped[tier] = append(grouped[tier], g.PositiveRatio)
	}

	out := make([]*model.TierBoxStats, 0, len(model.PriceTierLabels))
	for _, tier := range model.PriceTierLabels {
		out = append(out, fiveNumber(tier, grouped[tier]))
	}
	return out
}

// supplyTrend 供给端：每年新游戏数
// 筛选结果很少（<=5款）时切换成该类型的市场背景，方便对比定位
func supplyTrend(filtered, all []*model.GameRecord) []*model.YearPoint {
	source := filtered
	if len(filtered) > 0 && len(filtered) <= 5 {
		source = genreBackground(filtered[0], all)
	}

	counts := make(map[int]float64)
	for _, g := range source {
		if y := g.ReleaseYear(); y >= trendYearMin && y <= trendYearMax {
			counts[y]++
		}
	}
	return toYearPoints(counts)
}

// demandTrend 需求端：每年评论热度
// 小结果集时取类型背景的年均评论数，正常模式取筛选集的年评论总量
func demandTrend(filtered, all []*model.GameRecord) []*model.YearPoint {
	if len(filtered) > 0 && len(filtered) <= 5 {
		source := genreBackground(filtered[0], all)
		sums := make(map[int]float64)
		counts := make(map[int]float64)
		for _, g := range source {
			if y := g.ReleaseYear(); y >= trendYearMin && y <= trendYearMax {
				sums[y] += float64(g.TotalReviews)
				counts[y]++
			}
		}
		for y := range sums {
			sums[y] /= counts[y]
		}
		return toYearPoints(sums)
	}

	sums := make(map[int]float64)
	for _, g := range filtered {
		if y := g.ReleaseYear(); y >= trendYearMin && y <= trendYearMax {
			sums[y] += float64(g.TotalReviews)
		}
	}
	return toYearPoints(sums)
}

// genreBackground 与目标游戏同主类型的全量子集
func genreBackground(target *model.GameRecord, all []*model.GameRecord) []*model.GameRecord {
	genre := target.MainGenre()
	out := make([]*model.GameRecord, 0)
	for _, g := range all {
		if g.MainGenre() == genre {
			out = append(out, g)
		}
	}
	return out
}

func toYearPoints(m map[int]float64) []*model.YearPoint {
	points := make([]*model.YearPoint, 0, len(m))
	for y, v := range m {
		points = append(points, &model.YearPoint{Year: y, Value: v})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Year < points[j].Year })
	return points
}

// topByReviews 评论量Top-N
func topByReviews(games []*model.GameRecord, n int) []*model.GameRecord {
	sorted := make([]*model.GameRecord, len(games))
	copy(sorted, games)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TotalReviews > sorted[j].TotalReviews
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// detailPage 明细分页，默认按发行日期倒序
func detailPage(games []*model.GameRecord, req *model.DashboardRequest) []*model.GameDetailEntry {
	sorted := make([]*model.GameRecord, len(games))
	copy(sorted, games)

	field := req.Field
	if field == "" {
		field = "release_date"
	}
	asc := req.Order > 0

	sort.Slice(sorted, func(i, j int) bool {
		var less bool
		switch field {
		case "price":
			less = sorted[i].Price < sorted[j].Price
		case "total_reviews":
			less = sorted[i].TotalReviews < sorted[j].TotalReviews
		case "positive_ratio":
			less = sorted[i].PositiveRatio < sorted[j].PositiveRatio
		default:
			less = sorted[i].ReleaseDate < sorted[j].ReleaseDate
		}
		if asc {
			return less
		}
		return !less
	})

	offset, limit := req.Offset, req.Limit
	if limit <= 0 {
		limit = 50
	}
	if offset >= len(sorted) {
		return nil
	}
	end := offset + limit
	if end > len(sorted) {
		end = len(sorted)
	}

	out := make([]*model.GameDetailEntry, 0, end-offset)
	for _, g := range sorted[offset:end] {
		out = append(out, &model.GameDetailEntry{
			AppID:         g.AppID,
			GameTitle:     g.GameTitle,
			Price:         g.Price,
			PriceDisplay:  g.PriceDisplay(),
			ReleaseDate:   g.ReleaseDate,
			Genres:        g.Genres,
			PositiveRatio: g.PositiveRatio,
			TotalReviews:  g.TotalReviews,
		})
	}
	return out
}

// Warmup 预热常用查询
func (s *DashboardService) Warmup() error {
	logrus.Info("Starting dashboard cache warmup...")
	warmed := 0

	// 默认全景视图
	if _, err := s.Query(&model.DashboardRequest{YearFrom: 2015, YearTo: 2025, PriceMax: 100}); err == nil {
		warmed++
	}
	// 免费游戏视图
	if _, err := s.Query(&model.DashboardRequest{PriceMax: 0.01}); err == nil {
		warmed++
	}

	logrus.Infof("Dashboard cache warmup completed: %d queries, %d entries in cache", warmed, s.cache.Len())
	return nil
}

// Stats 底层仓库统计加内存态信息
func (s *DashboardService) Stats() (map[string]interface{}, error) {
	stats, err := s.store.Stats()
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	stats["games_in_memory"] = len(s.games)
	stats["loaded_at"] = s.loadedAt.Format("2006-01-02 15:04:05")
	s.mu.RUnlock()
	return stats, nil
}

// CacheStats 缓存统计
func (s *DashboardService) CacheStats() map[string]interface{} {
	hits := atomic.LoadInt64(&s.cacheHits)
	miss := atomic.LoadInt64(&s.cacheMiss)
	total := hits + miss

	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":  s.cache.Len(),
		"bytes":    s.cache.UsedBytes(),
		"hits":     hits,
		"misses":   miss,
		"hit_rate": fmt.Sprintf("%.2f%%", hitRate),
	}
}

// ResetCacheStats 重置缓存统计
func (s *DashboardService) ResetCacheStats() {
	atomic.StoreInt64(&s.cacheHits, 0)
	atomic.StoreInt64(&s.cacheMiss, 0)
}
