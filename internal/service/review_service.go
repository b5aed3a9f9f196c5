package service

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/cache/lru"
	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/internal/repository"
	"github.com/Jiawei57/steam-analytics-engine/pkg/common"
	"github.com/Jiawei57/steam-analytics-engine/pkg/json"
)

// 单次评论扫描的超时，文件有几个GB，扫不完就放弃
const reviewScanTimeout = 60 * time.Second

var keywordRe = regexp.MustCompile(`\b[a-z]{3,15}\b`)

// keywordStopwords 关键词统计的停用词（评论文本里的高频噪声）
var keywordStopwords = map[string]struct{}{}

func init() {
	words := []string{
		"the", "and", "a", "to", "of", "is", "it", "in", "this", "for",
		"game", "i", "my", "but", "not", "are", "was", "with", "on",
		"have", "be", "you", "that", "as",
	}
	for _, w := range words {
		keywordStopwords[w] = struct{}{}
	}
}

// ReviewService 玩家评论分析服务
type ReviewService struct {
	scanner   *repository.ReviewScanner
	cache     *lru.Cache
	cacheHits int64
	cacheMiss int64
}

// NewReviewService 创建评论分析服务，scanner可为nil（评论文件未配置）
func NewReviewService(scanner *repository.ReviewScanner, cache *lru.Cache) *ReviewService {
	return &ReviewService{scanner: scanner, cache: cache}
}

// Analyze 单款游戏的评论分析
func (s *ReviewService) Analyze(ctx context.Context, req *model.ReviewRequest) (*model.ReviewAnalysis, error) {
	if req.AppID <= 0 {
		return nil, model.ErrInvalidParameter("app_id is required")
	}
	if s.scanner == nil {
		return nil, model.ErrNotFound("reviews file is not configured")
	}

	key := cacheKey("reviews", req)
	if cached, ok := s.cache.Get(key); ok {
		atomic.AddInt64(&s.cacheHits, 1)
		analysis := &model.ReviewAnalysis{}
		if err := json.Unmarshal(cached.(common.ByteView).ByteSlice(), analysis); err == nil {
			logrus.Debugf("Cache hit: %s", key)
			return analysis, nil
		}
	}
	atomic.AddInt64(&s.cacheMiss, 1)

	scanCtx, cancel := context.WithTimeout(ctx, reviewScanTimeout)
	defer cancel()

	reviews, cols, err := s.scanner.ScanByApp(scanCtx, req.AppID)
	if err != nil {
		return nil, err
	}

	languages := languageHistogram(reviews)
	if req.Language != "" && !strings.EqualFold(req.Language, "all") {
		reviews = filterByLanguage(reviews, req.Language)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	analysis := &model.ReviewAnalysis{
		AppID:      req.AppID,
		Columns:    cols,
		Summary:    summarize(reviews, cols),
		Languages:  languages,
		TopReviews: topReviews(reviews, limit),
	}
	if cols.HasTime && cols.HasScore {
		analysis.MonthlyTrend = monthlyTrend(reviews)
	}
	if cols.HasPlaytime && cols.HasScore {
		analysis.Playtime = playtimeStats(reviews)
	}
	if cols.HasText {
		analysis.Keywords = &model.KeywordReport{
			Positive: topKeywords(reviewTexts(reviews, true), 15),
			Negative: topKeywords(reviewTexts(reviews, false), 15),
		}
	}

	if raw, err := json.Marshal(analysis); err == nil {
		s.cache.Add(key, common.NewByteView(raw))
	}
	return analysis, nil
}

func summarize(reviews []*model.Review, cols model.ReviewColumns) *model.ReviewSummary {
	sum := &model.ReviewSummary{SampleSize: len(reviews)}
	if len(reviews) == 0 {
		return sum
	}

	positive := 0
	var votes float64
	yearMin, yearMax := 0, 0
	for _, r := range reviews {
		if r.Positive {
			positive++
		}
		votes += r.VoteUp
		if cols.HasTime && !r.CreatedAt.IsZero() {
			y := r.CreatedAt.Year()
			if yearMin == 0 || y < yearMin {
				yearMin = y
			}
			if y > yearMax {
				yearMax = y
			}
		}
	}

	if cols.HasScore {
		sum.PositiveRate = float64(positive) / float64(len(reviews))
	}
	sum.AvgVotes = votes / float64(len(reviews))
	sum.YearMin = yearMin
	sum.YearMax = yearMax
	return sum
}

func languageHistogram(reviews []*model.Review) []*model.LanguageCount {
	counts := make(map[string]int)
	for _, r := range reviews {
		if r.Language != "" {
			counts[r.Language]++
		}
	}

	out := make([]*model.LanguageCount, 0, len(counts))
	for lang, n := range counts {
		out = append(out, &model.LanguageCount{Language: lang, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Language < out[j].Language
	})
	return out
}

func filterByLanguage(reviews []*model.Review, lang string) []*model.Review {
	out := make([]*model.Review, 0, len(reviews))
	for _, r := range reviews {
		if strings.EqualFold(r.Language, lang) {
			out = append(out, r)
		}
	}
	return out
}

// monthlyTrend 按YYYY-MM分桶的好评/差评数
func monthlyTrend(reviews []*model.Review) []*model.MonthlySentiment {
	buckets := make(map[string]*model.MonthlySentiment)
	for _, r := range reviews {
		if r.CreatedAt.IsZero() {
			continue
		}
		month := r.CreatedAt.Format("2006-01")
		b, ok := buckets[month]
		if !ok {
			b = &model.MonthlySentiment{Month: month}
			buckets[month] = b
		}
		if r.Positive {
			b.Positive++
		} else {
			b.Negative++
		}
	}

	out := make([]*model.MonthlySentiment, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// playtimeStats 遊玩时数与评价关系
// 先按95分位截断去掉极端值（挂机几千小时的会把分布拉坏），再分好评/差评做箱形统计
func playtimeStats(reviews []*model.Review) *model.PlaytimeStats {
	hours := make([]float64, 0, len(reviews))
	for _, r := range reviews {
		hours = append(hours, r.HoursPlayed())
	}
	if len(hours) == 0 {
		return nil
	}
	sort.Float64s(hours)
	cap95 := quantile(hours, 0.95)

	var pos, neg []float64
	for _, r := range reviews {
		h := r.HoursPlayed()
		if h >= cap95 && cap95 > 0 {
			continue
		}
		if r.Positive {
			pos = append(pos, h)
		} else {
			neg = append(neg, h)
		}
	}

	return &model.PlaytimeStats{
		CapHours: cap95,
		Positive: fiveNumber("positive", pos),
		Negative: fiveNumber("negative", neg),
	}
}

func reviewTexts(reviews []*model.Review, positive bool) []string {
	out := make([]string, 0, len(reviews))
	for _, r := range reviews {
		if r.Positive == positive && r.ReviewText != "" {
			out = append(out, r.ReviewText)
		}
	}
	return out
}

// topKeywords 词频Top-N：小写3-15字母的词，去停用词
func topKeywords(texts []string, n int) []*model.WordCount {
	counts := make(map[string]int)
	for _, text := range texts {
		for _, word := range keywordRe.FindAllString(strings.ToLower(text), -1) {
			if _, stop := keywordStopwords[word]; stop {
				continue
			}
			counts[word]++
		}
	}

	words := make([]*model.WordCount, 0, len(counts))
	for w, c := range counts {
		words = append(words, &model.WordCount{Word: w, Count: c})
	}
	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

// topReviews 按有用票数取前N条
func topReviews(reviews []*model.Review, n int) []*model.ReviewItem {
	sorted := make([]*model.Review, len(reviews))
	copy(sorted, reviews)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].VoteUp > sorted[j].VoteUp })
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	out := make([]*model.ReviewItem, 0, len(sorted))
	for _, r := range sorted {
		item := &model.ReviewItem{
			Positive:    r.Positive,
			Language:    r.Language,
			HoursPlayed: r.HoursPlayed(),
			VoteUp:      r.VoteUp,
			Text:        r.ReviewText,
		}
		if !r.CreatedAt.IsZero() {
			item.Date = r.CreatedAt.Format("2006-01-02")
		}
		out = append(out, item)
	}
	return out
}

// CacheStats 缓存统计
func (s *ReviewService) CacheStats() map[string]interface{} {
	return map[string]interface{}{
		"hits":   atomic.LoadInt64(&s.cacheHits),
		"misses": atomic.LoadInt64(&s.cacheMiss),
	}
}
