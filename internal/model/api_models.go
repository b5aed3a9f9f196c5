package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// SortOrder 支持数字和字符串（"asc"/"desc" 或 "1"/"-1"）
type SortOrder int

// UnmarshalJSON 支持以下几种形式：
// - 数字（如 1, -1）
// - 字符串数字（"1", "-1"）
// - 字符串方向（"asc", "desc"）
func (o *SortOrder) UnmarshalJSON(b []byte) error {
	var num int
	if err := json.Unmarshal(b, &num); err == nil {
		*o = SortOrder(num)
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "", "0":
		*o = 0
		return nil
	case "asc", "1":
		*o = 1
		return nil
	case "desc", "-1":
		*o = -1
		return nil
	default:
		if v, err := strconv.Atoi(s); err == nil {
			*o = SortOrder(v)
		}
	}
	return nil
}

// DashboardRequest 市场仪表盘查询请求（筛选条件对应原侧边栏）
type DashboardRequest struct {
	Search   string    `json:"search"`    // 标题模糊搜索
	Genres   []string  `json:"genres"`    // 类型多选
	PriceMin float64   `json:"price_min"` // 价格下限
	PriceMax float64   `json:"price_max"` // 价格上限，0表示不限制
	YearFrom int       `json:"year_from"` // 发行年份下限
	YearTo   int       `json:"year_to"`   // 发行年份上限
	Field    string    `json:"field"`     // 明细排序字段
	Order    SortOrder `json:"order"`     // -1=降序, 1=升序
	Offset   int       `json:"offset"`    // 明细分页偏移
	Limit    int       `json:"limit"`     // 明细返回数量
}

// DashboardResponse 仪表盘响应
type DashboardResponse struct {
	StatusCode int            `json:"status_code"`
	StatusMsg  string         `json:"status_msg"`
	Data       *DashboardData `json:"data"`
}

// DashboardData 仪表盘一页所需的全部图表数据
type DashboardData struct {
	KPI       *KPISummary        `json:"kpi"`
	Heatmap   []*HeatmapCell     `json:"heatmap"`    // 价格分层 x 热度分层 的平均好评率
	TierBoxes []*TierBoxStats    `json:"tier_boxes"` // 各价格分层好评率箱形统计
	Supply    []*YearPoint       `json:"supply"`     // 每年新游戏数
	Demand    []*YearPoint       `json:"demand"`     // 每年评论热度
	TopGames  []*GameRecord      `json:"top_games"`  // 评论量Top10
	Games     []*GameDetailEntry `json:"games"`      // 明细分页
	Matched   int                `json:"matched"`    // 筛选命中总数
}

// KPISummary 核心指标卡
type KPISummary struct {
	TotalGames   int     `json:"total_games"`
	AvgPrice     float64 `json:"avg_price"`
	FreeGames    int     `json:"free_games"`
	TotalReviews int64   `json:"total_reviews"`
}

// HeatmapCell 热力图单元格
type HeatmapCell struct {
	PriceTier  string  `json:"price_tier"`
	ReviewTier string  `json:"review_tier"`
	AvgRatio   float64 `json:"avg_ratio"`
	Count      int     `json:"count"`
	HasGames   bool    `json:"has_games"`
}

// TierBoxStats 单个价格分层的好评率五数概括
type TierBoxStats struct {
	PriceTier string  `json:"price_tier"`
	Count     int     `json:"count"`
	Min       float64 `json:"min"`
	Q1        float64 `json:"q1"`
	Median    float64 `json:"median"`
	Q3        float64 `json:"q3"`
	Max       float64 `json:"max"`
}

// YearPoint 年度趋势点
type YearPoint struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// GameDetailEntry 明细列表行，价格附带展示格式
type GameDetailEntry struct {
	AppID         int64   `json:"appid"`
	GameTitle     string  `json:"game_title"`
	Price         float64 `json:"price"`
	PriceDisplay  string  `json:"price_display"`
	ReleaseDate   string  `json:"release_date"`
	Genres        string  `json:"genres"`
	PositiveRatio float64 `json:"positive_ratio"`
	TotalReviews  int64   `json:"total_reviews"`
}

// ReviewRequest 评论分析请求
type ReviewRequest struct {
	AppID    int64  `json:"app_id"`
	Language string `json:"language"` // 空或"All"表示不过滤
	Limit    int    `json:"limit"`    // 热门评论返回条数
}

// ReviewResponse 评论分析响应
type ReviewResponse struct {
	StatusCode int             `json:"status_code"`
	StatusMsg  string          `json:"status_msg"`
	Data       *ReviewAnalysis `json:"data"`
}

// ReviewAnalysis 单款游戏的评论分析结果
type ReviewAnalysis struct {
	AppID        int64               `json:"app_id"`
	Columns      ReviewColumns       `json:"columns"`
	Summary      *ReviewSummary      `json:"summary"`
	Languages    []*LanguageCount    `json:"languages"`
	MonthlyTrend []*MonthlySentiment `json:"monthly_trend"`
	Playtime     *PlaytimeStats      `json:"playtime"`
	Keywords     *KeywordReport      `json:"keywords"`
	TopReviews   []*ReviewItem       `json:"top_reviews"`
}

// ReviewSummary 评论核心指标
type ReviewSummary struct {
	SampleSize   int     `json:"sample_size"`
	PositiveRate float64 `json:"positive_rate"`
	AvgVotes     float64 `json:"avg_votes"`
	YearMin      int     `json:"year_min"`
	YearMax      int     `json:"year_max"`
}

// LanguageCount 语言分布
type LanguageCount struct {
	Language string `json:"language"`
	Count    int    `json:"count"`
}

// MonthlySentiment 月度好评/差评数
type MonthlySentiment struct {
	Month    string `json:"month"` // YYYY-MM
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
}

// PlaytimeStats 遊玩时数与评价关系，95分位截断后的分组箱形统计
type PlaytimeStats struct {
	CapHours float64       `json:"cap_hours"` // 95分位截断线（小时）
	Positive *TierBoxStats `json:"positive"`
	Negative *TierBoxStats `json:"negative"`
}

// KeywordReport 好评/差评关键词
type KeywordReport struct {
	Positive []*WordCount `json:"positive"`
	Negative []*WordCount `json:"negative"`
}

// WordCount 词频
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// ReviewItem 热门评论条目
type ReviewItem struct {
	Positive    bool    `json:"positive"`
	Language    string  `json:"language"`
	Date        string  `json:"date"` // YYYY-MM-DD，无时间列时为空
	HoursPlayed float64 `json:"hours_played"`
	VoteUp      float64 `json:"vote_up"`
	Text        string  `json:"text"`
}

// RecommendRequest 推荐请求
type RecommendRequest struct {
	Title string `json:"title"`
	Limit int    `json:"limit"`
}

// RecommendResponse 推荐响应
type RecommendResponse struct {
	StatusCode int               `json:"status_code"`
	StatusMsg  string            `json:"status_msg"`
	Data       []*Recommendation `json:"data"`
}

// Recommendation 推荐结果及解释
type Recommendation struct {
	GameTitle     string  `json:"game_title"`
	Genres        string  `json:"genres"`
	Price         float64 `json:"price"`
	PositiveRatio float64 `json:"positive_ratio"`
	TotalReviews  int64   `json:"total_reviews"`
	Score         float64 `json:"score"`
	Reason        string  `json:"reason"`
}
