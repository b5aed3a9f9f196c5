package model

import (
	"strconv"
	"strings"
	"time"
)

// GameRecord 清洗后的游戏记录，对应steam_games表的一行
type GameRecord struct {
	AppID         int64   `json:"appid"`
	GameTitle     string  `json:"game_title"`
	Price         float64 `json:"price"`
	ReleaseDate   string  `json:"release_date"`
	Genres        string  `json:"genres"`
	SteamspyTags  string  `json:"steamspy_tags"`
	OwnersAvg     int64   `json:"owners_avg"`
	TotalReviews  int64   `json:"total_reviews"`
	PositiveRatio float64 `json:"positive_ratio"`
	Positive      int64   `json:"positive"`
	Negative      int64   `json:"negative"`
}

// releaseDateLayouts 各数据集导出的日期格式不统一，按序尝试
var releaseDateLayouts = []string{
	"2006-01-02",
	"Jan 2, 2006",
	"Jan 2006",
	"2 Jan, 2006",
	"2006/01/02",
}

// ReleaseYear 解析发行年份，解析失败返回0
func (g *GameRecord) ReleaseYear() int {
	s := strings.TrimSpace(g.ReleaseDate)
	if s == "" {
		return 0
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year()
		}
	}
	// 兜底：取前4位当年份
	if len(s) >= 4 {
		if y, err := strconv.Atoi(s[:4]); err == nil && y > 1970 && y < 2100 {
			return y
		}
	}
	return 0
}

// MainGenre 取genres逗号分隔后的第一个类型
func (g *GameRecord) MainGenre() string {
	if g.Genres == "" {
		return "Unknown"
	}
	main := strings.SplitN(g.Genres, ",", 2)[0]
	main = strings.TrimSpace(main)
	if main == "" {
		return "Unknown"
	}
	return main
}

// ContentFeatures 推荐模型的语料：类型+标签，分号逗号折叠成空格
func (g *GameRecord) ContentFeatures() string {
	text := g.Genres + " " + g.SteamspyTags
	text = strings.ReplaceAll(text, ";", " ")
	text = strings.ReplaceAll(text, ",", " ")
	return strings.ToLower(strings.TrimSpace(text))
}

// PriceDisplay 价格展示：0显示Free
func (g *GameRecord) PriceDisplay() string {
	if g.Price == 0 {
		return "Free"
	}
	return "$" + strconv.FormatFloat(g.Price, 'f', 2, 64)
}
