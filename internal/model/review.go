package model

import "time"

// Review 单条玩家评论（从大评论文件按appid过滤扫描得到）
type Review struct {
	AppID           int64     `json:"app_id"`
	ReviewText      string    `json:"review_text"`
	Positive        bool      `json:"positive"`
	VoteUp          float64   `json:"vote_up"`
	CreatedAt       time.Time `json:"created_at"`
	Language        string    `json:"language"`
	PlaytimeMinutes float64   `json:"playtime_minutes"`
}

// HoursPlayed 分钟转小时
func (r *Review) HoursPlayed() float64 {
	return r.PlaytimeMinutes / 60.0
}

// ReviewColumns 评论文件中实际存在的列
// 不同年份的导出缺列是常态，缺失的列降级为空值而不是报错
type ReviewColumns struct {
	HasText     bool `json:"has_text"`
	HasScore    bool `json:"has_score"`
	HasVotes    bool `json:"has_votes"`
	HasTime     bool `json:"has_time"`
	HasLanguage bool `json:"has_language"`
	HasPlaytime bool `json:"has_playtime"`
}
