package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
)

// gameColumnAliases 各来源导出的表头差异很大，统一映射到规范列名
var gameColumnAliases = map[string]string{
	"AppID":            "appid",
	"appid":            "appid",
	"app_id":           "appid",
	"Name":             "game_title",
	"name":             "game_title",
	"Price":            "price",
	"price":            "price",
	"Release date":     "release_date",
	"release_date":     "release_date",
	"Genres":           "genres",
	"genres":           "genres",
	"Tags":             "steamspy_tags",
	"tags":             "steamspy_tags",
	"Estimated owners": "owners_raw",
	"owners":           "owners_raw",
	"Positive":         "positive",
	"positive":         "positive",
	"Negative":         "negative",
	"negative":         "negative",
}

var priceCurrencyRe = regexp.MustCompile(`[£$]`)

// Transformer 清洗与特征计算管线
type Transformer struct{}

// Process 把原始表转成规范的游戏记录：
// 列名映射 -> appid清洗去重 -> 数值列兜底 -> 派生特征
func (Transformer) Process(raw *RawTable) ([]*model.GameRecord, error) {
	if raw == nil || len(raw.Headers) == 0 {
		return nil, nil
	}

	cols := resolveColumns(raw.Headers)
	if _, ok := cols["appid"]; !ok {
		return nil, fmt.Errorf("no appid column found in headers: %v", raw.Headers)
	}

	seen := make(map[int64]bool, len(raw.Rows))
	records := make([]*model.GameRecord, 0, len(raw.Rows))
	dropped := 0

	for _, row := range raw.Rows {
		appidStr := cell(row, cols, "appid")
		appid, err := strconv.ParseInt(strings.TrimSpace(appidStr), 10, 64)
		if err != nil {
			dropped++
			continue
		}
		// 重复appid保留首次出现
		if seen[appid] {
			dropped++
			continue
		}
		seen[appid] = true

		rec := &model.GameRecord{
			AppID:        appid,
			GameTitle:    cell(row, cols, "game_title"),
			Price:        cleanPrice(cell(row, cols, "price")),
			ReleaseDate:  cell(row, cols, "release_date"),
			Genres:       cell(row, cols, "genres"),
			SteamspyTags: cell(row, cols, "steamspy_tags"),
			Positive:     parseCount(cell(row, cols, "positive")),
			Negative:     parseCount(cell(row, cols, "negative")),
			OwnersAvg:    parseOwners(cell(row, cols, "owners_raw")),
		}

		rec.TotalReviews = rec.Positive + rec.Negative
		if rec.TotalReviews > 0 {
			rec.PositiveRatio = float64(rec.Positive) / float64(rec.TotalReviews)
		}

		records = append(records, rec)
	}

	if dropped > 0 {
		logrus.Warnf("Dropped %d rows (bad or duplicate appid)", dropped)
	}
	logrus.Infof("Transform completed: %d valid records", len(records))
	return records, nil
}

// resolveColumns 解析表头，返回 规范列名 -> 列下标
// 同一规范列出现多个别名时保留第一个
func resolveColumns(headers []string) map[string]int {
	cols := make(map[string]int)
	for i, h := range headers {
		canonical, ok := gameColumnAliases[strings.TrimSpace(h)]
		if !ok {
			continue
		}
		if _, exists := cols[canonical]; !exists {
			cols[canonical] = i
		}
	}
	return cols
}

// cell 取规范列的值，列缺失或行太短返回空串
func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// cleanPrice 价格清洗：去货币符号、Free归零、解析失败兜底0
// 负价原样保留，留给Validate的price_non_negative规则告警
func cleanPrice(s string) float64 {
	s = strings.TrimSpace(priceCurrencyRe.ReplaceAllString(s, ""))
	if s == "" || strings.EqualFold(s, "free") {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseCount 好评/差评计数，失败兜底0
func parseCount(s string) int64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil && v >= 0 {
		return v
	}
	// 部分导出把计数写成浮点
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return int64(f)
	}
	return 0
}

// parseOwners 拥有者区间如"0-20,000"取两端平均，任何异常返回0
func parseOwners(s string) int64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	parts := strings.Split(s, "-")
	var sum int64
	for _, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return 0
		}
		sum += v
	}
	return sum / int64(len(parts))
}
