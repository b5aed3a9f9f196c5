package service

import (
	"crypto/md5"
	"fmt"
	"sort"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/pkg/json"
)

// quantile 线性插值分位数，values必须已升序
func quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return values[0]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return values[n-1]
	}
	frac := pos - float64(lo)
	return values[lo]*(1-frac) + values[lo+1]*frac
}

// fiveNumber 五数概括，values无需有序
func fiveNumber(label string, values []float64) *model.TierBoxStats {
	box := &model.TierBoxStats{PriceTier: label, Count: len(values)}
	if len(values) == 0 {
		return box
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	box.Min = sorted[0]
	box.Q1 = quantile(sorted, 0.25)
	box.Median = quantile(sorted, 0.5)
	box.Q3 = quantile(sorted, 0.75)
	box.Max = sorted[len(sorted)-1]
	return box
}

// cacheKey 请求序列化后取md5作为缓存key
func cacheKey(prefix string, req interface{}) string {
	data, _ := json.Marshal(req)
	return fmt.Sprintf("%s:%x", prefix, md5.Sum(data))
}
