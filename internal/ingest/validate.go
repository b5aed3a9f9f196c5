package ingest

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
)

// Violation 单条校验异常
type Violation struct {
	AppID  int64  `json:"appid"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

// Validate 清洗结果的规则校验：appid非负且唯一、价格非负、好评率在[0,1]
// 校验只产生告警，不会让流程失败
func Validate(records []*model.GameRecord) []Violation {
	var violations []Violation
	seen := make(map[int64]bool, len(records))

	for _, r := range records {
		if r.AppID < 0 {
			violations = append(violations, Violation{
				AppID: r.AppID, Rule: "appid_non_negative",
				Detail: fmt.Sprintf("appid %d is negative", r.AppID),
			})
		}
		if seen[r.AppID] {
			violations = append(violations, Violation{
				AppID: r.AppID, Rule: "appid_unique",
				Detail: fmt.Sprintf("appid %d appears more than once", r.AppID),
			})
		}
		seen[r.AppID] = true

		if r.Price < 0 {
			violations = append(violations, Violation{
				AppID: r.AppID, Rule: "price_non_negative",
				Detail: fmt.Sprintf("price %.2f is negative", r.Price),
			})
		}
		if r.PositiveRatio < 0 || r.PositiveRatio > 1 {
			violations = append(violations, Violation{
				AppID: r.AppID, Rule: "positive_ratio_range",
				Detail: fmt.Sprintf("positive_ratio %.4f out of [0,1]", r.PositiveRatio),
			})
		}
	}

	return violations
}

// LogViolations 校验异常记日志
func LogViolations(violations []Violation) {
	if len(violations) == 0 {
		logrus.Info("Schema validation passed")
		return
	}
	logrus.Warnf("Schema validation found %d violations (pipeline continues)", len(violations))
	for i, v := range violations {
		if i >= 20 {
			logrus.Warnf("... and %d more", len(violations)-20)
			break
		}
		logrus.Warnf("  [%s] %s", v.Rule, v.Detail)
	}
}
