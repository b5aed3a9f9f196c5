package model

import "fmt"

// SteamError 自定义错误类型
type SteamError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *SteamError) Error() string {
	return fmt.Sprintf("code: %d, message: %s", e.Code, e.Message)
}

// 预定义错误
var (
	ErrInvalidParameter = func(msg string) error {
		return &SteamError{Code: 400, Message: msg}
	}
	ErrNotFound = func(msg string) error {
		return &SteamError{Code: 404, Message: msg}
	}
	ErrInternalError = func(msg string) error {
		return &SteamError{Code: 500, Message: msg}
	}
)

// 价格分层与热度分层标签（仪表盘热力图的坐标轴）
var (
	PriceTierLabels  = []string{"Free", "<$10", "$10-30", "$30-60", ">$60"}
	ReviewTierLabels = []string{"niche", "modest", "popular", "hit"}
)

// PriceTier 价格分箱，边界 (-1,0,10,30,60,1000]
func PriceTier(price float64) string {
	switch {
	case price <= 0:
		return PriceTierLabels[0]
	case price <= 10:
		return PriceTierLabels[1]
	case price <= 30:
		return PriceTierLabels[2]
	case price <= 60:
		return PriceTierLabels[3]
	default:
		return PriceTierLabels[4]
	}
}

// ReviewTier 评论量分箱，边界 (-1,100,1000,10000,1e8]
func ReviewTier(totalReviews int64) string {
	switch {
	case totalReviews <= 100:
		return ReviewTierLabels[0]
	case totalReviews <= 1000:
		return ReviewTierLabels[1]
	case totalReviews <= 10000:
		return ReviewTierLabels[2]
	default:
		return ReviewTierLabels[3]
	}
}
