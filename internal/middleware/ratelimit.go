package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// TokenBucketLimiter 令牌桶限流器
type TokenBucketLimiter struct {
	limiter *rate.Limiter
	mu      sync.RWMutex
}

// NewTokenBucketLimiter 创建令牌桶限流器
// qps: 每秒允许的请求数
// burst: 允许的突发请求数
func NewTokenBucketLimiter(qps int, burst int) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		limiter: rate.NewLimiter(rate.Limit(qps), burst),
	}
}

// Allow 检查是否允许请求
func (l *TokenBucketLimiter) Allow() bool {
	return l.limiter.Allow()
}

// UpdateLimit 动态更新限流配置
func (l *TokenBucketLimiter) UpdateLimit(qps int, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiter.SetLimit(rate.Limit(qps))
	l.limiter.SetBurst(burst)
}

// GlobalRateLimiterConfig 全局限流配置
type GlobalRateLimiterConfig struct {
	limiters map[string]*TokenBucketLimiter // 按路由分组的限流器
	mu       sync.RWMutex
}

var globalRateLimiter *GlobalRateLimiterConfig

// InitGlobalRateLimiter 初始化全局限流器
func InitGlobalRateLimiter() {
	globalRateLimiter = &GlobalRateLimiterConfig{
		limiters: make(map[string]*TokenBucketLimiter),
	}

	// 仪表盘查询走缓存，允许较高流量 - 500 QPS
	globalRateLimiter.AddLimiter("dashboard", 500, 800)

	// 评论分析需要扫描大文件，严格限流 - 50 QPS
	globalRateLimiter.AddLimiter("reviews", 50, 80)

	// 推荐查询为内存计算 - 300 QPS
	globalRateLimiter.AddLimiter("recommend", 300, 500)

	// 默认限流 - 200 QPS
	globalRateLimiter.AddLimiter("default", 200, 300)
}

// AddLimiter 添加限流器
func (g *GlobalRateLimiterConfig) AddLimiter(name string, qps int, burst int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.limiters[name] = NewTokenBucketLimiter(qps, burst)
}

// GetLimiter 获取限流器
func (g *GlobalRateLimiterConfig) GetLimiter(name string) *TokenBucketLimiter {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if limiter, ok := g.limiters[name]; ok {
		return limiter
	}
	return g.limiters["default"]
}

// RateLimitMiddleware 限流中间件
func RateLimitMiddleware() gin.HandlerFunc {
	if globalRateLimiter == nil {
		InitGlobalRateLimiter()
	}

	return func(c *gin.Context) {
		limiterName := getLimiterNameByPath(c.Request.URL.Path)
		limiter := globalRateLimiter.GetLimiter(limiterName)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"status_code": 429,
				"status_msg":  "Too Many Requests - Rate limit exceeded",
				"data":        nil,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// getLimiterNameByPath 根据路径获取限流器名称
func getLimiterNameByPath(path string) string {
	switch {
	case strings.Contains(path, "/dashboard"):
		return "dashboard"
	case strings.Contains(path, "/reviews"):
		return "reviews"
	case strings.Contains(path, "/recommend"):
		return "recommend"
	default:
		return "default"
	}
}

// IPRateLimiter IP级别的限流器
type IPRateLimiter struct {
	limiters map[string]*TokenBucketLimiter
	mu       sync.RWMutex
	qps      int
	burst    int
}

// NewIPRateLimiter 创建IP限流器
func NewIPRateLimiter(qps, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*TokenBucketLimiter),
		qps:      qps,
		burst:    burst,
	}
}

// GetLimiter 获取或创建IP对应的限流器
func (l *IPRateLimiter) GetLimiter(ip string) *TokenBucketLimiter {
	l.mu.RLock()
	limiter, exists := l.limiters[ip]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// 双重检查
	if limiter, exists := l.limiters[ip]; exists {
		return limiter
	}

	limiter = NewTokenBucketLimiter(l.qps, l.burst)
	l.limiters[ip] = limiter
	return limiter
}

// IPRateLimitMiddleware IP级别限流中间件
func IPRateLimitMiddleware(qps, burst int) gin.HandlerFunc {
	limiter := NewIPRateLimiter(qps, burst)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		ipLimiter := limiter.GetLimiter(ip)

		if !ipLimiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"status_code": 429,
				"status_msg":  "Too Many Requests - IP rate limit exceeded",
				"data":        nil,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
