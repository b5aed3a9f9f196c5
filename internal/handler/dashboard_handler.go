package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/internal/service"
)

type DashboardHandler struct {
	service *service.DashboardService
}

func NewDashboardHandler(service *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Query 仪表盘聚合查询接口
// POST /steam/api/data/v1/dashboard
func (h *DashboardHandler) Query(c *gin.Context) {
	var req model.DashboardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.Errorf("bind request error: %v", err)
		c.JSON(http.StatusOK, model.DashboardResponse{
			StatusCode: 400,
			StatusMsg:  fmt.Sprintf("invalid request: %v", err),
			Data:       nil,
		})
		return
	}

	logrus.Debugf("dashboard request: search=%q, genres=%v, price=[%.2f,%.2f], year=[%d,%d]",
		req.Search, req.Genres, req.PriceMin, req.PriceMax, req.YearFrom, req.YearTo)

	data, err := h.service.Query(&req)
	if err != nil {
		logrus.Errorf("dashboard query error: %v", err)
		c.JSON(http.StatusOK, model.DashboardResponse{
			StatusCode: 500,
			StatusMsg:  fmt.Sprintf("query error: %v", err),
			Data:       nil,
		})
		return
	}

	c.JSON(http.StatusOK, model.DashboardResponse{
		StatusCode: 0,
		StatusMsg:  "success",
		Data:       data,
	})
}

// Genres 类型清单接口（前端筛选器的选项）
// GET /steam/api/data/v1/genres
func (h *DashboardHandler) Genres(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status_code": 0,
		"status_msg":  "success",
		"data":        h.service.GenreList(),
	})
}

// Stats 统计信息接口
// GET /steam/api/data/v1/stats
func (h *DashboardHandler) Stats(c *gin.Context) {
	storeStats, err := h.service.Stats()
	if err != nil {
		logrus.Errorf("stats query error: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"status_code": 500,
			"status_msg":  fmt.Sprintf("query error: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status_code": 0,
		"status_msg":  "success",
		"data": gin.H{
			"store": storeStats,
			"cache": h.service.CacheStats(),
		},
	})
}

// Refresh 重新加载游戏表
// POST /steam/api/data/v1/refresh
func (h *DashboardHandler) Refresh(c *gin.Context) {
	if err := h.service.Refresh(); err != nil {
		logrus.Errorf("refresh error: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"status_code": 500,
			"status_msg":  fmt.Sprintf("refresh error: %v", err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status_code": 0,
		"status_msg":  "success",
	})
}
