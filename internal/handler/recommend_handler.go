package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/internal/service"
)

type RecommendHandler struct {
	service *service.RecommendService
}

func NewRecommendHandler(service *service.RecommendService) *RecommendHandler {
	return &RecommendHandler{service: service}
}

// Recommend 推荐接口
// POST /steam/api/data/v1/recommend
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req model.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.Errorf("bind request error: %v", err)
		c.JSON(http.StatusOK, model.RecommendResponse{
			StatusCode: 400,
			StatusMsg:  fmt.Sprintf("invalid request: %v", err),
			Data:       nil,
		})
		return
	}

	logrus.Debugf("recommend request: title=%q, limit=%d", req.Title, req.Limit)

	results, err := h.service.Recommend(&req)
	if err != nil {
		logrus.Errorf("recommend error: %v", err)
		c.JSON(http.StatusOK, model.RecommendResponse{
			StatusCode: errorCode(err),
			StatusMsg:  err.Error(),
			Data:       nil,
		})
		return
	}

	c.JSON(http.StatusOK, model.RecommendResponse{
		StatusCode: 0,
		StatusMsg:  "success",
		Data:       results,
	})
}

// Titles 可推荐标题清单
// GET /steam/api/data/v1/titles
func (h *RecommendHandler) Titles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status_code": 0,
		"status_msg":  "success",
		"data":        h.service.Titles(),
	})
}

// Rebuild 现场重建模型
// POST /steam/api/data/v1/recommend/rebuild
func (h *RecommendHandler) Rebuild(c *gin.Context) {
	if err := h.service.Rebuild(); err != nil {
		logrus.Errorf("model rebuild error: %v", err)
		c.JSON(http.StatusOK, gin.H{
			"status_code": errorCode(err),
			"status_msg":  fmt.Sprintf("rebuild error: %v", err),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status_code": 0,
		"status_msg":  "success",
		"data":        h.service.ModelInfo(),
	})
}
