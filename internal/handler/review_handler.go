package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Jiawei57/steam-analytics-engine/internal/model"
	"github.com/Jiawei57/steam-analytics-engine/internal/service"
)

type ReviewHandler struct {
	service *service.ReviewService
}

func NewReviewHandler(service *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Analyze 评论分析接口
// POST /steam/api/data/v1/reviews
func (h *ReviewHandler) Analyze(c *gin.Context) {
	var req model.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.Errorf("bind request error: %v", err)
		c.JSON(http.StatusOK, model.ReviewResponse{
			StatusCode: 400,
			StatusMsg:  fmt.Sprintf("invalid request: %v", err),
			Data:       nil,
		})
		return
	}

	logrus.Debugf("review request: app_id=%d, language=%q", req.AppID, req.Language)

	analysis, err := h.service.Analyze(c.Request.Context(), &req)
	if err != nil {
		logrus.Errorf("review analyze error: %v", err)
		c.JSON(http.StatusOK, model.ReviewResponse{
			StatusCode: errorCode(err),
			StatusMsg:  err.Error(),
			Data:       nil,
		})
		return
	}

	c.JSON(http.StatusOK, model.ReviewResponse{
		StatusCode: 0,
		StatusMsg:  "success",
		Data:       analysis,
	})
}

// errorCode 从SteamError取响应码，其余按500
func errorCode(err error) int {
	if se, ok := err.(*model.SteamError); ok {
		return se.Code
	}
	return 500
}
