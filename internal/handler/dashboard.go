package handler

import (
	"StreamHub/internal/view"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DashboardHandler interface {
	GetChannelStats(c *gin.Context)
	GetChannelVideos(c *gin.Context)
}

type dashboardHandler struct {
	composer view.Composer
}

func NewDashboardHandler(composer view.Composer) DashboardHandler {
	return &dashboardHandler{composer: composer}
}

// GetChannelStats 频道统计：订阅数、视频数、评论总数、点赞总数
func (h *dashboardHandler) GetChannelStats(c *gin.Context) {
	stats, err := h.composer.GetChannelStats(c.Request.Context(), c.Param("username"))
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, stats, "获取频道统计成功")
}

// GetChannelVideos 当前用户自己的全部视频，包括未发布的
func (h *dashboardHandler) GetChannelVideos(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	videos, err := h.composer.ListChannelVideos(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, videos, "获取频道视频成功")
}

func HealthCheck(c *gin.Context) {
	sendResponse(c, http.StatusOK, gin.H{"status": "ok"}, "服务正常")
}
