package handler

import (
	"StreamHub/internal/dto"
	"StreamHub/internal/middleware"
	"StreamHub/internal/service"
	"StreamHub/internal/view"
	"StreamHub/pkg/logger"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type publishVideoRequest struct {
	Title       string `form:"title" binding:"required,notblank"`
	Description string `form:"description" binding:"required,notblank"`
	Duration    uint64 `form:"duration"`
}

// 可以是multipart（换封面）也可以是JSON
type updateVideoRequest struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
}

type VideoHandler interface {
	ListVideos(c *gin.Context)
	PublishVideo(c *gin.Context)
	GetVideoByID(c *gin.Context)
	UpdateVideo(c *gin.Context)
	DeleteVideo(c *gin.Context)
	TogglePublishStatus(c *gin.Context)
}

type videoHandler struct {
	videoService service.VideoService
	userService  service.UserService
	composer     view.Composer
	maxUpload    int64
}

func NewVideoHandler(videoService service.VideoService, userService service.UserService, composer view.Composer, maxUpload int64) VideoHandler {
	return &videoHandler{
		videoService: videoService,
		userService:  userService,
		composer:     composer,
		maxUpload:    maxUpload,
	}
}

// ListVideos 视频列表：分页+关键字+排序+按作者筛选，只返回已发布的
func (h *videoHandler) ListVideos(c *gin.Context) {
	page, limit, ok := parsePage(c)
	if !ok {
		return
	}
	q := view.VideoQuery{
		Page:     page,
		Limit:    limit,
		Query:    c.Query("query"),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || userID == 0 {
			sendErrorResponse(c, http.StatusBadRequest, "无效的userId")
			return
		}
		q.UserID = userID
	}

	result, err := h.composer.ListVideos(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, result, "获取视频列表成功")
}

// PublishVideo 发布视频：videoFile和thumbnail两个文件都必填
func (h *videoHandler) PublishVideo(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req publishVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		sendBindError(c, err)
		return
	}

	videoFile, vf, err := formUpload(c, "videoFile", h.maxUpload)
	if err != nil {
		handleError(c, err)
		return
	}
	thumbnail, tf, err := formUpload(c, "thumbnail", h.maxUpload)
	defer closeFiles(vf, tf)
	if err != nil {
		handleError(c, err)
		return
	}

	video, err := h.videoService.Publish(c.Request.Context(), userID, service.PublishVideoInput{
		Title:       req.Title,
		Description: req.Description,
		Duration:    req.Duration,
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, dto.ToVideoCard(video), "视频发布成功")
}

// GetVideoByID 视频详情，登录用户顺便记一条观看历史
func (h *videoHandler) GetVideoByID(c *gin.Context) {
	videoID, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	viewerID, authenticated := middleware.CurrentUserID(c)

	detail, err := h.composer.GetVideoByID(c.Request.Context(), videoID, viewerID)
	if err != nil {
		handleError(c, err)
		return
	}
	if authenticated {
		// 记观看历史失败不影响看视频
		if err := h.userService.RecordView(c.Request.Context(), viewerID, videoID); err != nil {
			logger.Log.WithError(err).WithField("user_id", viewerID).WithField("video_id", videoID).Warn("记录观看历史失败")
		}
	}
	sendResponse(c, http.StatusOK, detail, "获取视频成功")
}

func (h *videoHandler) UpdateVideo(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	var req updateVideoRequest
	if err := c.ShouldBind(&req); err != nil {
		sendBindError(c, err)
		return
	}
	thumbnail, tf, err := formUpload(c, "thumbnail", h.maxUpload)
	defer closeFiles(tf)
	if err != nil {
		handleError(c, err)
		return
	}

	video, err := h.videoService.Update(c.Request.Context(), userID, videoID, service.UpdateVideoInput{
		Title:       req.Title,
		Description: req.Description,
		Thumbnail:   thumbnail,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToVideoCard(video), "视频已更新")
}

func (h *videoHandler) DeleteVideo(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	if err := h.videoService.Delete(c.Request.Context(), userID, videoID); err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "视频已删除")
}

func (h *videoHandler) TogglePublishStatus(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	video, err := h.videoService.TogglePublishStatus(c.Request.Context(), userID, videoID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{"isPublished": video.IsPublished}, "发布状态已切换")
}
