package handler

import (
	"StreamHub/internal/dto"
	"StreamHub/internal/service"
	"StreamHub/internal/view"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type LikeHandler interface {
	ToggleVideoLike(c *gin.Context)
	ToggleCommentLike(c *gin.Context)
	ToggleTweetLike(c *gin.Context)
	GetLikedVideos(c *gin.Context)
}

type likeHandler struct {
	likeService service.LikeService
	composer    view.Composer
}

func NewLikeHandler(likeService service.LikeService, composer view.Composer) LikeHandler {
	return &likeHandler{likeService: likeService, composer: composer}
}

func (h *likeHandler) ToggleVideoLike(c *gin.Context) {
	h.toggle(c, "videoId", h.likeService.ToggleVideoLike)
}

func (h *likeHandler) ToggleCommentLike(c *gin.Context) {
	h.toggle(c, "commentId", h.likeService.ToggleCommentLike)
}

func (h *likeHandler) ToggleTweetLike(c *gin.Context) {
	h.toggle(c, "tweetId", h.likeService.ToggleTweetLike)
}

// 点赞切换：已赞就取消，没赞就点上，返回切换后的状态
func (h *likeHandler) toggle(c *gin.Context, param string, fn func(ctx context.Context, actorID, targetID uint64) (bool, error)) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	targetID, ok := parseID(c, param)
	if !ok {
		return
	}
	liked, err := fn(c.Request.Context(), userID, targetID)
	if err != nil {
		handleError(c, err)
		return
	}
	message := "已取消点赞"
	if liked {
		message = "点赞成功"
	}
	sendResponse(c, http.StatusOK, dto.LikeToggle{IsLiked: liked}, message)
}

func (h *likeHandler) GetLikedVideos(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	result, err := h.composer.GetLikedVideos(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, result, "获取点赞视频成功")
}
