package handler

import (
	"StreamHub/internal/dto"
	"StreamHub/internal/service"
	"StreamHub/internal/view"
	"net/http"

	"github.com/gin-gonic/gin"
)

// 评论、推文共用的请求体
type contentRequest struct {
	Content string `json:"content" binding:"required,notblank"`
}

type CommentHandler interface {
	GetVideoComments(c *gin.Context)
	AddComment(c *gin.Context)
	UpdateComment(c *gin.Context)
	DeleteComment(c *gin.Context)
}

type commentHandler struct {
	commentService service.CommentService
	composer       view.Composer
}

func NewCommentHandler(commentService service.CommentService, composer view.Composer) CommentHandler {
	return &commentHandler{commentService: commentService, composer: composer}
}

// GetVideoComments 视频评论分页，每条评论带点赞人
func (h *commentHandler) GetVideoComments(c *gin.Context) {
	videoID, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	page, limit, ok := parsePage(c)
	if !ok {
		return
	}
	result, err := h.composer.ListVideoComments(c.Request.Context(), videoID, page, limit)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, result, "获取评论成功")
}

func (h *commentHandler) AddComment(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	comment, err := h.commentService.Add(c.Request.Context(), userID, videoID, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, dto.ToCommentView(comment), "评论成功")
}

func (h *commentHandler) UpdateComment(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	comment, err := h.commentService.Update(c.Request.Context(), userID, commentID, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToCommentView(comment), "评论已修改")
}

func (h *commentHandler) DeleteComment(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}
	if err := h.commentService.Delete(c.Request.Context(), userID, commentID); err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "评论已删除")
}
