package handler

import (
	"StreamHub/internal/dto"
	"StreamHub/internal/service"
	"StreamHub/internal/view"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TweetHandler interface {
	CreateTweet(c *gin.Context)
	GetUserTweets(c *gin.Context)
	UpdateTweet(c *gin.Context)
	DeleteTweet(c *gin.Context)
}

type tweetHandler struct {
	tweetService service.TweetService
	composer     view.Composer
}

func NewTweetHandler(tweetService service.TweetService, composer view.Composer) TweetHandler {
	return &tweetHandler{tweetService: tweetService, composer: composer}
}

func (h *tweetHandler) CreateTweet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	tweet, err := h.tweetService.Create(c.Request.Context(), userID, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, dto.ToTweetView(tweet), "推文发布成功")
}

func (h *tweetHandler) GetUserTweets(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	result, err := h.composer.ListUserTweets(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, result, "获取推文成功")
}

func (h *tweetHandler) UpdateTweet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	tweetID, ok := parseID(c, "tweetId")
	if !ok {
		return
	}
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	tweet, err := h.tweetService.Update(c.Request.Context(), userID, tweetID, req.Content)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToTweetView(tweet), "推文已修改")
}

func (h *tweetHandler) DeleteTweet(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	tweetID, ok := parseID(c, "tweetId")
	if !ok {
		return
	}
	if err := h.tweetService.Delete(c.Request.Context(), userID, tweetID); err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "推文已删除")
}
