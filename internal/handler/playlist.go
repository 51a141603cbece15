package handler

import (
	"StreamHub/internal/dto"
	"StreamHub/internal/service"
	"StreamHub/internal/view"
	"net/http"

	"github.com/gin-gonic/gin"
)

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type PlaylistHandler interface {
	CreatePlaylist(c *gin.Context)
	GetUserPlaylists(c *gin.Context)
	GetPlaylistByID(c *gin.Context)
	UpdatePlaylist(c *gin.Context)
	DeletePlaylist(c *gin.Context)
	AddVideoToPlaylist(c *gin.Context)
	RemoveVideoFromPlaylist(c *gin.Context)
}

type playlistHandler struct {
	playlistService service.PlaylistService
	composer        view.Composer
}

func NewPlaylistHandler(playlistService service.PlaylistService, composer view.Composer) PlaylistHandler {
	return &playlistHandler{playlistService: playlistService, composer: composer}
}

func (h *playlistHandler) CreatePlaylist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req playlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	playlist, err := h.playlistService.Create(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, dto.ToPlaylistResponse(playlist), "播放列表创建成功")
}

func (h *playlistHandler) GetUserPlaylists(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}
	result, err := h.composer.ListUserPlaylists(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, result, "获取播放列表成功")
}

func (h *playlistHandler) GetPlaylistByID(c *gin.Context) {
	viewerID, ok := mustUserID(c)
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlistId")
	if !ok {
		return
	}
	h.respondPlaylist(c, playlistID, viewerID, "获取播放列表成功")
}

func (h *playlistHandler) UpdatePlaylist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlistId")
	if !ok {
		return
	}
	var req playlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	playlist, err := h.playlistService.Update(c.Request.Context(), userID, playlistID, req.Name, req.Description)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToPlaylistResponse(playlist), "播放列表已更新")
}

func (h *playlistHandler) DeletePlaylist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlistId")
	if !ok {
		return
	}
	if err := h.playlistService.Delete(c.Request.Context(), userID, playlistID); err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "播放列表已删除")
}

// AddVideoToPlaylist 加视频，成功后返回最新的列表内容
func (h *playlistHandler) AddVideoToPlaylist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlistId")
	if !ok {
		return
	}
	if err := h.playlistService.AddVideo(c.Request.Context(), userID, playlistID, videoID); err != nil {
		handleError(c, err)
		return
	}
	h.respondPlaylist(c, playlistID, userID, "视频已加入播放列表")
}

func (h *playlistHandler) RemoveVideoFromPlaylist(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	videoID, ok := parseID(c, "videoId")
	if !ok {
		return
	}
	playlistID, ok := parseID(c, "playlistId")
	if !ok {
		return
	}
	if err := h.playlistService.RemoveVideo(c.Request.Context(), userID, playlistID, videoID); err != nil {
		handleError(c, err)
		return
	}
	h.respondPlaylist(c, playlistID, userID, "视频已移出播放列表")
}

func (h *playlistHandler) respondPlaylist(c *gin.Context, playlistID, viewerID uint64, message string) {
	result, err := h.composer.GetPlaylistByID(c.Request.Context(), playlistID, viewerID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, result, message)
}
