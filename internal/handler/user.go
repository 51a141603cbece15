package handler

import (
	"StreamHub/internal/auth"
	"StreamHub/internal/dto"
	"StreamHub/internal/middleware"
	"StreamHub/internal/model"
	"StreamHub/internal/service"
	"StreamHub/internal/view"
	"StreamHub/pkg/logger"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CookieOptions 登录令牌写cookie时的参数
type CookieOptions struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// 注册是multipart表单，头像必填，封面可选
type registerRequest struct {
	Fullname string `form:"fullname" binding:"required,notblank"`
	Username string `form:"username" binding:"required,notblank"`
	Email    string `form:"email" binding:"required,notblank"`
	Password string `form:"password" binding:"required,notblank"`
}

// username和email给一个就行
type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,notblank"`
}

type updateAccountRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

type UserHandler interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	Logout(c *gin.Context)
	RefreshToken(c *gin.Context)
	ChangePassword(c *gin.Context)
	CurrentUser(c *gin.Context)
	UpdateAccountDetails(c *gin.Context)
	UpdateAvatar(c *gin.Context)
	UpdateCoverImage(c *gin.Context)
	GetUserChannelProfile(c *gin.Context)
	GetWatchHistory(c *gin.Context)
}

type userHandler struct {
	userService service.UserService
	composer    view.Composer
	cookies     CookieOptions
	maxUpload   int64
}

func NewUserHandler(userService service.UserService, composer view.Composer, cookies CookieOptions, maxUpload int64) UserHandler {
	return &userHandler{
		userService: userService,
		composer:    composer,
		cookies:     cookies,
		maxUpload:   maxUpload,
	}
}

// Register 处理用户注册请求
func (h *userHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		sendBindError(c, err)
		return
	}

	avatar, avatarFile, err := formUpload(c, "avatar", h.maxUpload)
	if err != nil {
		handleError(c, err)
		return
	}
	cover, coverFile, err := formUpload(c, "coverImage", h.maxUpload)
	defer closeFiles(avatarFile, coverFile)
	if err != nil {
		handleError(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), service.RegisterInput{
		Fullname:   req.Fullname,
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusCreated, dto.ToUserResponse(user), "用户注册成功")
}

// Login 处理用户登录请求，令牌同时写进cookie和响应体
func (h *userHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}

	user, pair, err := h.userService.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleError(c, err)
		return
	}
	h.setTokenCookies(c, pair)
	sendResponse(c, http.StatusOK, dto.LoginResponse{
		User:         dto.ToUserResponse(user),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "登录成功")
}

func (h *userHandler) Logout(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	if err := h.userService.Logout(c.Request.Context(), userID); err != nil {
		handleError(c, err)
		return
	}
	h.clearTokenCookies(c)
	sendResponse(c, http.StatusOK, gin.H{}, "已退出登录")
}

// RefreshToken 刷新令牌：cookie优先，其次请求体
func (h *userHandler) RefreshToken(c *gin.Context) {
	raw, _ := c.Cookie(middleware.RefreshTokenCookie)
	if raw == "" {
		var req refreshRequest
		// 请求体可以为空，解析失败按没传处理
		_ = c.ShouldBindJSON(&req)
		raw = req.RefreshToken
	}
	if raw == "" {
		sendErrorResponse(c, http.StatusUnauthorized, "缺少刷新令牌")
		return
	}

	pair, err := h.userService.RefreshToken(c.Request.Context(), raw)
	if err != nil {
		handleError(c, err)
		return
	}
	h.setTokenCookies(c, pair)
	sendResponse(c, http.StatusOK, dto.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, "访问令牌已刷新")
}

func (h *userHandler) ChangePassword(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	if err := h.userService.ChangePassword(c.Request.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, gin.H{}, "密码修改成功")
}

func (h *userHandler) CurrentUser(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToUserResponse(user), "获取当前用户成功")
}

func (h *userHandler) UpdateAccountDetails(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	var req updateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendBindError(c, err)
		return
	}
	user, err := h.userService.UpdateAccountDetails(c.Request.Context(), userID, req.Fullname, req.Email)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, dto.ToUserResponse(user), "账号信息已更新")
}

func (h *userHandler) UpdateAvatar(c *gin.Context) {
	h.replaceImage(c, "avatar", h.userService.UpdateAvatar, "头像已更新")
}

func (h *userHandler) UpdateCoverImage(c *gin.Context) {
	h.replaceImage(c, "coverImage", h.userService.UpdateCoverImage, "封面已更新")
}

type imageUpdater func(ctx context.Context, userID uint64, up *service.Upload) (*model.User, error)

// 换头像/封面：1、文件必填 2、上传并写库 3、旧文件由服务层交给清理队列
func (h *userHandler) replaceImage(c *gin.Context, field string, update imageUpdater, message string) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	up, file, err := formUpload(c, field, h.maxUpload)
	defer closeFiles(file)
	if err != nil {
		handleError(c, err)
		return
	}
	if up == nil {
		sendErrorResponse(c, http.StatusBadRequest, field+"文件是必填的")
		return
	}
	user, err := update(c.Request.Context(), userID, up)
	if err != nil {
		handleError(c, err)
		return
	}
	logger.Log.WithField("user_id", userID).WithField("field", field).Info("用户图片已更新")
	sendResponse(c, http.StatusOK, dto.ToUserResponse(user), message)
}

// GetUserChannelProfile 频道主页，本人访问时带email
func (h *userHandler) GetUserChannelProfile(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	profile, err := h.composer.GetUserProfile(c.Request.Context(), c.Param("username"), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, profile, "获取频道信息成功")
}

func (h *userHandler) GetWatchHistory(c *gin.Context) {
	userID, ok := mustUserID(c)
	if !ok {
		return
	}
	history, err := h.composer.GetWatchHistory(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}
	sendResponse(c, http.StatusOK, history, "获取观看历史成功")
}

func (h *userHandler) setTokenCookies(c *gin.Context, pair *auth.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken, int(h.cookies.AccessTTL.Seconds()), "/", "", h.cookies.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, pair.RefreshToken, int(h.cookies.RefreshTTL.Seconds()), "/", "", h.cookies.Secure, true)
}

func (h *userHandler) clearTokenCookies(c *gin.Context) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", "", h.cookies.Secure, true)
}
