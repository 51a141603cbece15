package handler

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/dto"
	"StreamHub/internal/middleware"
	"StreamHub/internal/service"
	"StreamHub/pkg/logger"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// sendErrorResponse 是一个辅助函数，用于发送标准格式的错误响应
func sendErrorResponse(c *gin.Context, code int, message string, errs ...string) {
	c.AbortWithStatusJSON(code, dto.NewErrorResponse(code, message, errs...))
}

func sendResponse(c *gin.Context, code int, data interface{}, message string) {
	c.JSON(code, dto.NewResponse(code, data, message))
}

// handleError 错误边界：业务错误按分类返回状态码，其余一律500且不暴露原因
func handleError(c *gin.Context, err error) {
	appErr := apperror.As(err)
	logCtx := logger.Log.WithField("path", c.FullPath()).WithField("status", appErr.Status()).WithError(err)
	if userID, ok := middleware.CurrentUserID(c); ok {
		logCtx = logCtx.WithField("user_id", userID)
	}
	if appErr.Kind == apperror.KindInternal {
		logCtx.Error("请求处理失败")
		sendErrorResponse(c, http.StatusInternalServerError, apperror.InternalMessage)
		return
	}
	logCtx.Warn("请求被拒绝")
	sendErrorResponse(c, appErr.Status(), appErr.Message)
}

// sendBindError 参数绑定/校验失败，逐个字段列出原因
func sendBindError(c *gin.Context, err error) {
	logger.Log.WithError(err).WithField("path", c.FullPath()).Warn("请求参数解析失败")
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
		sendErrorResponse(c, http.StatusBadRequest, "无效的参数", details...)
		return
	}
	sendErrorResponse(c, http.StatusBadRequest, "无效的参数")
}

// 从认证后的Context中获取用户ID，路由都挂了认证中间件，拿不到说明路由配置错了
func mustUserID(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		sendErrorResponse(c, http.StatusUnauthorized, "用户未认证")
	}
	return userID, ok
}

func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		sendErrorResponse(c, http.StatusBadRequest, "无效的"+name)
		return 0, false
	}
	return id, true
}

// parsePage 解析page/limit，缺省为1和10，limit最大100
func parsePage(c *gin.Context) (int, int, bool) {
	page, limit := defaultPage, defaultLimit
	var err error
	if v := c.Query("page"); v != "" {
		if page, err = strconv.Atoi(v); err != nil || page < 1 {
			sendErrorResponse(c, http.StatusBadRequest, "page必须是正整数")
			return 0, 0, false
		}
	}
	if v := c.Query("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 1 {
			sendErrorResponse(c, http.StatusBadRequest, "limit必须是正整数")
			return 0, 0, false
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, true
}

// formUpload 读取multipart里的文件字段，字段不存在或者请求不是multipart时返回nil；调用方负责关闭
func formUpload(c *gin.Context, field string, maxBytes int64) (*service.Upload, multipart.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, apperror.Validation("无法读取上传文件: " + field)
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, nil, apperror.Validation(field + "文件过大")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, apperror.Internal(err)
	}
	return &service.Upload{
		Reader:      f,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
	}, f, nil
}

func closeFiles(files ...multipart.File) {
	for _, f := range files {
		if f != nil {
			_ = f.Close()
		}
	}
}
