package middleware

import (
	"StreamHub/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger 每个请求一条结构化日志，请求ID透传或者新生成，并写回响应头
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestID", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		// 蛇形命名法（日志聚合平台ELK、前端JavaScript）
		logCtx := logger.Log.WithField("request_id", requestID).
			WithField("method", c.Request.Method).
			WithField("path", c.FullPath()).
			WithField("status", c.Writer.Status()).
			WithField("latency_ms", time.Since(start).Milliseconds()).
			WithField("ip", c.ClientIP())
		if userID, ok := CurrentUserID(c); ok {
			logCtx = logCtx.WithField("user_id", userID)
		}
		switch {
		case c.Writer.Status() >= 500:
			logCtx.Error("请求处理失败")
		case c.Writer.Status() >= 400:
			logCtx.Warn("请求被拒绝")
		default:
			logCtx.Info("请求处理完成")
		}
	}
}
