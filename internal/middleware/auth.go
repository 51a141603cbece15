package middleware

import (
	"StreamHub/internal/auth"
	"StreamHub/internal/dto"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"StreamHub/pkg/logger"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserKey   = "currentUser"
	ContextUserIDKey = "userID"

	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// 中间件工厂，required=false时没有令牌也放行，只是不往context里放用户
// 流程：1、从cookie或者"Authorization: Bearer [token]"取出令牌 2、验证签名和过期时间 3、按令牌里的用户ID把用户读出来 4、放入context
func authenticate(tokens *auth.TokenManager, users repository.UserRepository, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractToken(c)
		if raw == "" {
			if required {
				abortUnauthorized(c, "请求未包含授权令牌")
				return
			}
			c.Next()
			return
		}

		claims, err := tokens.ParseAccess(raw)
		if err != nil {
			abortUnauthorized(c, "无效的授权令牌")
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			if !repository.IsNotFound(err) {
				logger.Log.WithError(err).WithField("user_id", claims.UserID).Error("认证时读取用户失败")
			}
			abortUnauthorized(c, "无效的授权令牌")
			return
		}

		// Token验证成功！将用户信息存入Context，以便后续使用
		c.Set(ContextUserKey, user)
		c.Set(ContextUserIDKey, user.ID)
		c.Next()
	}
}

func AuthMiddleware(tokens *auth.TokenManager, users repository.UserRepository) gin.HandlerFunc {
	return authenticate(tokens, users, true)
}

// OptionalAuthMiddleware 用于公开接口，带了合法令牌就识别出用户，带了非法令牌同样401
func OptionalAuthMiddleware(tokens *auth.TokenManager, users repository.UserRepository) gin.HandlerFunc {
	return authenticate(tokens, users, false)
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie != "" {
		return cookie
	}
	// 通常Token的格式是 "Bearer [token]"
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func abortUnauthorized(c *gin.Context, message string) {
	// 立刻调用Abort，阻止后续的任何处理器被执行
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(http.StatusUnauthorized, message))
}

// CurrentUserID 取出认证中间件放进去的用户ID，未登录返回0和false
func CurrentUserID(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}

func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*model.User)
	return user, ok
}
