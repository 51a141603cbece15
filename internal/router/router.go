package router

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/auth"
	"StreamHub/internal/dto"
	"StreamHub/internal/handler"
	"StreamHub/internal/middleware"
	"StreamHub/internal/repository"
	"StreamHub/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers 路由需要的全部handler
type Handlers struct {
	User         handler.UserHandler
	Video        handler.VideoHandler
	Comment      handler.CommentHandler
	Like         handler.LikeHandler
	Subscription handler.SubscriptionHandler
	Playlist     handler.PlaylistHandler
	Tweet        handler.TweetHandler
	Dashboard    handler.DashboardHandler
}

// SetupRouter 注册全部路由，limiter为nil时不限流
func SetupRouter(h Handlers, tokens *auth.TokenManager, users repository.UserRepository, limiter middleware.RateLimiter) *gin.Engine {
	if err := handler.RegisterValidators(); err != nil {
		logger.Log.WithError(err).Fatal("注册参数校验规则失败")
	}

	r := gin.New()
	r.Use(middleware.RequestLogger())
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Log.WithField("panic", recovered).WithField("path", c.Request.URL.Path).Error("请求处理发生panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(http.StatusInternalServerError, apperror.InternalMessage))
	}))
	if limiter != nil {
		r.Use(middleware.RateLimit(limiter))
	}

	requireAuth := middleware.AuthMiddleware(tokens, users)
	optionalAuth := middleware.OptionalAuthMiddleware(tokens, users)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/healthcheck", handler.HealthCheck)

		userGroup := apiV1.Group("/users")
		{
			userGroup.POST("/register", h.User.Register)
			userGroup.POST("/login", h.User.Login)
			userGroup.POST("/refresh-token", h.User.RefreshToken)

			userGroup.POST("/logout", requireAuth, h.User.Logout)
			userGroup.POST("/change-password", requireAuth, h.User.ChangePassword)
			userGroup.GET("/current-user", requireAuth, h.User.CurrentUser)
			userGroup.PATCH("/update-account", requireAuth, h.User.UpdateAccountDetails)
			userGroup.PATCH("/avatar", requireAuth, h.User.UpdateAvatar)
			userGroup.PATCH("/cover-image", requireAuth, h.User.UpdateCoverImage)
			userGroup.GET("/c/:username", requireAuth, h.User.GetUserChannelProfile)
			userGroup.GET("/history", requireAuth, h.User.GetWatchHistory)
		}

		videoGroup := apiV1.Group("/videos")
		{
			videoGroup.GET("", h.Video.ListVideos)
			videoGroup.GET("/:videoId", optionalAuth, h.Video.GetVideoByID)
			videoGroup.POST("", requireAuth, h.Video.PublishVideo)
			videoGroup.PATCH("/:videoId", requireAuth, h.Video.UpdateVideo)
			videoGroup.DELETE("/:videoId", requireAuth, h.Video.DeleteVideo)
			videoGroup.PATCH("/toggle/publish/:videoId", requireAuth, h.Video.TogglePublishStatus)
		}

		commentGroup := apiV1.Group("/comments")
		{
			commentGroup.GET("/:videoId", h.Comment.GetVideoComments)
			commentGroup.POST("/:videoId", requireAuth, h.Comment.AddComment)
			commentGroup.PATCH("/c/:commentId", requireAuth, h.Comment.UpdateComment)
			commentGroup.DELETE("/c/:commentId", requireAuth, h.Comment.DeleteComment)
		}

		authorized := apiV1.Group("/")
		authorized.Use(requireAuth)
		{
			authorized.POST("/likes/v/:videoId", h.Like.ToggleVideoLike)
			authorized.POST("/likes/c/:commentId", h.Like.ToggleCommentLike)
			authorized.POST("/likes/t/:tweetId", h.Like.ToggleTweetLike)
			authorized.GET("/likes/videos", h.Like.GetLikedVideos)

			authorized.POST("/subscriptions/c/:channelId", h.Subscription.ToggleSubscription)
			authorized.GET("/subscriptions/c/:channelId", h.Subscription.GetChannelSubscribers)
			authorized.GET("/subscriptions/u/:subscriberId", h.Subscription.GetSubscribedChannels)

			authorized.POST("/playlist", h.Playlist.CreatePlaylist)
			authorized.GET("/playlist/user/:userId", h.Playlist.GetUserPlaylists)
			authorized.GET("/playlist/:playlistId", h.Playlist.GetPlaylistByID)
			authorized.PATCH("/playlist/:playlistId", h.Playlist.UpdatePlaylist)
			authorized.DELETE("/playlist/:playlistId", h.Playlist.DeletePlaylist)
			authorized.PATCH("/playlist/add/:videoId/:playlistId", h.Playlist.AddVideoToPlaylist)
			authorized.PATCH("/playlist/remove/:videoId/:playlistId", h.Playlist.RemoveVideoFromPlaylist)

			authorized.POST("/tweets", h.Tweet.CreateTweet)
			authorized.GET("/tweets/user/:userId", h.Tweet.GetUserTweets)
			authorized.PATCH("/tweets/:tweetId", h.Tweet.UpdateTweet)
			authorized.DELETE("/tweets/:tweetId", h.Tweet.DeleteTweet)

			authorized.GET("/dashboard/stats/:username", h.Dashboard.GetChannelStats)
			authorized.GET("/dashboard/videos", h.Dashboard.GetChannelVideos)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse(http.StatusNotFound, "接口不存在"))
	})
	return r
}
