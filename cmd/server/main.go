package main

import (
	"StreamHub/internal/auth"
	"StreamHub/internal/config"
	"StreamHub/internal/data"
	"StreamHub/internal/handler"
	"StreamHub/internal/middleware"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"StreamHub/internal/router"
	"StreamHub/internal/service"
	"StreamHub/internal/storage"
	"StreamHub/internal/view"
	"StreamHub/pkg/logger"
	"StreamHub/pkg/rabbitmq"
	"StreamHub/pkg/redis"
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 加载.env文件和环境变量，只在这里读一次
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}
	// 初始化logger
	logger.InitLogger(logger.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	gin.SetMode(cfg.GinMode)

	// 初始化Redis
	redisClient, err := redis.InitRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Log.Fatalf("无法连接到Redis: %v", err)
	}
	defer redisClient.Close()
	logger.Log.Info("Redis连接成功")

	// 初始化RabbitMQ，清理队列不存在就创建
	rabbitMQConn, err := rabbitmq.InitRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Log.Fatalf("无法连接到RabbitMQ: %v", err)
	}
	defer rabbitMQConn.Close() // 确保程序退出时关闭连接
	if err := rabbitmq.DeclareQueues(rabbitMQConn, service.QueueAssetCleanup); err != nil {
		logger.Log.Fatalf("声明队列失败: %v", err)
	}
	logger.Log.Info("RabbitMQ连接成功")

	// 对象存储
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := storage.NewS3Storage(ctx, storage.Options{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.S3Region,
		Endpoint:      cfg.S3Endpoint,
		PublicBaseURL: cfg.S3PublicBaseURL,
	})
	cancel()
	if err != nil {
		logger.Log.Fatalf("对象存储初始化失败: %v", err)
	}

	db, err := data.OpenMySQL(cfg.MySQLDSN)
	if err != nil {
		logger.Log.Fatalf("无法连接到数据库: %v", err)
	}
	// db.AutoMigrate(),没有这个表就创建,没有属性列则创建列,没有约束则增加约束;不会主动删除和修改
	if err := db.AutoMigrate(model.AllModels()...); err != nil {
		logger.Log.Fatalf("数据库迁移失败: %v", err)
	}
	logger.Log.Info("数据库迁移成功")

	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db, redisClient)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	playlistRepo := repository.NewPlaylistRepository(db)
	tweetRepo := repository.NewTweetRepository(db)

	uow := data.NewUnitOfWork(db, likeRepo, subscriptionRepo, playlistRepo)
	tokens := auth.NewTokenManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	assetService := service.NewAssetService(store, rabbitmq.NewPublisher(rabbitMQConn))
	userService := service.NewUserService(userRepo, tokens, assetService)
	videoService := service.NewVideoService(videoRepo, assetService)
	commentService := service.NewCommentService(commentRepo, videoService)
	likeService := service.NewLikeService(uow, videoService, commentRepo, tweetRepo)
	subscriptionService := service.NewSubscriptionService(uow, userRepo)
	playlistService := service.NewPlaylistService(uow, playlistRepo, videoService)
	tweetService := service.NewTweetService(tweetRepo)
	composer := view.NewComposer(db)

	cookies := handler.CookieOptions{
		Secure:     cfg.CookieSecure,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}
	handlers := router.Handlers{
		User:         handler.NewUserHandler(userService, composer, cookies, cfg.MaxUploadBytes),
		Video:        handler.NewVideoHandler(videoService, userService, composer, cfg.MaxUploadBytes),
		Comment:      handler.NewCommentHandler(commentService, composer),
		Like:         handler.NewLikeHandler(likeService, composer),
		Subscription: handler.NewSubscriptionHandler(subscriptionService, composer),
		Playlist:     handler.NewPlaylistHandler(playlistService, composer),
		Tweet:        handler.NewTweetHandler(tweetService, composer),
		Dashboard:    handler.NewDashboardHandler(composer),
	}

	// 空闲10分钟的IP从限流表里清掉
	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitBurst, 10*time.Minute)

	r := router.SetupRouter(handlers, tokens, userRepo, limiter)
	logger.Log.WithField("address", cfg.Address).Info("服务器启动")

	if err := r.Run(cfg.Address); err != nil {
		logger.Log.Fatalf("服务器启动失败: %v", err)
	}
}
