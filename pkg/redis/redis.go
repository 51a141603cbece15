package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// InitRedis 初始化Redis客户端，并在5秒内完成一次PING
func InitRedis(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// 测试连接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	// 如果到时间，自动关闭后台监视计时器的goroutine
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
