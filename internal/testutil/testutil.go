// Package testutil 测试共用的内存数据库和造数据函数
package testutil

import (
	"StreamHub/internal/model"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 打开一个全新的内存SQLite并迁移全部模型
// 内存库每个连接都是独立的，所以连接池只留一个连接
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Fullname: "Full " + username,
		Avatar:   fmt.Sprintf("https://cdn.example.com/avatars/%s.png", username),
		Password: "hashed-password",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateVideo(t testing.TB, db *gorm.DB, ownerID uint64, title string, published bool) *model.Video {
	t.Helper()
	video := &model.Video{
		OwnerID:     ownerID,
		Title:       title,
		Description: "about " + title,
		VideoFile:   "https://cdn.example.com/videos/" + title + ".mp4",
		Thumbnail:   "https://cdn.example.com/thumbs/" + title + ".jpg",
		Duration:    60,
		IsPublished: published,
	}
	require.NoError(t, db.Create(video).Error)
	return video
}

func CreateComment(t testing.TB, db *gorm.DB, videoID, ownerID uint64, content string) *model.Comment {
	t.Helper()
	comment := &model.Comment{VideoID: videoID, OwnerID: ownerID, Content: content}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

func CreateLike(t testing.TB, db *gorm.DB, likedByID uint64, kind model.LikeTarget, targetID uint64) *model.Like {
	t.Helper()
	like := &model.Like{LikedByID: likedByID, TargetKind: kind, TargetID: targetID}
	require.NoError(t, db.Create(like).Error)
	return like
}

func Subscribe(t testing.TB, db *gorm.DB, subscriberID, channelID uint64) {
	t.Helper()
	require.NoError(t, db.Create(&model.Subscription{SubscriberID: subscriberID, ChannelID: channelID}).Error)
}
