package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/pkg/logger"
	"context"
	"encoding/json"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

const (
	// 遵循：项目名.业务领域.实体/功能
	QueueAssetCleanup = "streamhub.asset.cleanup.queue"

	FolderAvatars    = "avatars"
	FolderCovers     = "covers"
	FolderVideos     = "videos"
	FolderThumbnails = "thumbnails"
)

// AssetStore 对象存储，只有上传和删除两个能力
type AssetStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, location string) error
}

// Publisher 往指定队列投递一条消息
type Publisher interface {
	Publish(ctx context.Context, queue string, body []byte) error
}

// AssetCleanupMessage 被替换或者孤立的文件，由consumer异步删除
type AssetCleanupMessage struct {
	Location string `json:"location"`
	Reason   string `json:"reason"`
}

// Upload 请求里上传的一个文件
type Upload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
}

type AssetService interface {
	// Store 上传到folder下，返回对外地址
	Store(ctx context.Context, folder string, up *Upload) (string, error)
	// Discard 安排删除一个不再被引用的文件，失败只记日志
	Discard(ctx context.Context, location, reason string)
}

type assetService struct {
	store     AssetStore
	publisher Publisher
}

// publisher可以传nil，此时Discard直接同步删除
func NewAssetService(store AssetStore, publisher Publisher) AssetService {
	return &assetService{store: store, publisher: publisher}
}

// 上传文件：1、检查文件 2、用uuid生成不会重复的key，保留扩展名 3、上传
func (s *assetService) Store(ctx context.Context, folder string, up *Upload) (string, error) {
	if up == nil || up.Reader == nil || up.Size == 0 {
		return "", apperror.Validation("缺少上传文件")
	}
	key := path.Join(folder, uuid.NewString()+strings.ToLower(path.Ext(up.Filename)))
	location, err := s.store.Upload(ctx, key, up.Reader, up.ContentType)
	if err != nil {
		logger.Log.WithField("key", key).WithError(err).Error("文件上传失败")
		return "", apperror.Internal(err)
	}
	return location, nil
}

// 删除文件：1、序列化清理消息 2、投递到清理队列 3、投递失败就当场同步删除
// 在返回响应之前调用，副作用要么进了队列要么已经执行完
func (s *assetService) Discard(ctx context.Context, location, reason string) {
	if location == "" {
		return
	}
	logCtx := logger.Log.WithField("location", location).WithField("reason", reason)

	if s.publisher != nil {
		body, err := json.Marshal(AssetCleanupMessage{Location: location, Reason: reason})
		if err == nil {
			if err = s.publisher.Publish(ctx, QueueAssetCleanup, body); err == nil {
				return
			}
		}
		logCtx.WithError(err).Warn("清理消息投递失败，改为同步删除")
	}

	// 请求的ctx可能马上就被取消，删除用独立的ctx
	if err := s.store.Delete(context.WithoutCancel(ctx), location); err != nil {
		logCtx.WithError(err).Error("删除旧文件失败")
	}
}
