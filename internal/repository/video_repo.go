package repository

import (
	"StreamHub/internal/model"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type VideoRepository interface {
	Create(ctx context.Context, video *model.Video) error
	// 先查缓存，未命中再查库并回写缓存
	FindByID(ctx context.Context, videoID uint64) (*model.Video, error)
	// 带owner条件的更新/删除，返回受影响行数，0行说明视频不存在或者不属于ownerID
	UpdateOwned(ctx context.Context, videoID, ownerID uint64, fields map[string]interface{}) (int64, error)
	TogglePublishOwned(ctx context.Context, videoID, ownerID uint64) (int64, error)
	DeleteOwned(ctx context.Context, videoID, ownerID uint64) (int64, error)

	GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error)
	SetVideoCache(ctx context.Context, video *model.Video) error
	DeleteVideoCache(ctx context.Context, videoID uint64) error
}

type videoRepository struct {
	db  *gorm.DB
	rdb *redis.Client
}

// rdb可以传nil，此时所有缓存操作都直接跳过
func NewVideoRepository(db *gorm.DB, rdb *redis.Client) VideoRepository {
	return &videoRepository{
		db:  db,
		rdb: rdb,
	}
}

func (r *videoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.db.WithContext(ctx).Create(video).Error
}

func (r *videoRepository) FindByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	// 1. 先从缓存读
	video, err := r.GetVideoCache(ctx, videoID)
	if err == nil && video != nil {
		// 缓存命中，直接返回
		return video, nil
	}

	// 2. 缓存未命中（或者Redis出错），从数据库读
	var dbVideo model.Video
	if err := r.db.WithContext(ctx).First(&dbVideo, videoID).Error; err != nil {
		return nil, err // 数据库也没找到，就真的没有了
	}

	// 3. 读到数据后，写回缓存，方便下次读取
	_ = r.SetVideoCache(ctx, &dbVideo)

	return &dbVideo, nil
}

func (r *videoRepository) UpdateOwned(ctx context.Context, videoID, ownerID uint64, fields map[string]interface{}) (int64, error) {
	// UPDATE videos SET ... WHERE id = ? AND owner_id = ?，检查和写入是同一条语句
	result := r.db.WithContext(ctx).Model(&model.Video{}).
		Where("id = ? AND owner_id = ?", videoID, ownerID).
		Updates(fields)
	if result.Error != nil {
		return 0, result.Error
	}
	_ = r.DeleteVideoCache(ctx, videoID)
	return result.RowsAffected, nil
}

func (r *videoRepository) TogglePublishOwned(ctx context.Context, videoID, ownerID uint64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Video{}).
		Where("id = ? AND owner_id = ?", videoID, ownerID).
		UpdateColumns(map[string]interface{}{
			"is_published": gorm.Expr("NOT is_published"),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	_ = r.DeleteVideoCache(ctx, videoID)
	return result.RowsAffected, nil
}

func (r *videoRepository) DeleteOwned(ctx context.Context, videoID, ownerID uint64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", videoID, ownerID).Delete(&model.Video{})
	if result.Error != nil {
		return 0, result.Error
	}
	_ = r.DeleteVideoCache(ctx, videoID)
	return result.RowsAffected, nil
}

// 返回存储单个视频信息的字符串Key
func (r *videoRepository) keyVideoInfo(videoID uint64) string {
	return fmt.Sprintf("video:info:%d", videoID)
}

// 从Redis缓存中获取单个Video信息：1、利用VideoID组装key 2、拿key去rdb中寻找videoJSON 3、利用json.Unmarshal将拿到的videoJSON反序列化
func (r *videoRepository) GetVideoCache(ctx context.Context, videoID uint64) (*model.Video, error) {
	if r.rdb == nil {
		return nil, nil
	}
	videoJSON, err := r.rdb.Get(ctx, r.keyVideoInfo(videoID)).Result()
	if err == redis.Nil {
		return nil, nil // 如果缓存不存在，但是Redis正常工作
	} else if err != nil {
		return nil, err // Redis本身出错了
	}
	var video model.Video
	if err := json.Unmarshal([]byte(videoJSON), &video); err != nil {
		return nil, err // JSON反序列化失败
	}
	return &video, nil
}

// 将单个视频信息存入Redis缓存
func (r *videoRepository) SetVideoCache(ctx context.Context, video *model.Video) error {
	if r.rdb == nil {
		return nil
	}
	videoJSON, err := json.Marshal(video)
	if err != nil {
		return err
	}
	// 设置过期时间，再加上随机性防止缓存雪崩
	expiration := time.Minute*5 + time.Duration(rand.Intn(60))*time.Second
	return r.rdb.Set(ctx, r.keyVideoInfo(video.ID), videoJSON, expiration).Err()
}

// 视频被修改/删除后，直接删缓存，下次读的时候再回填
func (r *videoRepository) DeleteVideoCache(ctx context.Context, videoID uint64) error {
	if r.rdb == nil {
		return nil
	}
	return r.rdb.Del(ctx, r.keyVideoInfo(videoID)).Err()
}
