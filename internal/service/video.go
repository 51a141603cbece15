package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"StreamHub/pkg/logger"
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"
)

type PublishVideoInput struct {
	Title       string
	Description string
	Duration    uint64
	VideoFile   *Upload
	Thumbnail   *Upload
}

// UpdateVideoInput 空字符串/nil表示不修改
type UpdateVideoInput struct {
	Title       string
	Description string
	Thumbnail   *Upload
}

type VideoService interface {
	Publish(ctx context.Context, ownerID uint64, in PublishVideoInput) (*model.Video, error)
	Update(ctx context.Context, actorID, videoID uint64, in UpdateVideoInput) (*model.Video, error)
	Delete(ctx context.Context, actorID, videoID uint64) error
	TogglePublishStatus(ctx context.Context, actorID, videoID uint64) (*model.Video, error)

	GetVideoByID(ctx context.Context, videoID uint64) (*model.Video, error)
	// 未发布的视频只有作者能看到，其他人拿到NotFound
	GetVisibleVideo(ctx context.Context, videoID, viewerID uint64) (*model.Video, error)
}

type videoService struct {
	sf singleflight.Group

	videoRepo repository.VideoRepository
	assets    AssetService
}

func NewVideoService(videoRepo repository.VideoRepository, assets AssetService) VideoService {
	return &videoService{
		videoRepo: videoRepo,
		assets:    assets,
	}
}

// 发布视频：1、校验标题和简介 2、上传视频文件和封面 3、写库，失败就把刚传的文件丢进清理队列 4、重新读出来返回
func (s *videoService) Publish(ctx context.Context, ownerID uint64, in PublishVideoInput) (*model.Video, error) {
	if isBlank(in.Title) || isBlank(in.Description) {
		return nil, apperror.Validation("标题和简介都是必填的")
	}
	if in.VideoFile == nil || in.Thumbnail == nil {
		return nil, apperror.Validation("视频文件和封面都是必填的")
	}

	videoFile, err := s.assets.Store(ctx, FolderVideos, in.VideoFile)
	if err != nil {
		return nil, err
	}
	thumbnail, err := s.assets.Store(ctx, FolderThumbnails, in.Thumbnail)
	if err != nil {
		s.assets.Discard(ctx, videoFile, "publish failed")
		return nil, err
	}

	newVideo := &model.Video{
		OwnerID:     ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		VideoFile:   videoFile,
		Thumbnail:   thumbnail,
		Duration:    in.Duration,
		IsPublished: true,
	}
	if err := s.videoRepo.Create(ctx, newVideo); err != nil {
		s.assets.Discard(ctx, videoFile, "publish failed")
		s.assets.Discard(ctx, thumbnail, "publish failed")
		return nil, storeError(err, "")
	}
	logger.Log.WithField("owner_id", ownerID).WithField("video_id", newVideo.ID).Info("视频发布成功")
	return s.GetVideoByID(ctx, newVideo.ID)
}

// 修改视频：1、至少改一项 2、换封面时先上传新封面 3、带owner条件更新，0行时判断是不存在还是无权 4、旧封面交给清理队列
func (s *videoService) Update(ctx context.Context, actorID, videoID uint64, in UpdateVideoInput) (*model.Video, error) {
	fields := map[string]interface{}{}
	if !isBlank(in.Title) {
		fields["title"] = strings.TrimSpace(in.Title)
	}
	if !isBlank(in.Description) {
		fields["description"] = strings.TrimSpace(in.Description)
	}
	if len(fields) == 0 && in.Thumbnail == nil {
		return nil, apperror.Validation("至少修改一项")
	}

	var oldThumbnail string
	if in.Thumbnail != nil {
		// 先读一次只是为了拿到旧封面地址，归属判断仍然以下面的条件更新为准
		before, err := s.ownedVideo(ctx, actorID, videoID)
		if err != nil {
			return nil, err
		}
		oldThumbnail = before.Thumbnail
		thumbnail, err := s.assets.Store(ctx, FolderThumbnails, in.Thumbnail)
		if err != nil {
			return nil, err
		}
		fields["thumbnail"] = thumbnail
	}

	n, err := s.videoRepo.UpdateOwned(ctx, videoID, actorID, fields)
	if err == nil && n == 0 {
		err = ownershipMiss(actorID, s.ownerOf(ctx, videoID), "视频不存在")
	}
	if err != nil {
		if thumbnail, ok := fields["thumbnail"].(string); ok {
			s.assets.Discard(ctx, thumbnail, "update failed")
		}
		return nil, storeError(err, "视频不存在")
	}

	if _, ok := fields["thumbnail"]; ok {
		s.assets.Discard(ctx, oldThumbnail, "replaced thumbnail")
	}
	return s.GetVideoByID(ctx, videoID)
}

func (s *videoService) Delete(ctx context.Context, actorID, videoID uint64) error {
	before, err := s.ownedVideo(ctx, actorID, videoID)
	if err != nil {
		return err
	}
	n, err := s.videoRepo.DeleteOwned(ctx, videoID, actorID)
	if err != nil {
		return storeError(err, "视频不存在")
	}
	if n == 0 {
		// 两次读写之间被别人删掉了
		return apperror.NotFound("视频不存在")
	}
	s.assets.Discard(ctx, before.VideoFile, "video deleted")
	s.assets.Discard(ctx, before.Thumbnail, "video deleted")
	return nil
}

func (s *videoService) TogglePublishStatus(ctx context.Context, actorID, videoID uint64) (*model.Video, error) {
	n, err := s.videoRepo.TogglePublishOwned(ctx, videoID, actorID)
	if err == nil && n == 0 {
		if err = ownershipMiss(actorID, s.ownerOf(ctx, videoID), "视频不存在"); err == nil {
			// 取反一定会改变值，0行又是自己的视频只可能是并发删除
			err = apperror.NotFound("视频不存在")
		}
	}
	if err != nil {
		return nil, storeError(err, "视频不存在")
	}
	return s.GetVideoByID(ctx, videoID)
}

// 根据videoID查找视频：缓存在repository里，未命中时通过SingleFlight合并同一时间的数据库查询
func (s *videoService) GetVideoByID(ctx context.Context, videoID uint64) (*model.Video, error) {
	key := fmt.Sprintf("get_video_%d", videoID)
	result, err, _ := s.sf.Do(key, func() (interface{}, error) {
		return s.videoRepo.FindByID(ctx, videoID)
	})
	if err != nil {
		return nil, storeError(err, "视频不存在")
	}
	// 返回值是interface{}结构，需要断言；复制一份，避免共享同一个指针
	video := *result.(*model.Video)
	return &video, nil
}

func (s *videoService) GetVisibleVideo(ctx context.Context, videoID, viewerID uint64) (*model.Video, error) {
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsPublished && video.OwnerID != viewerID {
		return nil, apperror.NotFound("视频不存在")
	}
	return video, nil
}

func (s *videoService) ownedVideo(ctx context.Context, actorID, videoID uint64) (*model.Video, error) {
	video, err := s.GetVideoByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if video.OwnerID != actorID {
		return nil, apperror.Forbidden("无权操作该视频")
	}
	return video, nil
}

func (s *videoService) ownerOf(ctx context.Context, videoID uint64) func() (uint64, error) {
	return func() (uint64, error) {
		video, err := s.videoRepo.FindByID(ctx, videoID)
		if err != nil {
			return 0, err
		}
		return video.OwnerID, nil
	}
}
