package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/data"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"context"
	"strings"
	"time"
)

type PlaylistService interface {
	Create(ctx context.Context, ownerID uint64, name, description string) (*model.Playlist, error)
	// 空字符串表示不修改，但至少要改一项
	Update(ctx context.Context, actorID, playlistID uint64, name, description string) (*model.Playlist, error)
	Delete(ctx context.Context, actorID, playlistID uint64) error
	AddVideo(ctx context.Context, actorID, playlistID, videoID uint64) error
	RemoveVideo(ctx context.Context, actorID, playlistID, videoID uint64) error
}

type playlistService struct {
	uow          data.UnitOfWork
	playlistRepo repository.PlaylistRepository
	videos       VideoService
}

func NewPlaylistService(uow data.UnitOfWork, playlistRepo repository.PlaylistRepository, videos VideoService) PlaylistService {
	return &playlistService{uow: uow, playlistRepo: playlistRepo, videos: videos}
}

func (s *playlistService) Create(ctx context.Context, ownerID uint64, name, description string) (*model.Playlist, error) {
	if isBlank(name) {
		return nil, apperror.Validation("播放列表名称不能为空")
	}
	playlist := &model.Playlist{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		OwnerID:     ownerID,
	}
	if err := s.playlistRepo.Create(ctx, playlist); err != nil {
		return nil, storeError(err, "")
	}
	return s.find(ctx, playlist.ID)
}

func (s *playlistService) Update(ctx context.Context, actorID, playlistID uint64, name, description string) (*model.Playlist, error) {
	fields := map[string]interface{}{}
	if !isBlank(name) {
		fields["name"] = strings.TrimSpace(name)
	}
	if !isBlank(description) {
		fields["description"] = strings.TrimSpace(description)
	}
	if len(fields) == 0 {
		return nil, apperror.Validation("至少修改一项")
	}

	n, err := s.playlistRepo.UpdateOwned(ctx, playlistID, actorID, fields)
	if err == nil && n == 0 {
		err = ownershipMiss(actorID, ownerOfPlaylist(ctx, s.playlistRepo, playlistID), "播放列表不存在")
	}
	if err != nil {
		return nil, storeError(err, "播放列表不存在")
	}
	return s.find(ctx, playlistID)
}

// 删除播放列表和它的成员条目，在同一个事务里完成
func (s *playlistService) Delete(ctx context.Context, actorID, playlistID uint64) error {
	return s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		n, err := repos.PlaylistRepo.DeleteOwned(ctx, playlistID, actorID)
		if err == nil && n == 0 {
			if err = ownershipMiss(actorID, ownerOfPlaylist(ctx, repos.PlaylistRepo, playlistID), "播放列表不存在"); err == nil {
				err = apperror.NotFound("播放列表不存在")
			}
		}
		return storeError(err, "播放列表不存在")
	})
}

// 加入视频：1、视频必须存在 2、事务里用带owner条件的更新确认归属 3、已经在列表里就是Conflict 4、追加到末尾
func (s *playlistService) AddVideo(ctx context.Context, actorID, playlistID, videoID uint64) error {
	if _, err := s.videos.GetVisibleVideo(ctx, videoID, actorID); err != nil {
		return err
	}
	err := s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		if err := claimPlaylist(ctx, repos.PlaylistRepo, actorID, playlistID); err != nil {
			return err
		}
		exists, err := repos.PlaylistRepo.HasVideo(ctx, playlistID, videoID)
		if err != nil {
			return err
		}
		if exists {
			return apperror.Conflict("视频已经在播放列表中")
		}
		return repos.PlaylistRepo.AppendVideo(ctx, playlistID, videoID)
	})
	if repository.IsDuplicateKey(err) {
		return apperror.Conflict("视频已经在播放列表中")
	}
	return storeError(err, "播放列表不存在")
}

func (s *playlistService) RemoveVideo(ctx context.Context, actorID, playlistID, videoID uint64) error {
	err := s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		if err := claimPlaylist(ctx, repos.PlaylistRepo, actorID, playlistID); err != nil {
			return err
		}
		n, err := repos.PlaylistRepo.RemoveVideo(ctx, playlistID, videoID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperror.NotFound("视频不在播放列表中")
		}
		return nil
	})
	return storeError(err, "播放列表不存在")
}

// claimPlaylist 成员变动也算播放列表被修改：带owner条件刷新updated_at，同时完成归属检查
func claimPlaylist(ctx context.Context, repo repository.PlaylistRepository, actorID, playlistID uint64) error {
	n, err := repo.UpdateOwned(ctx, playlistID, actorID, map[string]interface{}{"updated_at": time.Now()})
	if err != nil {
		return err
	}
	if n == 0 {
		return ownershipMiss(actorID, ownerOfPlaylist(ctx, repo, playlistID), "播放列表不存在")
	}
	return nil
}

func ownerOfPlaylist(ctx context.Context, repo repository.PlaylistRepository, playlistID uint64) func() (uint64, error) {
	return func() (uint64, error) {
		playlist, err := repo.FindByID(ctx, playlistID)
		if err != nil {
			return 0, err
		}
		return playlist.OwnerID, nil
	}
}

func (s *playlistService) find(ctx context.Context, playlistID uint64) (*model.Playlist, error) {
	playlist, err := s.playlistRepo.FindByID(ctx, playlistID)
	if err != nil {
		return nil, storeError(err, "播放列表不存在")
	}
	return playlist, nil
}
