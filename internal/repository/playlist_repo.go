package repository

import (
	"StreamHub/internal/model"
	"context"

	"gorm.io/gorm"
)

type PlaylistRepository interface {
	Create(ctx context.Context, playlist *model.Playlist) error
	FindByID(ctx context.Context, playlistID uint64) (*model.Playlist, error)
	UpdateOwned(ctx context.Context, playlistID, ownerID uint64, fields map[string]interface{}) (int64, error)
	// 连同列表里的视频条目一起删掉，需要在事务里调用
	DeleteOwned(ctx context.Context, playlistID, ownerID uint64) (int64, error)

	HasVideo(ctx context.Context, playlistID, videoID uint64) (bool, error)
	// 追加到列表末尾
	AppendVideo(ctx context.Context, playlistID, videoID uint64) error
	RemoveVideo(ctx context.Context, playlistID, videoID uint64) (int64, error)

	WithTx(tx *gorm.DB) PlaylistRepository
}

type playlistRepository struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: db}
}

func (r *playlistRepository) WithTx(tx *gorm.DB) PlaylistRepository {
	return &playlistRepository{db: tx}
}

func (r *playlistRepository) Create(ctx context.Context, playlist *model.Playlist) error {
	return r.db.WithContext(ctx).Create(playlist).Error
}

func (r *playlistRepository) FindByID(ctx context.Context, playlistID uint64) (*model.Playlist, error) {
	var result model.Playlist
	if err := r.db.WithContext(ctx).First(&result, playlistID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *playlistRepository) UpdateOwned(ctx context.Context, playlistID, ownerID uint64, fields map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Playlist{}).
		Where("id = ? AND owner_id = ?", playlistID, ownerID).
		Updates(fields)
	return result.RowsAffected, result.Error
}

func (r *playlistRepository) DeleteOwned(ctx context.Context, playlistID, ownerID uint64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", playlistID, ownerID).Delete(&model.Playlist{})
	if result.Error != nil || result.RowsAffected == 0 {
		return result.RowsAffected, result.Error
	}
	if err := r.db.WithContext(ctx).Where("playlist_id = ?", playlistID).Delete(&model.PlaylistVideo{}).Error; err != nil {
		return 0, err
	}
	return result.RowsAffected, nil
}

func (r *playlistRepository) HasVideo(ctx context.Context, playlistID, videoID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.PlaylistVideo{}).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Count(&n).Error
	return n > 0, err
}

func (r *playlistRepository) AppendVideo(ctx context.Context, playlistID, videoID uint64) error {
	var maxPos uint64
	err := r.db.WithContext(ctx).Model(&model.PlaylistVideo{}).
		Where("playlist_id = ?", playlistID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPos).Error
	if err != nil {
		return err
	}
	item := &model.PlaylistVideo{PlaylistID: playlistID, VideoID: videoID, Position: maxPos + 1}
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *playlistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&model.PlaylistVideo{})
	return result.RowsAffected, result.Error
}
