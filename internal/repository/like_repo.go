package repository

import (
	"StreamHub/internal/model"
	"StreamHub/pkg/logger"
	"context"

	"gorm.io/gorm"
)

type LikeRepository interface {
	Create(ctx context.Context, like *model.Like) error
	// 返回删除的行数，0表示原本就没有这条点赞
	Delete(ctx context.Context, likedByID uint64, kind model.LikeTarget, targetID uint64) (int64, error)

	WithTx(tx *gorm.DB) LikeRepository
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) WithTx(tx *gorm.DB) LikeRepository {
	return &likeRepository{db: tx}
}

func (r *likeRepository) Create(ctx context.Context, like *model.Like) error {
	result := r.db.WithContext(ctx).Create(like)
	if result.Error != nil {
		// 重复点赞由唯一索引拦下来，交给上层翻译成Conflict，这里不当成错误日志
		if !IsDuplicateKey(result.Error) {
			logger.Log.WithError(result.Error).Error("添加点赞记录失败")
		}
		return result.Error
	}
	return nil
}

func (r *likeRepository) Delete(ctx context.Context, likedByID uint64, kind model.LikeTarget, targetID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("liked_by_id = ? AND target_kind = ? AND target_id = ?", likedByID, kind, targetID).
		Delete(&model.Like{})
	if result.Error != nil {
		logger.Log.WithError(result.Error).Error("删除点赞记录失败")
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
