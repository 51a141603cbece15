package repository

import (
	"StreamHub/internal/model"
	"context"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, commentID uint64) (*model.Comment, error)
	UpdateContentOwned(ctx context.Context, commentID, ownerID uint64, content string) (int64, error)
	DeleteOwned(ctx context.Context, commentID, ownerID uint64) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create 方法对事务和非事务场景通用
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) FindByID(ctx context.Context, commentID uint64) (*model.Comment, error) {
	var result model.Comment
	// 顺带Preload出评论人，把筛选条件放在db.First参数中
	if err := r.db.WithContext(ctx).Preload("Owner").First(&result, commentID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *commentRepository) UpdateContentOwned(ctx context.Context, commentID, ownerID uint64, content string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("id = ? AND owner_id = ?", commentID, ownerID).
		Update("content", content)
	return result.RowsAffected, result.Error
}

func (r *commentRepository) DeleteOwned(ctx context.Context, commentID, ownerID uint64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", commentID, ownerID).Delete(&model.Comment{})
	return result.RowsAffected, result.Error
}
