package repository

import (
	"StreamHub/internal/model"
	"context"

	"gorm.io/gorm"
)

type TweetRepository interface {
	Create(ctx context.Context, tweet *model.Tweet) error
	FindByID(ctx context.Context, tweetID uint64) (*model.Tweet, error)
	UpdateContentOwned(ctx context.Context, tweetID, ownerID uint64, content string) (int64, error)
	DeleteOwned(ctx context.Context, tweetID, ownerID uint64) (int64, error)
}

type tweetRepository struct {
	db *gorm.DB
}

func NewTweetRepository(db *gorm.DB) TweetRepository {
	return &tweetRepository{db: db}
}

func (r *tweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	return r.db.WithContext(ctx).Create(tweet).Error
}

func (r *tweetRepository) FindByID(ctx context.Context, tweetID uint64) (*model.Tweet, error) {
	var result model.Tweet
	if err := r.db.WithContext(ctx).First(&result, tweetID).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *tweetRepository) UpdateContentOwned(ctx context.Context, tweetID, ownerID uint64, content string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Tweet{}).
		Where("id = ? AND owner_id = ?", tweetID, ownerID).
		Update("content", content)
	return result.RowsAffected, result.Error
}

func (r *tweetRepository) DeleteOwned(ctx context.Context, tweetID, ownerID uint64) (int64, error) {
	result := r.db.WithContext(ctx).Where("id = ? AND owner_id = ?", tweetID, ownerID).Delete(&model.Tweet{})
	return result.RowsAffected, result.Error
}
