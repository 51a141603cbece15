package repository

import (
	"StreamHub/internal/model"
	"context"

	"gorm.io/gorm"
)

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *model.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID uint64) (int64, error)

	WithTx(tx *gorm.DB) SubscriptionRepository
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) WithTx(tx *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: tx}
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *model.Subscription) error {
	return r.db.WithContext(ctx).Create(sub).Error
}

// 只删 (subscriber, channel) 这一条边
func (r *subscriptionRepository) Delete(ctx context.Context, subscriberID, channelID uint64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Delete(&model.Subscription{})
	return result.RowsAffected, result.Error
}
