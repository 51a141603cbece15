package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/data"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"context"
)

type SubscriptionService interface {
	// 返回切换之后是否处于订阅状态
	ToggleSubscription(ctx context.Context, subscriberID, channelID uint64) (bool, error)
}

type subscriptionService struct {
	uow      data.UnitOfWork
	userRepo repository.UserRepository
}

func NewSubscriptionService(uow data.UnitOfWork, userRepo repository.UserRepository) SubscriptionService {
	return &subscriptionService{uow: uow, userRepo: userRepo}
}

func (s *subscriptionService) ToggleSubscription(ctx context.Context, subscriberID, channelID uint64) (bool, error) {
	if subscriberID == channelID {
		return false, apperror.Validation("不能订阅自己")
	}
	if _, err := s.userRepo.FindByID(ctx, channelID); err != nil {
		return false, storeError(err, "频道不存在")
	}

	var subscribed bool
	err := s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		n, err := repos.SubscriptionRepo.Delete(ctx, subscriberID, channelID)
		if err != nil {
			return err
		}
		if n > 0 {
			subscribed = false
			return nil
		}
		subscribed = true
		return repos.SubscriptionRepo.Create(ctx, &model.Subscription{SubscriberID: subscriberID, ChannelID: channelID})
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return false, apperror.Conflict("操作过于频繁，请稍后再试")
		}
		return false, storeError(err, "")
	}
	return subscribed, nil
}
