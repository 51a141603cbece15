package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"context"
	"strings"
)

type TweetService interface {
	Create(ctx context.Context, ownerID uint64, content string) (*model.Tweet, error)
	Update(ctx context.Context, actorID, tweetID uint64, content string) (*model.Tweet, error)
	Delete(ctx context.Context, actorID, tweetID uint64) error
}

type tweetService struct {
	tweetRepo repository.TweetRepository
}

func NewTweetService(tweetRepo repository.TweetRepository) TweetService {
	return &tweetService{tweetRepo: tweetRepo}
}

func (s *tweetService) Create(ctx context.Context, ownerID uint64, content string) (*model.Tweet, error) {
	if isBlank(content) {
		return nil, apperror.Validation("动态内容不能为空")
	}
	tweet := &model.Tweet{Content: strings.TrimSpace(content), OwnerID: ownerID}
	if err := s.tweetRepo.Create(ctx, tweet); err != nil {
		return nil, storeError(err, "")
	}
	return s.find(ctx, tweet.ID)
}

func (s *tweetService) Update(ctx context.Context, actorID, tweetID uint64, content string) (*model.Tweet, error) {
	if isBlank(content) {
		return nil, apperror.Validation("动态内容不能为空")
	}
	n, err := s.tweetRepo.UpdateContentOwned(ctx, tweetID, actorID, strings.TrimSpace(content))
	if err == nil && n == 0 {
		err = ownershipMiss(actorID, s.ownerOf(ctx, tweetID), "动态不存在")
	}
	if err != nil {
		return nil, storeError(err, "动态不存在")
	}
	return s.find(ctx, tweetID)
}

func (s *tweetService) Delete(ctx context.Context, actorID, tweetID uint64) error {
	n, err := s.tweetRepo.DeleteOwned(ctx, tweetID, actorID)
	if err == nil && n == 0 {
		if err = ownershipMiss(actorID, s.ownerOf(ctx, tweetID), "动态不存在"); err == nil {
			err = apperror.NotFound("动态不存在")
		}
	}
	return storeError(err, "动态不存在")
}

func (s *tweetService) ownerOf(ctx context.Context, tweetID uint64) func() (uint64, error) {
	return func() (uint64, error) {
		tweet, err := s.tweetRepo.FindByID(ctx, tweetID)
		if err != nil {
			return 0, err
		}
		return tweet.OwnerID, nil
	}
}

func (s *tweetService) find(ctx context.Context, tweetID uint64) (*model.Tweet, error) {
	tweet, err := s.tweetRepo.FindByID(ctx, tweetID)
	if err != nil {
		return nil, storeError(err, "动态不存在")
	}
	return tweet, nil
}
