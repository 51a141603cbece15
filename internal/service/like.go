package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/data"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"StreamHub/pkg/logger"
	"context"
)

// 点赞是开关操作：有就删，没有就加，同一个事务里完成，并发重复插入由唯一索引挡住
type LikeService interface {
	ToggleVideoLike(ctx context.Context, actorID, videoID uint64) (bool, error)
	ToggleCommentLike(ctx context.Context, actorID, commentID uint64) (bool, error)
	ToggleTweetLike(ctx context.Context, actorID, tweetID uint64) (bool, error)
}

type likeService struct {
	uow         data.UnitOfWork
	videos      VideoService
	commentRepo repository.CommentRepository
	tweetRepo   repository.TweetRepository
}

func NewLikeService(uow data.UnitOfWork, videos VideoService, commentRepo repository.CommentRepository, tweetRepo repository.TweetRepository) LikeService {
	return &likeService{
		uow:         uow,
		videos:      videos,
		commentRepo: commentRepo,
		tweetRepo:   tweetRepo,
	}
}

func (s *likeService) ToggleVideoLike(ctx context.Context, actorID, videoID uint64) (bool, error) {
	if _, err := s.videos.GetVisibleVideo(ctx, videoID, actorID); err != nil {
		return false, err
	}
	return s.toggle(ctx, actorID, model.LikeTargetVideo, videoID)
}

func (s *likeService) ToggleCommentLike(ctx context.Context, actorID, commentID uint64) (bool, error) {
	if _, err := s.commentRepo.FindByID(ctx, commentID); err != nil {
		return false, storeError(err, "评论不存在")
	}
	return s.toggle(ctx, actorID, model.LikeTargetComment, commentID)
}

func (s *likeService) ToggleTweetLike(ctx context.Context, actorID, tweetID uint64) (bool, error) {
	if _, err := s.tweetRepo.FindByID(ctx, tweetID); err != nil {
		return false, storeError(err, "动态不存在")
	}
	return s.toggle(ctx, actorID, model.LikeTargetTweet, tweetID)
}

// 开关：1、先尝试删除 2、删掉了就是取消点赞 3、没删到就插入一条
func (s *likeService) toggle(ctx context.Context, actorID uint64, kind model.LikeTarget, targetID uint64) (bool, error) {
	var liked bool
	err := s.uow.Execute(ctx, func(repos *data.TransactionalRepositories) error {
		n, err := repos.LikeRepo.Delete(ctx, actorID, kind, targetID)
		if err != nil {
			return err
		}
		if n > 0 {
			liked = false
			return nil
		}
		liked = true
		return repos.LikeRepo.Create(ctx, &model.Like{LikedByID: actorID, TargetKind: kind, TargetID: targetID})
	})
	if err != nil {
		if repository.IsDuplicateKey(err) {
			return false, apperror.Conflict("操作过于频繁，请稍后再试")
		}
		return false, storeError(err, "")
	}
	logger.Log.WithField("user_id", actorID).WithField("target_kind", kind).WithField("target_id", targetID).
		WithField("liked", liked).Info("点赞状态已切换")
	return liked, nil
}
