package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/model"
	"StreamHub/internal/repository"
	"context"
	"strings"
)

type CommentService interface {
	// 给视频加一条评论，视频必须存在且对当前用户可见
	Add(ctx context.Context, actorID, videoID uint64, content string) (*model.Comment, error)
	Update(ctx context.Context, actorID, commentID uint64, content string) (*model.Comment, error)
	Delete(ctx context.Context, actorID, commentID uint64) error
}

type commentService struct {
	commentRepo repository.CommentRepository
	videos      VideoService
}

func NewCommentService(commentRepo repository.CommentRepository, videos VideoService) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		videos:      videos,
	}
}

// 创建评论：1、校验内容 2、确认视频存在 3、写库 4、带着评论人信息重新查出来
func (s *commentService) Add(ctx context.Context, actorID, videoID uint64, content string) (*model.Comment, error) {
	if isBlank(content) {
		return nil, apperror.Validation("评论内容不能为空")
	}
	if _, err := s.videos.GetVisibleVideo(ctx, videoID, actorID); err != nil {
		return nil, err
	}

	newComment := &model.Comment{
		VideoID: videoID,
		OwnerID: actorID,
		Content: strings.TrimSpace(content),
	}
	if err := s.commentRepo.Create(ctx, newComment); err != nil {
		return nil, storeError(err, "")
	}
	comment, err := s.commentRepo.FindByID(ctx, newComment.ID)
	if err != nil {
		return nil, storeError(err, "评论不存在")
	}
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, actorID, commentID uint64, content string) (*model.Comment, error) {
	if isBlank(content) {
		return nil, apperror.Validation("评论内容不能为空")
	}
	n, err := s.commentRepo.UpdateContentOwned(ctx, commentID, actorID, strings.TrimSpace(content))
	if err == nil && n == 0 {
		err = ownershipMiss(actorID, s.ownerOf(ctx, commentID), "评论不存在")
	}
	if err != nil {
		return nil, storeError(err, "评论不存在")
	}
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, storeError(err, "评论不存在")
	}
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, actorID, commentID uint64) error {
	n, err := s.commentRepo.DeleteOwned(ctx, commentID, actorID)
	if err == nil && n == 0 {
		if err = ownershipMiss(actorID, s.ownerOf(ctx, commentID), "评论不存在"); err == nil {
			err = apperror.NotFound("评论不存在")
		}
	}
	return storeError(err, "评论不存在")
}

func (s *commentService) ownerOf(ctx context.Context, commentID uint64) func() (uint64, error) {
	return func() (uint64, error) {
		comment, err := s.commentRepo.FindByID(ctx, commentID)
		if err != nil {
			return 0, err
		}
		return comment.OwnerID, nil
	}
}
