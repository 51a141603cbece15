package dto

import (
	"StreamHub/internal/model"
	"time"
)

// CommentView 一条评论、评论人，以及给这条评论点赞的人
type CommentView struct {
	ID                  uint64    `json:"id"`
	Video               uint64    `json:"video"`
	Content             string    `json:"content"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	Owner               Profile   `json:"owner"`
	Likes               []Profile `json:"likes"`
	TotalLikesOnComment int64     `json:"totalLikesOnComment"`
}

func ToCommentView(comment *model.Comment) CommentView {
	view := CommentView{
		ID:        comment.ID,
		Video:     comment.VideoID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
		Owner:     Profile{ID: comment.OwnerID},
		Likes:     []Profile{},
	}
	// 安全地填充作者信息
	if comment.Owner.ID != 0 {
		view.Owner = Profile{
			ID:       comment.Owner.ID,
			Username: comment.Owner.Username,
			Fullname: comment.Owner.Fullname,
			Avatar:   comment.Owner.Avatar,
		}
	}
	return view
}

type CommentPage struct {
	Comments      []CommentView `json:"comments"`
	Page          int           `json:"page"`
	Limit         int           `json:"limit"`
	TotalComments int64         `json:"totalComments"`
}
