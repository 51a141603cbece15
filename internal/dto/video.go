package dto

import (
	"StreamHub/internal/model"
	"time"
)

// VideoCard 列表、历史、播放列表里的一条视频，带作者信息
type VideoCard struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    uint64    `json:"duration"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Owner       Profile   `json:"owner"`
}

// ToVideoCard 把DB模型转换为API响应模型，Owner没有加载时只填ID
func ToVideoCard(video *model.Video) VideoCard {
	card := VideoCard{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		VideoFile:   video.VideoFile,
		Thumbnail:   video.Thumbnail,
		Duration:    video.Duration,
		IsPublished: video.IsPublished,
		CreatedAt:   video.CreatedAt,
		UpdatedAt:   video.UpdatedAt,
		Owner:       Profile{ID: video.OwnerID},
	}
	if video.Owner.ID != 0 {
		card.Owner = Profile{
			ID:       video.Owner.ID,
			Username: video.Owner.Username,
			Fullname: video.Owner.Fullname,
			Avatar:   video.Owner.Avatar,
		}
	}
	return card
}

type VideoPage struct {
	Videos      []VideoCard `json:"videos"`
	Page        int         `json:"page"`
	Limit       int         `json:"limit"`
	TotalVideos int64       `json:"totalVideos"`
}

// LikeView 一条点赞和点赞人
type LikeView struct {
	ID        uint64    `json:"id"`
	LikedBy   Profile   `json:"likedBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// VideoDetail 视频详情页：视频本身、全部评论、全部点赞，计数都是联表结果的条数
type VideoDetail struct {
	VideoCard
	Comments     []CommentView `json:"comments"`
	Likes        []LikeView    `json:"likes"`
	LikeCount    int64         `json:"likeCount"`
	CommentCount int64         `json:"commentCount"`
	IsLiked      bool          `json:"isLiked"`
}

// ChannelVideo 仪表盘里的一条视频和它的互动数
type ChannelVideo struct {
	ID           uint64    `json:"id"`
	Title        string    `json:"title"`
	Thumbnail    string    `json:"thumbnail"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
	CommentCount int64     `json:"commentCount"`
	LikeCount    int64     `json:"likeCount"`
}

type ChannelStats struct {
	ID                uint64         `json:"id"`
	Username          string         `json:"username"`
	Fullname          string         `json:"fullname"`
	Avatar            string         `json:"avatar"`
	SubscriberCount   int64          `json:"subscriberCount"`
	TotalVideoCount   int64          `json:"totalVideoCount"`
	TotalCommentCount int64          `json:"totalCommentCount"`
	TotalLikes        int64          `json:"totalLikes"`
	Videos            []ChannelVideo `json:"videos"`
}

type LikedVideo struct {
	LikedAt time.Time `json:"likedAt"`
	Video   VideoCard `json:"video"`
}

type LikedVideos struct {
	Videos           []LikedVideo `json:"likedVideos"`
	TotalLikedVideos int64        `json:"totalLikedVideos"`
}

type LikeToggle struct {
	IsLiked bool `json:"isLiked"`
}
