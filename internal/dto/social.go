package dto

import (
	"StreamHub/internal/model"
	"time"
)

// SubscriptionEdge 订阅关系另一端的用户
type SubscriptionEdge struct {
	Profile
	SubscribedAt time.Time `json:"subscribedAt"`
}

type SubscriberList struct {
	Subscribers      []SubscriptionEdge `json:"subscribers"`
	TotalSubscribers int64              `json:"totalSubscribers"`
}

type SubscriptionList struct {
	Channels           []SubscriptionEdge `json:"channels"`
	TotalSubscriptions int64              `json:"totalSubscriptions"`
}

type SubscriptionToggle struct {
	IsSubscribed bool `json:"isSubscribed"`
}

type PlaylistResponse struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Owner       uint64    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ToPlaylistResponse(p *model.Playlist) *PlaylistResponse {
	return &PlaylistResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Owner:       p.OwnerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// PlaylistView 播放列表详情，Videos按加入顺序排列
type PlaylistView struct {
	ID          uint64      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	Owner       Profile     `json:"owner"`
	Videos      []VideoCard `json:"videos"`
	TotalVideos int64       `json:"totalVideos"`
}

type PlaylistSummary struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	TotalVideos int64     `json:"totalVideos"`
}

type TweetView struct {
	ID        uint64    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Owner     Profile   `json:"owner"`
	LikeCount int64     `json:"likeCount"`
}

func ToTweetView(t *model.Tweet) TweetView {
	return TweetView{
		ID:        t.ID,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
		Owner:     Profile{ID: t.OwnerID},
	}
}
