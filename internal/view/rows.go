package view

import (
	"StreamHub/internal/dto"
	"time"
)

// 下面的row结构体是联表查询Scan的落点，字段名和SELECT里的别名一一对应

// 联表出来的用户字段统一用COALESCE兜底，用户被删了也能Scan进string
const (
	videoColumns = "v.id, v.title, v.description, v.video_file, v.thumbnail, v.duration, v.is_published, " +
		"v.created_at, v.updated_at, v.owner_id, " +
		"COALESCE(u.username, '') AS owner_username, COALESCE(u.fullname, '') AS owner_fullname, COALESCE(u.avatar, '') AS owner_avatar"
	joinVideoOwner = "LEFT JOIN users AS u ON u.id = v.owner_id"
)

type videoRow struct {
	ID            uint64
	Title         string
	Description   string
	VideoFile     string
	Thumbnail     string
	Duration      uint64
	IsPublished   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OwnerID       uint64
	OwnerUsername string
	OwnerFullname string
	OwnerAvatar   string
}

func (r videoRow) card() dto.VideoCard {
	return dto.VideoCard{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		VideoFile:   r.VideoFile,
		Thumbnail:   r.Thumbnail,
		Duration:    r.Duration,
		IsPublished: r.IsPublished,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Owner: dto.Profile{
			ID:       r.OwnerID,
			Username: r.OwnerUsername,
			Fullname: r.OwnerFullname,
			Avatar:   r.OwnerAvatar,
		},
	}
}

func cards(rows []videoRow) []dto.VideoCard {
	out := make([]dto.VideoCard, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.card())
	}
	return out
}

type commentRow struct {
	ID            uint64
	VideoID       uint64
	Content       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OwnerID       uint64
	OwnerUsername string
	OwnerFullname string
	OwnerAvatar   string
}

func (r commentRow) view(likers []likeRow) dto.CommentView {
	likes := make([]dto.Profile, 0, len(likers))
	for _, l := range likers {
		likes = append(likes, l.profile())
	}
	return dto.CommentView{
		ID:        r.ID,
		Video:     r.VideoID,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		Owner: dto.Profile{
			ID:       r.OwnerID,
			Username: r.OwnerUsername,
			Fullname: r.OwnerFullname,
			Avatar:   r.OwnerAvatar,
		},
		Likes:               likes,
		TotalLikesOnComment: int64(len(likes)),
	}
}

type likeRow struct {
	ID        uint64
	TargetID  uint64
	CreatedAt time.Time
	LikedByID uint64
	Username  string
	Fullname  string
	Avatar    string
}

func (r likeRow) profile() dto.Profile {
	return dto.Profile{ID: r.LikedByID, Username: r.Username, Fullname: r.Fullname, Avatar: r.Avatar}
}

type channelVideoRow struct {
	ID           uint64
	Title        string
	Thumbnail    string
	IsPublished  bool
	CreatedAt    time.Time
	CommentCount int64
	LikeCount    int64
}

type profileRow struct {
	ID                uint64
	Username          string
	Email             string
	Fullname          string
	Avatar            string
	CoverImage        string
	CreatedAt         time.Time
	SubscriberCount   int64
	SubscribedToCount int64
	ViewerSubscribed  int64
}

// Video必须是导出字段，gorm不会往未导出的匿名字段里Scan
type likedVideoRow struct {
	LikedAt time.Time
	Video   videoRow `gorm:"embedded"`
}

type edgeRow struct {
	SubscribedAt time.Time
	UserID       uint64
	Username     string
	Fullname     string
	Avatar       string
}

func edges(rows []edgeRow) []dto.SubscriptionEdge {
	out := make([]dto.SubscriptionEdge, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.SubscriptionEdge{
			Profile:      dto.Profile{ID: r.UserID, Username: r.Username, Fullname: r.Fullname, Avatar: r.Avatar},
			SubscribedAt: r.SubscribedAt,
		})
	}
	return out
}

type playlistRow struct {
	ID            uint64
	Name          string
	Description   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OwnerID       uint64
	OwnerUsername string
	OwnerFullname string
	OwnerAvatar   string
}

type playlistSummaryRow struct {
	ID          uint64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	TotalVideos int64
}

type tweetRow struct {
	ID            uint64
	Content       string
	CreatedAt     time.Time
	UpdatedAt     time.Time
	OwnerID       uint64
	OwnerUsername string
	OwnerFullname string
	OwnerAvatar   string
	LikeCount     int64
}
