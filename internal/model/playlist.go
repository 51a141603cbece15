package model

type Playlist struct {
	BaseModel
	Name        string `gorm:"size:128;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	OwnerID     uint64 `gorm:"not null;index" json:"owner"`
}

// PlaylistVideo 播放列表里的一项，Position决定顺序，同一个视频在一个列表里只能出现一次
type PlaylistVideo struct {
	BaseModel
	PlaylistID uint64 `gorm:"not null;uniqueIndex:idx_playlist_video,priority:1"`
	VideoID    uint64 `gorm:"not null;uniqueIndex:idx_playlist_video,priority:2;index"`
	Position   uint64 `gorm:"not null"`
}

func (PlaylistVideo) TableName() string {
	return "playlist_videos"
}
