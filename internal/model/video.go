package model

// Video结构，播放量和点赞数都是读的时候现算的，这里不存计数
type Video struct {
	BaseModel
	OwnerID     uint64 `gorm:"not null;index" json:"owner"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	VideoFile   string `gorm:"size:512;not null" json:"videoFile"`
	Thumbnail   string `gorm:"size:512;not null" json:"thumbnail"`
	Duration    uint64 `gorm:"default:0" json:"duration"` // 秒
	IsPublished bool   `gorm:"not null;index" json:"isPublished"`

	Owner User `gorm:"foreignKey:OwnerID;references:ID" json:"-"`
}
