package model

type User struct {
	BaseModel
	// 用户名和邮箱入库前统一trim+小写，唯一性交给数据库的唯一索引
	Username   string `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email      string `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Fullname   string `gorm:"size:128;index;not null" json:"fullname"`
	Avatar     string `gorm:"size:512;not null" json:"avatar"`
	CoverImage string `gorm:"size:512" json:"coverImage"`
	// 下面两个字段永远不能出现在任何响应里
	Password string `gorm:"not null" json:"-"`
	// 只存refresh token的SHA-256摘要，nil表示没有活跃会话
	RefreshToken *string `gorm:"size:64" json:"-"`
}

// WatchHistoryEntry 是User.watchHistory的一项，按ID自增顺序就是观看顺序
type WatchHistoryEntry struct {
	BaseModel
	UserID  uint64 `gorm:"not null;index"`
	VideoID uint64 `gorm:"not null;index"`
}

func (WatchHistoryEntry) TableName() string {
	return "watch_history_entries"
}
