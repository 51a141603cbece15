package model

// 评论不分层级，一条评论只挂在一个视频下
type Comment struct {
	BaseModel
	VideoID uint64 `gorm:"not null;index" json:"video"`
	OwnerID uint64 `gorm:"not null;index" json:"owner"`
	// TEXT是MySQL中的一种文本类型，专门用于存储非常长的字符串
	Content string `gorm:"type:text;not null" json:"content"`

	Owner User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Comment) TableName() string {
	return "comments"
}
