package model

// 订阅关系：subscriber -> channel，一对用户之间最多一条边
type Subscription struct {
	BaseModel
	SubscriberID uint64 `gorm:"not null;uniqueIndex:idx_subscriber_channel,priority:1" json:"subscriber"`
	ChannelID    uint64 `gorm:"not null;uniqueIndex:idx_subscriber_channel,priority:2;index" json:"channel"`
}
