package model

import (
	"time"
)

// 由于gorm的基本结构中ID是uint类型，我想都统一成uint64，所以自己搞了个base结构体
// 没有DeletedAt：点赞、订阅这些边要靠唯一索引防重，软删除会让“取消后再点”撞上唯一索引，所以全部硬删除
type BaseModel struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AllModels 返回需要AutoMigrate的全部模型，server、seeder和测试共用一份
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&WatchHistoryEntry{},
		&Video{},
		&Comment{},
		&Like{},
		&Subscription{},
		&Playlist{},
		&PlaylistVideo{},
		&Tweet{},
	}
}
