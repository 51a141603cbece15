package model

// LikeTarget 点赞目标的种类，和TargetID一起组成带标签的多态引用
type LikeTarget string

const (
	LikeTargetVideo   LikeTarget = "video"
	LikeTargetComment LikeTarget = "comment"
	LikeTargetTweet   LikeTarget = "tweet"
)

// 用户对视频/评论/动态的点赞，uniqueIndex利用的是数据库的“自动查重”能力，而不是gorm的
// (liked_by_id, target_kind, target_id) 联合唯一，按种类区分，保证同一个目标只能点赞一次
type Like struct {
	BaseModel
	LikedByID  uint64     `gorm:"not null;uniqueIndex:idx_like_actor_target,priority:1" json:"likedBy"`
	TargetKind LikeTarget `gorm:"size:16;not null;uniqueIndex:idx_like_actor_target,priority:2;index:idx_like_target,priority:1" json:"targetKind"`
	TargetID   uint64     `gorm:"not null;uniqueIndex:idx_like_actor_target,priority:3;index:idx_like_target,priority:2" json:"targetId"`
}

func (Like) TableName() string {
	return "likes"
}
