package model

type Tweet struct {
	BaseModel
	Content string `gorm:"type:text;not null" json:"content"`
	OwnerID uint64 `gorm:"not null;index" json:"owner"`
}
