package dto

import (
	"StreamHub/internal/model"
	"time"
)

// Profile 所有联表出来的用户信息都只投影这四个字段，password和refreshToken永远不出现
type Profile struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	Avatar   string `json:"avatar"`
}

// UserResponse 是用户本人能看到的账号信息（注册、当前用户、修改资料）
type UserResponse struct {
	ID         uint64    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Fullname   string    `json:"fullname"`
	Avatar     string    `json:"avatar"`
	CoverImage string    `json:"coverImage"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func ToUserResponse(user *model.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Fullname:   user.Fullname,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

// LoginResponse 登录和刷新令牌的响应，令牌同时也会写进cookie
type LoginResponse struct {
	User         *UserResponse `json:"user,omitempty"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

// UserProfile 频道主页，email只有本人访问时才有
type UserProfile struct {
	ID                uint64    `json:"id"`
	Username          string    `json:"username"`
	Fullname          string    `json:"fullname"`
	Avatar            string    `json:"avatar"`
	CoverImage        string    `json:"coverImage"`
	Email             string    `json:"email,omitempty"`
	SubscriberCount   int64     `json:"subscriberCount"`
	SubscribedToCount int64     `json:"subscribedToCount"`
	IsSubscribed      bool      `json:"isSubscribed"`
	CreatedAt         time.Time `json:"createdAt"`
}
