package repository

import (
	"StreamHub/internal/model"
	"context"

	"gorm.io/gorm"
)

// 用户仓库接口：增、查、按条件更新，以及观看历史
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID uint64) (*model.User, error)
	// 用户名或邮箱任意一个命中就返回
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error)
	Update(ctx context.Context, userID uint64, fields map[string]interface{}) error
	SetRefreshToken(ctx context.Context, userID uint64, tokenHash *string) error

	AppendWatchHistory(ctx context.Context, userID, videoID uint64) error
}

// 数据库接口封装
type userRepository struct {
	db *gorm.DB
}

// 封装函数
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// 用户插入表
func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, userID uint64) (*model.User, error) {
	var result model.User
	if err := r.db.WithContext(ctx).First(&result, userID).Error; err != nil {
		return nil, err // 如果有错（包括没找到），直接返回
	}
	return &result, nil
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*model.User, error) {
	var result model.User
	err := r.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&result).Error
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *userRepository) Update(ctx context.Context, userID uint64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(fields).Error
}

// tokenHash传nil就是清空，表示退出登录
func (r *userRepository) SetRefreshToken(ctx context.Context, userID uint64, tokenHash *string) error {
	return r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).
		Update("refresh_token", tokenHash).Error
}

func (r *userRepository) AppendWatchHistory(ctx context.Context, userID, videoID uint64) error {
	return r.db.WithContext(ctx).Create(&model.WatchHistoryEntry{UserID: userID, VideoID: videoID}).Error
}
