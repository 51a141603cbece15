package data

import (
	"StreamHub/internal/repository"
	"context"

	"gorm.io/gorm"
)

// UnitOfWork 定义了我们事务管理器的接口
type UnitOfWork interface {
	// Execute 将一个函数包裹在数据库事务中执行。
	// 它会为这个函数提供能在事务中工作的 Repositories。
	Execute(ctx context.Context, fn func(repos *TransactionalRepositories) error) error
}

// TransactionalRepositories 持有所有需要在同一个事务中操作的 Repository。
type TransactionalRepositories struct {
	LikeRepo         repository.LikeRepository
	SubscriptionRepo repository.SubscriptionRepository
	PlaylistRepo     repository.PlaylistRepository
}

// db是事务的入口和管理者
type gormUnitOfWork struct {
	db               *gorm.DB
	likeRepo         repository.LikeRepository
	subscriptionRepo repository.SubscriptionRepository
	playlistRepo     repository.PlaylistRepository
}

// NewUnitOfWork 创建一个新的、基于GORM的“工作单元”。
// 注意，它接收的是原始的、非事务的 repositories。
func NewUnitOfWork(
	db *gorm.DB,
	likeRepo repository.LikeRepository,
	subscriptionRepo repository.SubscriptionRepository,
	playlistRepo repository.PlaylistRepository,
) UnitOfWork {
	return &gormUnitOfWork{
		db:               db,
		likeRepo:         likeRepo,
		subscriptionRepo: subscriptionRepo,
		playlistRepo:     playlistRepo,
	}
}

// 契约：fn func(repos *TransactionalRepositories) error
// 只能接收长这样的函数，并为其创建事务；将符合契约的Repositories作为参数，“注入”到业务逻辑函数中
func (u *gormUnitOfWork) Execute(ctx context.Context, fn func(repos *TransactionalRepositories) error) error {
	// GORM创建了一个事务，并把这个事务的句柄作为参数tx传递给了这个匿名函数
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 临时创建“一次性”的、绑定了特定事务的Repo副本
		transactionalRepos := &TransactionalRepositories{
			LikeRepo:         u.likeRepo.WithTx(tx),
			SubscriptionRepo: u.subscriptionRepo.WithTx(tx),
			PlaylistRepo:     u.playlistRepo.WithTx(tx),
		}
		// 返回error就回滚，返回nil就提交
		return fn(transactionalRepos)
	})
}
