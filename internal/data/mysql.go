package data

import (
	"StreamHub/pkg/logger"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenMySQL 打开连接池，TranslateError让唯一索引冲突变成gorm.ErrDuplicatedKey
// 这个mysql包是gorm的第三方承包商，mysql.Open()后还是只能执行原始SQL语句，gorm.Open()后可以执行gorm的简化语句
func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	logger.Log.Info("数据库连接成功")
	return db, nil
}
