package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// IsDuplicateKey 判断是不是唯一索引冲突
// gorm开启TranslateError后会翻译成ErrDuplicatedKey；没翻译的MySQL错误号1062也算
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	// 错误号 1062 就是 "Duplicate entry"
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	// SQLite（测试用）驱动没有导出错误类型，只能看文本
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsNotFound 判断是不是记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
