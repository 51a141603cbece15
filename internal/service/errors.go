package service

import (
	"StreamHub/internal/apperror"
	"StreamHub/internal/repository"
	"StreamHub/pkg/logger"
	"errors"
	"strings"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// storeError 把存储层错误翻译成业务错误：不存在->NotFound，唯一索引冲突->Conflict，其余都是Internal
func storeError(err error, notFound string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	if repository.IsNotFound(err) {
		return apperror.NotFound(notFound)
	}
	if repository.IsDuplicateKey(err) {
		return apperror.Conflict("记录已存在")
	}
	logger.Log.WithError(err).Error("存储层操作失败")
	return apperror.Internal(err)
}

// ownershipMiss 带owner条件的写操作没有命中任何行时调用，重新读一次资源来区分原因：
// 不存在->NotFound，不是自己的->Forbidden，是自己的说明值没变（MySQL对未改动的行返回0），当成成功
func ownershipMiss(actorID uint64, find func() (uint64, error), notFound string) error {
	ownerID, err := find()
	if err != nil {
		return storeError(err, notFound)
	}
	if ownerID != actorID {
		return apperror.Forbidden("无权操作该资源")
	}
	return nil
}
